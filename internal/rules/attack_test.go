package rules

import "testing"

func TestIsCheck(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		color Color
		want  bool
	}{
		{"initial white", StartFEN, White, false},
		{"initial black", StartFEN, Black, false},
		{"rook on rank", "4k3/8/8/8/8/8/8/4K2r w - - 0 1", White, true},
		{"rook blocked", "4k3/8/8/8/4r3/8/4N3/4K3 w - - 0 1", White, false},
		{"bishop diagonal", "4k3/8/8/b7/8/8/8/4K3 w - - 0 1", White, true},
		{"bishop blocked", "4k3/8/8/b7/8/2P5/8/4K3 w - - 0 1", White, false},
		{"queen long diagonal", "7q/8/8/8/8/8/8/K6k w - - 0 1", White, true},
		{"queen orthogonal", "4k3/8/8/8/8/8/8/q3K3 w - - 0 1", White, true},
		{"knight", "4k3/8/8/8/8/5n2/8/4K3 w - - 0 1", White, true},
		{"knight out of reach", "4k3/8/8/8/8/4n3/8/4K3 w - - 0 1", White, false},
		{"black pawn attacks down", "4k3/8/8/8/8/8/3p4/4K3 w - - 0 1", White, true},
		{"black pawn behind king", "4k3/8/8/8/4K3/3p4/8/8 w - - 0 1", White, false},
		{"white pawn attacks up", "8/8/8/3k4/4P3/8/8/4K3 b - - 0 1", Black, true},
		{"pawn straight ahead", "8/8/8/4k3/4P3/8/8/4K3 b - - 0 1", Black, false},
		{"adjacent king", "8/8/8/8/8/8/4k3/4K3 w - - 0 1", White, true},
		{"distant king on file", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", White, false},
		{"own rook does not attack", "4k3/8/8/8/8/8/8/4K2R w - - 0 1", White, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustFEN(t, tt.fen)
			if got := IsCheck(tt.color, &s); got != tt.want {
				t.Errorf("IsCheck(%v) = %v, want %v", tt.color, got, tt.want)
			}
		})
	}
}
