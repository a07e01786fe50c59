package rules

import "testing"

func TestEncodeMove_RoundTrip(t *testing.T) {
	pieces := []Piece{Rook, Knight, Bishop, Queen, King, Pawn, PawnToRook, PawnToKnight, PawnToBishop, PawnToQueen}
	for _, p := range pieces {
		for fr := 0; fr < 8; fr++ {
			for fc := 0; fc < 8; fc++ {
				tr, tc := 7-fr, (fc+3)%8
				m := EncodeMove(p, fr, fc, tr, tc)
				if m.Piece() != p || m.FromRank() != fr || m.FromCol() != fc || m.ToRank() != tr || m.ToCol() != tc {
					t.Fatalf("EncodeMove(%v,%d,%d,%d,%d) = %04x decodes as (%v,%d,%d,%d,%d)",
						p, fr, fc, tr, tc, uint16(m), m.Piece(), m.FromRank(), m.FromCol(), m.ToRank(), m.ToCol())
				}
			}
		}
	}
}

func TestEncodeMove_WireLayout(t *testing.T) {
	// piece (4) | from rank (3) | from col (3) | to rank (3) | to col (3)
	got := EncodeMove(Pawn, 1, 4, 3, 4)
	want := Move(5<<12 | 1<<9 | 4<<6 | 3<<3 | 4)
	if got != want {
		t.Errorf("EncodeMove(Pawn e2e4) = %04x, want %04x", uint16(got), uint16(want))
	}
	if Move(9<<12).Piece() != PawnToQueen {
		t.Errorf("code 9 should decode as PawnToQueen")
	}
	for code := uint16(10); code < 16; code++ {
		if p := Move(code << 12).Piece(); p != Empty {
			t.Errorf("code %d decodes as %v, want Empty", code, p)
		}
	}
}

func TestEncodeMove_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		piece  Piece
		coords [4]int
	}{
		{"empty piece", Empty, [4]int{1, 4, 3, 4}},
		{"rank too large", Rook, [4]int{8, 0, 0, 0}},
		{"negative col", Rook, [4]int{0, -1, 0, 0}},
		{"to col too large", Queen, [4]int{0, 0, 0, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.coords
			if m := EncodeMove(tt.piece, c[0], c[1], c[2], c[3]); m != NullMove {
				t.Errorf("EncodeMove = %04x, want NullMove", uint16(m))
			}
		})
	}
	if NullMove.IsValidShape() {
		t.Error("NullMove must not have a valid shape")
	}
}

func TestMove_IsValidShape(t *testing.T) {
	tests := []struct {
		name  string
		move  Move
		valid bool
	}{
		{"rook file", EncodeMove(Rook, 0, 0, 6, 0), true},
		{"rook rank", EncodeMove(Rook, 3, 1, 3, 7), true},
		{"rook diagonal", EncodeMove(Rook, 0, 0, 1, 1), false},
		{"knight 2-1", EncodeMove(Knight, 0, 1, 2, 2), true},
		{"knight 1-2", EncodeMove(Knight, 0, 1, 1, 3), true},
		{"knight straight", EncodeMove(Knight, 0, 1, 2, 1), false},
		{"bishop diagonal", EncodeMove(Bishop, 0, 2, 5, 7), true},
		{"bishop crooked", EncodeMove(Bishop, 0, 2, 2, 3), false},
		{"queen diagonal", EncodeMove(Queen, 0, 3, 4, 7), true},
		{"queen file", EncodeMove(Queen, 0, 3, 7, 3), true},
		{"queen knight jump", EncodeMove(Queen, 0, 3, 2, 4), false},
		{"king step", EncodeMove(King, 0, 4, 1, 5), true},
		{"king castle short", EncodeMove(King, 0, 4, 0, 6), true},
		{"king castle long", EncodeMove(King, 7, 4, 7, 2), true},
		{"king two up", EncodeMove(King, 0, 4, 2, 4), false},
		{"king three across", EncodeMove(King, 0, 4, 0, 7), false},
		{"pawn single", EncodeMove(Pawn, 1, 4, 2, 4), true},
		{"pawn double", EncodeMove(Pawn, 1, 4, 3, 4), true},
		{"pawn triple", EncodeMove(Pawn, 1, 4, 4, 4), false},
		{"pawn diagonal", EncodeMove(Pawn, 1, 4, 2, 5), true},
		{"pawn wide", EncodeMove(Pawn, 1, 4, 2, 6), false},
		{"promotion diagonal", EncodeMove(PawnToKnight, 6, 0, 7, 1), true},
		{"same square", EncodeMove(Queen, 4, 4, 4, 4), false},
		{"empty intent", Move(0xF000 | 1<<9 | 4<<6 | 3<<3 | 4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.move.IsValidShape(); got != tt.valid {
				t.Errorf("IsValidShape(%v) = %v, want %v", tt.move, got, tt.valid)
			}
		})
	}
}

func TestMove_ToUCI(t *testing.T) {
	tests := []struct {
		move Move
		want string
	}{
		{EncodeMove(Pawn, 1, 4, 3, 4), "e2e4"},
		{EncodeMove(PawnToQueen, 6, 4, 7, 4), "e7e8q"},
		{EncodeMove(PawnToKnight, 1, 1, 0, 0), "b2a1n"},
		{EncodeMove(King, 0, 4, 0, 6), "e1g1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.move.ToUCI(); got != tt.want {
				t.Errorf("ToUCI() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseUCI(t *testing.T) {
	start := NewGameState()
	promo := mustFEN(t, "8/4P3/8/8/8/8/k7/4K3 w - - 0 1")

	tests := []struct {
		name    string
		state   *GameState
		uci     string
		want    Move
		wantErr bool
	}{
		{"pawn push", &start, "e2e4", EncodeMove(Pawn, 1, 4, 3, 4), false},
		{"knight", &start, "g1f3", EncodeMove(Knight, 0, 6, 2, 5), false},
		{"promotion", &promo, "e7e8r", EncodeMove(PawnToRook, 6, 4, 7, 4), false},
		{"empty origin", &start, "e4e5", NullMove, true},
		{"bad square", &start, "z2e4", NullMove, true},
		{"too short", &start, "e2e", NullMove, true},
		{"promotion on knight", &start, "g1f3q", NullMove, true},
		{"bad promotion letter", &promo, "e7e8k", NullMove, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUCI(tt.state, tt.uci)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUCI(%q) error = %v, wantErr %v", tt.uci, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUCI(%q) = %v, want %v", tt.uci, got, tt.want)
			}
		})
	}
}
