package game

import (
	"testing"

	"github.com/andrewkomo/moon-chess/internal/rules"
)

func TestResult_Classification(t *testing.T) {
	tests := []struct {
		result   Result
		terminal bool
		draw     bool
		winner   string
		pgn      string
	}{
		{Active, false, false, "", "*"},
		{Invalid, false, false, "", "*"},
		{WhiteWinCheckmate, true, false, "white", "1-0"},
		{WhiteWinResignation, true, false, "white", "1-0"},
		{WhiteWinTimeout, true, false, "white", "1-0"},
		{BlackWinCheckmate, true, false, "black", "0-1"},
		{BlackWinResignation, true, false, "black", "0-1"},
		{BlackWinTimeout, true, false, "black", "0-1"},
		{DrawStalemate, true, true, "", "1/2-1/2"},
		{DrawInsufficientMaterial, true, true, "", "1/2-1/2"},
		{DrawFiftyMoves, true, true, "", "1/2-1/2"},
		{DrawAgreement, true, true, "", "1/2-1/2"},
		{DrawMaxMoves, true, true, "", "1/2-1/2"},
		{DrawRepetition, true, true, "", "1/2-1/2"},
	}
	for _, tt := range tests {
		t.Run(tt.result.String(), func(t *testing.T) {
			if got := tt.result.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal = %v, want %v", got, tt.terminal)
			}
			if got := tt.result.IsDraw(); got != tt.draw {
				t.Errorf("IsDraw = %v, want %v", got, tt.draw)
			}
			winner := ""
			if c, ok := tt.result.Winner(); ok {
				winner = c.String()
			}
			if winner != tt.winner {
				t.Errorf("Winner = %q, want %q", winner, tt.winner)
			}
			if got := tt.result.PGN(); got != tt.pgn {
				t.Errorf("PGN = %q, want %q", got, tt.pgn)
			}
		})
	}
}

func TestResult_Unknown(t *testing.T) {
	r := Result(200)
	if r.Valid() || r.IsTerminal() {
		t.Error("out-of-range result reported as valid")
	}
	if r.String() != "unknown" {
		t.Errorf("String = %q", r.String())
	}
}

func TestTimeoutResult(t *testing.T) {
	s := mustFEN(t, "4k3/8/8/8/8/8/8/4KQ2 w - - 0 1")
	if got := TimeoutResult(rules.White, &s); got != BlackWinTimeout {
		t.Errorf("white flagged with a queen: %v, want %v", got, BlackWinTimeout)
	}
	if got := TimeoutResult(rules.Black, &s); got != DrawInsufficientMaterial {
		t.Errorf("black flagged with a bare king: %v, want %v", got, DrawInsufficientMaterial)
	}
}
