package rules

import "testing"

func mustFEN(t *testing.T, fen string) GameState {
	t.Helper()
	s, _, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return s
}

// play applies coordinate moves in order and fails the test on the first rejection.
func play(t *testing.T, s *GameState, moves ...string) {
	t.Helper()
	for _, uci := range moves {
		m, err := ParseUCI(s, uci)
		if err != nil {
			t.Fatalf("ParseUCI(%s): %v", uci, err)
		}
		if !Apply(m, s) {
			t.Fatalf("move %s rejected in %s", uci, FormatFEN(s, 1))
		}
	}
}

// rejects asserts that the move is refused and the state is bit-for-bit unchanged.
func rejects(t *testing.T, s *GameState, m Move) {
	t.Helper()
	before := *s
	if Apply(m, s) {
		t.Fatalf("move %v accepted in %s, want rejection", m, FormatFEN(&before, 1))
	}
	if *s != before {
		t.Fatalf("rejected move %v changed the state", m)
	}
}
