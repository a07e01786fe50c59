package game

import (
	"testing"

	"github.com/andrewkomo/moon-chess/internal/rules"
)

func mustUCI(t *testing.T, s *rules.GameState, uci string) rules.Move {
	t.Helper()
	m, err := rules.ParseUCI(s, uci)
	if err != nil {
		t.Fatalf("ParseUCI(%s): %v", uci, err)
	}
	return m
}

func mustFEN(t *testing.T, fen string) rules.GameState {
	t.Helper()
	s, _, err := rules.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return s
}

// newHistory returns a history seeded with s, as a new game would be.
func newHistory(s *rules.GameState) *History {
	h := &History{}
	h.Append(SnapshotOf(s))
	return h
}
