package game

import "github.com/andrewkomo/moon-chess/internal/rules"

// Advance plays one turn: it applies m to s and classifies the position that
// results. A rejected move returns Invalid and leaves s and h untouched.
// The new position is appended to h only when the game stays Active. If h
// is already full the game is drawn DrawMaxMoves; Game.Play's move cap ends
// a game before its history can fill, so only direct callers reach that.
func Advance(s *rules.GameState, m rules.Move, h *History) Result {
	if !rules.Apply(m, s) {
		return Invalid
	}
	toMove := s.SideToMove()

	if !rules.HasLegalMove(s) {
		if rules.IsCheck(toMove, s) {
			return checkmateBy(toMove.Opposite())
		}
		return DrawStalemate
	}
	if rules.IsInsufficientMaterial(s) {
		return DrawInsufficientMaterial
	}
	if s.HalfMoves >= rules.MaxHalfMoves {
		return DrawFiftyMoves
	}

	snap := SnapshotOf(s)
	if h.Occurrences(snap) >= 2 {
		return DrawRepetition
	}
	if !h.Append(snap) {
		return DrawMaxMoves
	}
	return Active
}

// TimeoutResult adjudicates a flag fall by the flagged side. A side with
// nothing but its king cannot lose on time and the game is drawn instead.
func TimeoutResult(flagged rules.Color, s *rules.GameState) Result {
	if rules.OnlyKingRemains(flagged, s) {
		return DrawInsufficientMaterial
	}
	return timeoutBy(flagged)
}
