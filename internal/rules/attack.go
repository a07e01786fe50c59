package rules

type offset struct {
	dr, dc int
}

// Direction tables shared by the check detector and the mobility scan.
var (
	diagonalDirs   = [4]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonalDirs = [4]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	knightJumps    = [8]offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// IsCheck reports whether the king of color c is attacked. The result is
// computed from scratch on every call.
func IsCheck(c Color, s *GameState) bool {
	kr, kc, ok := s.Board.findKing(c)
	if !ok {
		return false
	}
	return isAttacked(&s.Board, kr, kc, c.Opposite())
}

// isAttacked reports whether any piece of color by attacks the square.
func isAttacked(b *Board, rank, col int, by Color) bool {
	for _, d := range diagonalDirs {
		p, dist, ok := firstOnRay(b, rank, col, d)
		if !ok || !b.owns(rank+d.dr*dist, col+d.dc*dist, by) {
			continue
		}
		switch p {
		case Bishop, Queen:
			return true
		case King:
			if dist == 1 {
				return true
			}
		case Pawn:
			// The pawn attacks toward the square only if it advances that way.
			if dist == 1 && d.dr == -by.pawnDir() {
				return true
			}
		}
	}

	for _, d := range orthogonalDirs {
		p, dist, ok := firstOnRay(b, rank, col, d)
		if !ok || !b.owns(rank+d.dr*dist, col+d.dc*dist, by) {
			continue
		}
		switch p {
		case Rook, Queen:
			return true
		case King:
			if dist == 1 {
				return true
			}
		}
	}

	for _, j := range knightJumps {
		r, f := rank+j.dr, col+j.dc
		if onBoard(r, f) && b.Pieces[r][f] == Knight && b.owns(r, f, by) {
			return true
		}
	}
	return false
}

// firstOnRay walks from (rank, col) along d and returns the first occupant
// and its distance. ok is false if the ray leaves the board first.
func firstOnRay(b *Board, rank, col int, d offset) (Piece, int, bool) {
	for dist := 1; dist < 8; dist++ {
		r, f := rank+d.dr*dist, col+d.dc*dist
		if !onBoard(r, f) {
			return Empty, 0, false
		}
		if p := b.Pieces[r][f]; p != Empty {
			return p, dist, true
		}
	}
	return Empty, 0, false
}
