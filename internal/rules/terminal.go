package rules

// HasLegalMove reports whether the side to move has at least one legal
// non-castling move. Candidates come from the same direction tables the
// check detector uses and are tried through the executor on a scratch copy.
// Castling is not considered.
func HasLegalMove(s *GameState) bool {
	mover := s.SideToMove()
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if !s.Board.owns(r, f, mover) {
				continue
			}
			if pieceHasMove(s, s.Board.Pieces[r][f], mover, r, f) {
				return true
			}
		}
	}
	return false
}

func pieceHasMove(s *GameState, p Piece, mover Color, r, f int) bool {
	switch p {
	case Rook:
		return rayHasMove(s, p, r, f, orthogonalDirs[:], 7)
	case Bishop:
		return rayHasMove(s, p, r, f, diagonalDirs[:], 7)
	case Queen:
		return rayHasMove(s, p, r, f, orthogonalDirs[:], 7) || rayHasMove(s, p, r, f, diagonalDirs[:], 7)
	case King:
		return rayHasMove(s, p, r, f, orthogonalDirs[:], 1) || rayHasMove(s, p, r, f, diagonalDirs[:], 1)
	case Knight:
		for _, j := range knightJumps {
			if tryCandidate(s, p, r, f, r+j.dr, f+j.dc) {
				return true
			}
		}
	case Pawn:
		dir := mover.pawnDir()
		intent := Pawn
		if r+dir == mover.promotionRank() {
			// Any promotion piece decides legality equally.
			intent = PawnToQueen
		}
		for _, dc := range [3]int{0, -1, 1} {
			if tryCandidate(s, intent, r, f, r+dir, f+dc) {
				return true
			}
		}
		if r == mover.pawnStartRank() && tryCandidate(s, Pawn, r, f, r+2*dir, f) {
			return true
		}
	}
	return false
}

// rayHasMove walks each direction up to maxDist squares, stopping at the
// first occupied square (which is itself a candidate capture).
func rayHasMove(s *GameState, p Piece, r, f int, dirs []offset, maxDist int) bool {
	for _, d := range dirs {
		for dist := 1; dist <= maxDist; dist++ {
			tr, tf := r+d.dr*dist, f+d.dc*dist
			if !onBoard(tr, tf) {
				break
			}
			if tryCandidate(s, p, r, f, tr, tf) {
				return true
			}
			if !s.Board.IsEmpty(tr, tf) {
				break
			}
		}
	}
	return false
}

func tryCandidate(s *GameState, p Piece, fr, fc, tr, tc int) bool {
	if !onBoard(tr, tc) {
		return false
	}
	scratch := *s
	return execute(EncodeMove(p, fr, fc, tr, tc), &scratch)
}

// IsInsufficientMaterial reports the dead positions K v K, K+minor v K and
// K+B v K+B with both bishops on squares of the same color.
func IsInsufficientMaterial(s *GameState) bool {
	var minors []minorPiece
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p, c := s.Board.At(r, f)
			switch p {
			case Empty, King:
			case Knight, Bishop:
				minors = append(minors, minorPiece{kind: p, color: c, lightSquare: (r+f)%2 == 1})
			default:
				return false
			}
		}
	}

	switch len(minors) {
	case 0, 1:
		return true
	case 2:
		a, b := minors[0], minors[1]
		return a.kind == Bishop && b.kind == Bishop && a.color != b.color && a.lightSquare == b.lightSquare
	default:
		return false
	}
}

type minorPiece struct {
	kind        Piece
	color       Color
	lightSquare bool
}

// OnlyKingRemains reports whether color c has nothing left but its king.
func OnlyKingRemains(c Color, s *GameState) bool {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if s.Board.owns(r, f, c) && s.Board.Pieces[r][f] != King {
				return false
			}
		}
	}
	return true
}
