package rules

// Apply validates m against s and, if legal, advances s to the resulting
// position with the side to move flipped. On rejection s is left untouched:
// all work happens on a copy that is committed only on success.
func Apply(m Move, s *GameState) bool {
	next := *s
	if !execute(m, &next) {
		return false
	}
	*s = next
	return true
}

// execute runs the full legality check and mutates s. s may be left
// half-updated when it returns false; callers pass a scratch copy.
func execute(m Move, s *GameState) bool {
	piece := m.Piece()
	fr, fc, tr, tc := m.FromRank(), m.FromCol(), m.ToRank(), m.ToCol()
	mover := s.SideToMove()
	b := &s.Board

	// Origin holds exactly the claimed piece, owned by the side to move.
	if piece == Empty || b.Pieces[fr][fc] != piece.Occupant() || !b.owns(fr, fc, mover) {
		return false
	}
	// Destination is empty or holds an opposing piece.
	if b.owns(tr, tc, mover) {
		return false
	}
	if !m.IsValidShape() {
		return false
	}

	var ok bool
	switch piece.Occupant() {
	case Pawn:
		ok = movePawn(s, piece, mover, fr, fc, tr, tc)
	case King:
		if abs(tc-fc) == 2 {
			ok = castle(s, mover, fr, fc, tc)
		} else {
			relocate(s, fr, fc, tr, tc, false)
			ok = true
		}
	case Rook, Bishop, Queen:
		if ok = pathClear(b, fr, fc, tr, tc); ok {
			relocate(s, fr, fc, tr, tc, false)
		}
	case Knight:
		relocate(s, fr, fc, tr, tc, false)
		ok = true
	}
	if !ok {
		return false
	}

	// The mover's own king may not be left attacked.
	if IsCheck(mover, s) {
		return false
	}
	s.WhiteToMove = !s.WhiteToMove
	return true
}

func movePawn(s *GameState, piece Piece, mover Color, fr, fc, tr, tc int) bool {
	b := &s.Board
	dir := mover.pawnDir()
	dr := tr - fr

	if fc == tc {
		switch dr {
		case dir:
			if !b.IsEmpty(tr, tc) {
				return false
			}
		case 2 * dir:
			if fr != mover.pawnStartRank() || !b.IsEmpty(fr+dir, fc) || !b.IsEmpty(tr, tc) {
				return false
			}
		default:
			return false
		}
	} else {
		if dr != dir {
			return false
		}
		switch {
		case !b.IsEmpty(tr, tc):
			// Ordinary capture; ownership was checked by the caller.
		case int(s.EnPassant) == tr*8+tc:
			// The captured pawn stands beside the mover, one rank past the target.
			if b.Pieces[fr][tc] != Pawn || !b.owns(fr, tc, mover.Opposite()) {
				return false
			}
			b.Clear(fr, tc)
		default:
			return false
		}
	}

	promote := tr == mover.promotionRank()
	if promote != piece.IsPromotion() {
		return false
	}

	relocate(s, fr, fc, tr, tc, true)
	if promote {
		b.Put(tr, tc, piece.Promoted(), mover)
	}
	if abs(dr) == 2 {
		s.EnPassant = uint8((fr+dir)*8 + fc)
	}
	return true
}

// castle moves the king two columns toward a rook and the rook to the square
// the king crossed.
func castle(s *GameState, mover Color, fr, fc, tc int) bool {
	b := &s.Board
	home := mover.homeRank()
	if fr != home || fc != 4 {
		return false
	}

	kingside, queenside := s.castleRights(mover)
	rookCol, crossCol := 7, 5
	between := []int{5, 6}
	right := *kingside
	if tc == 2 {
		rookCol, crossCol = 0, 3
		between = []int{1, 2, 3}
		right = *queenside
	}
	if !right {
		return false
	}
	if b.Pieces[home][rookCol] != Rook || !b.owns(home, rookCol, mover) {
		return false
	}
	for _, col := range between {
		if !b.IsEmpty(home, col) {
			return false
		}
	}
	if IsCheck(mover, s) {
		return false
	}

	// Try the king on the crossed square before committing.
	probe := *s
	probe.Board.Clear(home, fc)
	probe.Board.Put(home, crossCol, King, mover)
	if IsCheck(mover, &probe) {
		return false
	}

	relocate(s, home, fc, home, tc, false)
	b.Clear(home, rookCol)
	b.Put(home, crossCol, Rook, mover)
	return true
}

// pathClear reports whether every square strictly between the two squares
// is empty. The squares must share a rank, column or diagonal.
func pathClear(b *Board, fr, fc, tr, tc int) bool {
	stepR, stepC := sign(tr-fr), sign(tc-fc)
	r, f := fr+stepR, fc+stepC
	for r != tr || f != tc {
		if !b.IsEmpty(r, f) {
			return false
		}
		r += stepR
		f += stepC
	}
	return true
}

// relocate moves the piece and does the shared bookkeeping: half-move clock,
// en-passant reset and castling rights.
func relocate(s *GameState, fr, fc, tr, tc int, pawnMove bool) {
	b := &s.Board
	piece, color := b.At(fr, fc)
	capture := !b.IsEmpty(tr, tc)

	if pawnMove || capture {
		s.HalfMoves = 0
	} else if s.HalfMoves < 255 {
		s.HalfMoves++
	}

	b.Clear(fr, fc)
	b.Put(tr, tc, piece, color)
	s.EnPassant = NoEnPassant
	s.revokeCastling(fr, fc, tr, tc)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
