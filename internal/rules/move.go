package rules

import "fmt"

// Move encoding (uint16):
//   bits 0-2:   to column (0-7)
//   bits 3-5:   to rank (0-7)
//   bits 6-8:   from column (0-7)
//   bits 9-11:  from rank (0-7)
//   bits 12-15: piece intent (0=R, 1=N, 2=B, 3=Q, 4=K, 5=P, 6-9=pawn promoting to R/N/B/Q)

const (
	moveToColMask     = 0x7
	moveToRankShift   = 3
	moveFromColShift  = 6
	moveFromRankShift = 9
	movePieceShift    = 12
	moveCoordMask     = 0x7
)

// Move is a packed move description. The zero Move (rook a1 to a1) never
// has a valid shape.
type Move uint16

// NullMove is returned by EncodeMove for inputs that cannot be packed.
const NullMove Move = 0

// EncodeMove packs a move. Ranks and columns are 0-7 with rank 0 being
// white's back rank and column 0 the a-file.
func EncodeMove(piece Piece, fromRank, fromCol, toRank, toCol int) Move {
	if piece == Empty || piece > PawnToQueen {
		return NullMove
	}
	if !onBoard(fromRank, fromCol) || !onBoard(toRank, toCol) {
		return NullMove
	}
	m := piece.code()<<movePieceShift |
		uint16(fromRank)<<moveFromRankShift |
		uint16(fromCol)<<moveFromColShift |
		uint16(toRank)<<moveToRankShift |
		uint16(toCol)
	return Move(m)
}

// Piece returns the piece intent; unknown codes decode as Empty.
func (m Move) Piece() Piece {
	return pieceFromCode(uint16(m) >> movePieceShift)
}

func (m Move) FromRank() int {
	return int(uint16(m)>>moveFromRankShift) & moveCoordMask
}

func (m Move) FromCol() int {
	return int(uint16(m)>>moveFromColShift) & moveCoordMask
}

func (m Move) ToRank() int {
	return int(uint16(m)>>moveToRankShift) & moveCoordMask
}

func (m Move) ToCol() int {
	return int(uint16(m) & moveToColMask)
}

// From returns the origin square index (rank*8 + col).
func (m Move) From() int {
	return m.FromRank()*8 + m.FromCol()
}

// To returns the destination square index (rank*8 + col).
func (m Move) To() int {
	return m.ToRank()*8 + m.ToCol()
}

// IsValidShape checks coordinates and the geometric pattern of the claimed
// piece. It does not look at any board.
func (m Move) IsValidShape() bool {
	fr, fc, tr, tc := m.FromRank(), m.FromCol(), m.ToRank(), m.ToCol()
	if !onBoard(fr, fc) || !onBoard(tr, tc) {
		return false
	}
	if fr == tr && fc == tc {
		return false
	}

	dr := abs(tr - fr)
	dc := abs(tc - fc)
	switch m.Piece() {
	case Rook:
		return dr == 0 || dc == 0
	case Knight:
		return (dr == 2 && dc == 1) || (dr == 1 && dc == 2)
	case Bishop:
		return dr == dc
	case Queen:
		return dr == dc || dr == 0 || dc == 0
	case King:
		// Two columns along the rank is castling, checked by the executor.
		return (dr <= 1 && dc <= 1) || (dr == 0 && dc == 2 && (tc == 6 || tc == 2))
	case Pawn, PawnToRook, PawnToKnight, PawnToBishop, PawnToQueen:
		return (dc == 0 && dr <= 2) || (dc == 1 && dr == 1)
	default:
		return false
	}
}

// ToUCI renders the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) ToUCI() string {
	uci := squareName(m.FromRank(), m.FromCol()) + squareName(m.ToRank(), m.ToCol())
	switch m.Piece().Promoted() {
	case Queen:
		uci += "q"
	case Rook:
		uci += "r"
	case Bishop:
		uci += "b"
	case Knight:
		uci += "n"
	}
	return uci
}

func (m Move) String() string {
	return m.Piece().Occupant().String() + m.ToUCI()
}

// ParseUCI resolves a coordinate move against the current position. The
// moving piece is read from the origin square; a trailing promotion letter
// turns a pawn move into the matching promotion intent.
func ParseUCI(s *GameState, uci string) (Move, error) {
	if len(uci) < 4 || len(uci) > 5 {
		return NullMove, fmt.Errorf("UCI move has bad length: %q", uci)
	}
	fr, fc, ok := parseSquare(uci[0:2])
	if !ok {
		return NullMove, fmt.Errorf("invalid from square in UCI: %q", uci)
	}
	tr, tc, ok := parseSquare(uci[2:4])
	if !ok {
		return NullMove, fmt.Errorf("invalid to square in UCI: %q", uci)
	}

	piece := s.Board.Pieces[fr][fc]
	if piece == Empty {
		return NullMove, fmt.Errorf("no piece on %s", uci[0:2])
	}
	if len(uci) == 5 {
		if piece != Pawn {
			return NullMove, fmt.Errorf("promotion suffix on non-pawn move: %q", uci)
		}
		var promo Piece
		switch uci[4] {
		case 'q', 'Q':
			promo = Queen
		case 'r', 'R':
			promo = Rook
		case 'b', 'B':
			promo = Bishop
		case 'n', 'N':
			promo = Knight
		default:
			return NullMove, fmt.Errorf("invalid promotion piece: %c", uci[4])
		}
		piece = PromotionTo(promo)
	}
	return EncodeMove(piece, fr, fc, tr, tc), nil
}

func squareName(rank, col int) string {
	return string([]byte{byte('a' + col), byte('1' + rank)})
}

func parseSquare(s string) (rank, col int, ok bool) {
	if len(s) != 2 {
		return 0, 0, false
	}
	col = int(s[0]) - 'a'
	rank = int(s[1]) - '1'
	if !onBoard(rank, col) {
		return 0, 0, false
	}
	return rank, col, true
}

func onBoard(rank, col int) bool {
	return rank >= 0 && rank < 8 && col >= 0 && col < 8
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
