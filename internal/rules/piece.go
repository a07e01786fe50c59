package rules

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// pawnDir is the rank step a pawn of this color advances by.
func (c Color) pawnDir() int {
	if c == White {
		return 1
	}
	return -1
}

// homeRank is the back rank the color's king and rooks start on.
func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return 7
}

func (c Color) pawnStartRank() int {
	if c == White {
		return 1
	}
	return 6
}

func (c Color) promotionRank() int {
	if c == White {
		return 7
	}
	return 0
}

// Piece is a board occupant or, for the PawnTo* values, a promotion intent
// carried by a Move. Promotion intents never persist on the board.
type Piece uint8

const (
	Empty Piece = iota
	Rook
	Knight
	Bishop
	Queen
	King
	Pawn
	PawnToRook
	PawnToKnight
	PawnToBishop
	PawnToQueen
)

// IsPawn reports whether p is a pawn or a pawn promotion intent.
func (p Piece) IsPawn() bool {
	switch p {
	case Pawn, PawnToRook, PawnToKnight, PawnToBishop, PawnToQueen:
		return true
	default:
		return false
	}
}

// IsPromotion reports whether p is one of the promotion intents.
func (p Piece) IsPromotion() bool {
	return p.IsPawn() && p != Pawn
}

// Promoted returns the real piece a promotion intent becomes, or Empty.
func (p Piece) Promoted() Piece {
	switch p {
	case PawnToRook:
		return Rook
	case PawnToKnight:
		return Knight
	case PawnToBishop:
		return Bishop
	case PawnToQueen:
		return Queen
	default:
		return Empty
	}
}

// Occupant returns the piece kind that must stand on the origin square for
// a move tagged with p.
func (p Piece) Occupant() Piece {
	if p.IsPawn() {
		return Pawn
	}
	return p
}

// PromotionTo returns the intent that promotes a pawn into target, or Empty if
// target is not a legal promotion piece.
func PromotionTo(target Piece) Piece {
	switch target {
	case Rook:
		return PawnToRook
	case Knight:
		return PawnToKnight
	case Bishop:
		return PawnToBishop
	case Queen:
		return PawnToQueen
	default:
		return Empty
	}
}

var pieceLetters = [...]byte{
	Empty:        '.',
	Rook:         'R',
	Knight:       'N',
	Bishop:       'B',
	Queen:        'Q',
	King:         'K',
	Pawn:         'P',
	PawnToRook:   'r',
	PawnToKnight: 'n',
	PawnToBishop: 'b',
	PawnToQueen:  'q',
}

func (p Piece) String() string {
	if int(p) >= len(pieceLetters) {
		return "?"
	}
	return string(pieceLetters[p])
}

// wire codes: R=0 N=1 B=2 Q=3 K=4 P=5 PtoR=6 PtoN=7 PtoB=8 PtoQ=9, 10-15 decode as Empty.
func (p Piece) code() uint16 {
	if p == Empty || p > PawnToQueen {
		return 0xF
	}
	return uint16(p) - 1
}

func pieceFromCode(c uint16) Piece {
	if c > 9 {
		return Empty
	}
	return Piece(c + 1)
}
