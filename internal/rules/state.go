package rules

// NoEnPassant marks the absence of an en-passant target square.
const NoEnPassant uint8 = 64

// MaxHalfMoves is the half-move clock value that ends the game (fifty-move rule).
const MaxHalfMoves = 100

// Board is the piece grid plus a parallel "occupant is white" grid. Indexing
// is [rank][col]; an entry of White is meaningful only where Pieces is not
// Empty and is kept false on empty squares.
type Board struct {
	Pieces [8][8]Piece
	White  [8][8]bool
}

// At returns the occupant of a square and its color.
func (b *Board) At(rank, col int) (Piece, Color) {
	p := b.Pieces[rank][col]
	if b.White[rank][col] {
		return p, White
	}
	return p, Black
}

// IsEmpty reports whether a square has no occupant.
func (b *Board) IsEmpty(rank, col int) bool {
	return b.Pieces[rank][col] == Empty
}

// Put places a real piece of the given color on a square.
func (b *Board) Put(rank, col int, p Piece, c Color) {
	b.Pieces[rank][col] = p
	b.White[rank][col] = p != Empty && c == White
}

// Clear empties a square, keeping the color grid in sync.
func (b *Board) Clear(rank, col int) {
	b.Pieces[rank][col] = Empty
	b.White[rank][col] = false
}

// owns reports whether the square holds a piece of color c.
func (b *Board) owns(rank, col int, c Color) bool {
	return b.Pieces[rank][col] != Empty && b.White[rank][col] == (c == White)
}

// findKing locates the king of color c.
func (b *Board) findKing(c Color) (rank, col int, ok bool) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.Pieces[r][f] == King && b.owns(r, f, c) {
				return r, f, true
			}
		}
	}
	return 0, 0, false
}

// GameState is the canonical position. It is a plain value: assigning it
// copies the whole position, which the executor relies on to speculate.
type GameState struct {
	Board       Board
	EnPassant   uint8 // square index rank*8+col, or NoEnPassant
	WhiteToMove bool

	WhiteCastleKing  bool
	WhiteCastleQueen bool
	BlackCastleKing  bool
	BlackCastleQueen bool

	HalfMoves uint8 // plies since the last pawn move or capture
}

var backRank = [8]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewGameState returns the standard initial position.
func NewGameState() GameState {
	var s GameState
	for col, p := range backRank {
		s.Board.Put(0, col, p, White)
		s.Board.Put(1, col, Pawn, White)
		s.Board.Put(6, col, Pawn, Black)
		s.Board.Put(7, col, p, Black)
	}
	s.EnPassant = NoEnPassant
	s.WhiteToMove = true
	s.WhiteCastleKing = true
	s.WhiteCastleQueen = true
	s.BlackCastleKing = true
	s.BlackCastleQueen = true
	return s
}

// SideToMove returns the color whose turn it is.
func (s *GameState) SideToMove() Color {
	if s.WhiteToMove {
		return White
	}
	return Black
}

// EnPassantSquare returns the en-passant target as (rank, col).
func (s *GameState) EnPassantSquare() (rank, col int, ok bool) {
	if s.EnPassant >= NoEnPassant {
		return 0, 0, false
	}
	return int(s.EnPassant) / 8, int(s.EnPassant) % 8, true
}

// castleRights returns pointers to the kingside and queenside flags of c.
func (s *GameState) castleRights(c Color) (kingside, queenside *bool) {
	if c == White {
		return &s.WhiteCastleKing, &s.WhiteCastleQueen
	}
	return &s.BlackCastleKing, &s.BlackCastleQueen
}

// revokeCastling clears every right whose king or rook square is touched by
// a move between the two squares. Rights are never restored.
func (s *GameState) revokeCastling(fromRank, fromCol, toRank, toCol int) {
	touches := func(rank, col int) bool {
		return (fromRank == rank && fromCol == col) || (toRank == rank && toCol == col)
	}
	for _, c := range [2]Color{White, Black} {
		home := c.homeRank()
		kingside, queenside := s.castleRights(c)
		if touches(home, 4) || touches(home, 7) {
			*kingside = false
		}
		if touches(home, 4) || touches(home, 0) {
			*queenside = false
		}
	}
}
