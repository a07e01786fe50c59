package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var fenPieces = map[byte]Piece{
	'r': Rook, 'n': Knight, 'b': Bishop, 'q': Queen, 'k': King, 'p': Pawn,
}

// ParseFEN loads a position from Forsyth-Edwards Notation. The full-move
// number is parsed for validity and returned; the engine itself does not
// track it. Each side must have exactly one king.
func ParseFEN(fen string) (GameState, int, error) {
	var s GameState
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return s, 0, fmt.Errorf("FEN needs at least 4 fields, got %d", len(fields))
	}

	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return s, 0, fmt.Errorf("FEN board needs 8 ranks, got %d", len(rows))
	}
	kings := [2]int{}
	for i, row := range rows {
		rank := 7 - i
		col := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			lower := ch | 0x20
			p, ok := fenPieces[lower]
			if !ok {
				return s, 0, fmt.Errorf("invalid FEN piece %q", ch)
			}
			if col > 7 {
				return s, 0, fmt.Errorf("FEN rank %d overflows", rank+1)
			}
			c := Black
			if ch != lower {
				c = White
			}
			if p == King {
				kings[c]++
			}
			s.Board.Put(rank, col, p, c)
			col++
		}
		if col != 8 {
			return s, 0, fmt.Errorf("FEN rank %d has %d columns", rank+1, col)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return s, 0, fmt.Errorf("FEN needs one king per side, got white=%d black=%d", kings[White], kings[Black])
	}

	switch fields[1] {
	case "w":
		s.WhiteToMove = true
	case "b":
	default:
		return s, 0, fmt.Errorf("invalid FEN side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				s.WhiteCastleKing = true
			case 'Q':
				s.WhiteCastleQueen = true
			case 'k':
				s.BlackCastleKing = true
			case 'q':
				s.BlackCastleQueen = true
			default:
				return s, 0, fmt.Errorf("invalid FEN castling %q", fields[2])
			}
		}
	}

	s.EnPassant = NoEnPassant
	if fields[3] != "-" {
		rank, col, ok := parseSquare(fields[3])
		if !ok {
			return s, 0, fmt.Errorf("invalid FEN en-passant square %q", fields[3])
		}
		s.EnPassant = uint8(rank*8 + col)
	}

	fullMove := 1
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 || n > 255 {
			return s, 0, fmt.Errorf("invalid FEN half-move clock %q", fields[4])
		}
		s.HalfMoves = uint8(n)
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return s, 0, fmt.Errorf("invalid FEN full-move number %q", fields[5])
		}
		fullMove = n
	}
	return s, fullMove, nil
}

// FormatFEN renders s with the given full-move number.
func FormatFEN(s *GameState, fullMove int) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for col := 0; col < 8; col++ {
			p, c := s.Board.At(rank, col)
			if p == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			ch := p.String()[0]
			if c == Black {
				ch |= 0x20
			}
			sb.WriteByte(ch)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if s.WhiteToMove {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	castling := ""
	if s.WhiteCastleKing {
		castling += "K"
	}
	if s.WhiteCastleQueen {
		castling += "Q"
	}
	if s.BlackCastleKing {
		castling += "k"
	}
	if s.BlackCastleQueen {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	if rank, col, ok := s.EnPassantSquare(); ok {
		sb.WriteString(" " + squareName(rank, col))
	} else {
		sb.WriteString(" -")
	}
	fmt.Fprintf(&sb, " %d %d", s.HalfMoves, fullMove)
	return sb.String()
}
