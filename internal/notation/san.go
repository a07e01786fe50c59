package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/andrewkomo/moon-chess/internal/rules"
)

// ErrIllegal is returned when a move is not legal in the given position.
var ErrIllegal = errors.New("illegal move")

const (
	files = "abcdefgh"
	ranks = "12345678"
)

// position converts s into the PGN library's representation.
func position(s *rules.GameState) (*pgn.GameState, error) {
	pos, err := pgn.NewGame(rules.FormatFEN(s, 1))
	if err != nil {
		return nil, fmt.Errorf("convert position: %w", err)
	}
	return pos, nil
}

// FromMv converts a PGN library move into a packed move, reading the moving
// piece from s.
func FromMv(s *rules.GameState, mv pgn.Mv) (rules.Move, error) {
	from, to := int(mv.From), int(mv.To)
	if from < 0 || from > 63 || to < 0 || to > 63 {
		return rules.NullMove, fmt.Errorf("move %d->%d off board", from, to)
	}
	piece := s.Board.Pieces[from/8][from%8]
	if piece == rules.Empty {
		return rules.NullMove, fmt.Errorf("no piece on %c%c", files[from%8], ranks[from/8])
	}
	switch mv.Promo {
	case pgn.PromoQueen:
		piece = rules.PawnToQueen
	case pgn.PromoRook:
		piece = rules.PawnToRook
	case pgn.PromoBishop:
		piece = rules.PawnToBishop
	case pgn.PromoKnight:
		piece = rules.PawnToKnight
	}
	return rules.EncodeMove(piece, from/8, from%8, to/8, to%8), nil
}

// ParseSAN resolves a SAN move such as "Nf3", "exd6" or "e8=Q+" in s. The
// move must be legal in s.
func ParseSAN(s *rules.GameState, san string) (rules.Move, error) {
	san = strings.TrimRight(strings.TrimSpace(san), "+#!?")
	if san == "" {
		return rules.NullMove, fmt.Errorf("empty SAN move")
	}
	pos, err := position(s)
	if err != nil {
		return rules.NullMove, err
	}
	mv, err := pgn.ParseSAN(pos, san)
	if err != nil {
		return rules.NullMove, fmt.Errorf("parse %q: %w", san, err)
	}
	m, err := FromMv(s, mv)
	if err != nil {
		return rules.NullMove, err
	}
	next := *s
	if !rules.Apply(m, &next) {
		return rules.NullMove, fmt.Errorf("%w: %s", ErrIllegal, san)
	}
	return m, nil
}

// SAN renders m in Standard Algebraic Notation for position s, including
// the check or mate suffix.
func SAN(s *rules.GameState, m rules.Move) (string, error) {
	next := *s
	if !rules.Apply(m, &next) {
		return "", fmt.Errorf("%w: %s", ErrIllegal, m.ToUCI())
	}

	fc, tr, tc := m.FromCol(), m.ToRank(), m.ToCol()
	piece := m.Piece()
	var san string

	switch {
	case piece == rules.King && tc-fc == 2:
		san = "O-O"
	case piece == rules.King && fc-tc == 2:
		san = "O-O-O"
	case piece.IsPawn():
		isCapture := fc != tc
		if isCapture {
			san = string(files[fc]) + "x" + string(files[tc]) + string(ranks[tr])
		} else {
			san = string(files[tc]) + string(ranks[tr])
		}
		if p := piece.Promoted(); p != rules.Empty {
			san += "=" + p.String()
		}
	default:
		disambig, err := disambiguate(s, m)
		if err != nil {
			return "", err
		}
		san = piece.String() + disambig
		if !s.Board.IsEmpty(tr, tc) {
			san += "x"
		}
		san += string(files[tc]) + string(ranks[tr])
	}

	opponent := next.SideToMove()
	if rules.IsCheck(opponent, &next) {
		if rules.HasLegalMove(&next) {
			san += "+"
		} else {
			san += "#"
		}
	}
	return san, nil
}

// disambiguate returns the origin file, rank or square needed when another
// piece of the same kind can reach the same destination.
func disambiguate(s *rules.GameState, m rules.Move) (string, error) {
	pos, err := position(s)
	if err != nil {
		return "", err
	}
	from, to := m.From(), m.To()
	fromFile, fromRank := from%8, from/8
	piece := m.Piece()

	var sameFile, sameRank, ambiguous bool
	for _, other := range pgn.GenerateLegalMoves(pos) {
		of := int(other.From)
		if int(other.To) != to || of == from || s.Board.Pieces[of/8][of%8] != piece {
			continue
		}
		ambiguous = true
		if of%8 == fromFile {
			sameFile = true
		}
		if of/8 == fromRank {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return "", nil
	case !sameFile:
		return string(files[fromFile]), nil
	case !sameRank:
		return string(ranks[fromRank]), nil
	default:
		return string(files[fromFile]) + string(ranks[fromRank]), nil
	}
}
