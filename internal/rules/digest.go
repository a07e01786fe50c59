package rules

import (
	"encoding/hex"
	"fmt"
)

// KeySize is the byte length of a packed PositionKey.
const KeySize = 34

// PositionKey is an exact packed position used to confirm repetitions:
//   bytes 0-31: 64 squares, two per byte (high nibble = lower square index);
//               nibble 0 = empty, 1-6 = white R N B Q K P, 9-14 = black R N B Q K P
//   byte 32:    en-passant square or 64
//   byte 33:    bit0 white to move, bit1-4 castling K Q k q
// The half-move clock is not part of a position's identity.
type PositionKey [KeySize]byte

// Key packs the repetition-relevant parts of s.
func (s *GameState) Key() PositionKey {
	var k PositionKey
	for sq := 0; sq < 64; sq++ {
		p, c := s.Board.At(sq/8, sq%8)
		var nib byte
		if p != Empty {
			nib = byte(p)
			if c == Black {
				nib |= 0x8
			}
		}
		if sq%2 == 0 {
			k[sq/2] = nib << 4
		} else {
			k[sq/2] |= nib
		}
	}
	k[32] = s.EnPassant
	var flags byte
	for i, set := range [5]bool{s.WhiteToMove, s.WhiteCastleKing, s.WhiteCastleQueen, s.BlackCastleKing, s.BlackCastleQueen} {
		if set {
			flags |= 1 << i
		}
	}
	k[33] = flags
	return k
}

func (k PositionKey) String() string {
	return hex.EncodeToString(k[:])
}

// State rebuilds the position packed in k. The half-move clock is not part
// of the key and is supplied by the caller.
func (k PositionKey) State(halfMoves uint8) (GameState, error) {
	var s GameState
	for sq := 0; sq < 64; sq++ {
		nib := k[sq/2] & 0x0f
		if sq%2 == 0 {
			nib = k[sq/2] >> 4
		}
		if nib == 0 {
			continue
		}
		p := Piece(nib & 0x7)
		if p < Rook || p > Pawn {
			return GameState{}, fmt.Errorf("invalid piece nibble %#x at square %d", nib, sq)
		}
		c := White
		if nib&0x8 != 0 {
			c = Black
		}
		s.Board.Put(sq/8, sq%8, p, c)
	}
	if k[32] > NoEnPassant {
		return GameState{}, fmt.Errorf("invalid en-passant square %d", k[32])
	}
	s.EnPassant = k[32]
	if k[33]&^0x1f != 0 {
		return GameState{}, fmt.Errorf("invalid state flags %#x", k[33])
	}
	flags := k[33]
	s.WhiteToMove = flags&0x01 != 0
	s.WhiteCastleKing = flags&0x02 != 0
	s.WhiteCastleQueen = flags&0x04 != 0
	s.BlackCastleKing = flags&0x08 != 0
	s.BlackCastleQueen = flags&0x10 != 0
	s.HalfMoves = halfMoves
	return s, nil
}

// zobrist holds the random keys for the 64-bit position digest.
type zobrist struct {
	pieces    [2][6][64]uint64
	side      uint64
	castling  [4]uint64
	enPassant [8]uint64
}

var zobristKeys = newZobrist(0x6d6f6f6e63686573)

// splitmix64 gives a fixed key table across processes, so persisted
// digests stay comparable.
type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func newZobrist(seed uint64) *zobrist {
	rng := splitmix64{state: seed}
	z := &zobrist{}
	for c := range z.pieces {
		for p := range z.pieces[c] {
			for sq := range z.pieces[c][p] {
				z.pieces[c][p][sq] = rng.next()
			}
		}
	}
	z.side = rng.next()
	for i := range z.castling {
		z.castling[i] = rng.next()
	}
	for i := range z.enPassant {
		z.enPassant[i] = rng.next()
	}
	return z
}

// Digest returns a 64-bit Zobrist fingerprint over the same fields as Key.
func (s *GameState) Digest() uint64 {
	z := zobristKeys
	var h uint64
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p, c := s.Board.At(r, f)
			if p == Empty || p > Pawn {
				continue
			}
			h ^= z.pieces[c][p-Rook][r*8+f]
		}
	}
	if s.WhiteToMove {
		h ^= z.side
	}
	for i, set := range [4]bool{s.WhiteCastleKing, s.WhiteCastleQueen, s.BlackCastleKing, s.BlackCastleQueen} {
		if set {
			h ^= z.castling[i]
		}
	}
	if _, col, ok := s.EnPassantSquare(); ok {
		h ^= z.enPassant[col]
	}
	return h
}
