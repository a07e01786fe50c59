package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/rules"
)

// Game file layout:
//
//	Header (16 bytes, uncompressed):
//	  - Magic (4): "MCG1"
//	  - Version (2)
//	  - Flags (2): reserved
//	  - BodySize (4): uncompressed body length
//	  - Checksum (4): CRC32 of uncompressed body
//	Body (zstd):
//	  - ID, Name, White, Black: uint16 length + bytes each
//	  - Start key (34), start half-moves (1), start full move (2)
//	  - State key (34), state half-moves (1)
//	  - NumMoves (2), Result (1), draw offers (1: bit0 white, bit1 black)
//	  - WhiteTime, BlackTime, WhiteBonus, BlackBonus (8 each, nanoseconds)
//	  - Created, LastMove (8 each, unix nanoseconds, 0 = unset)
//	  - History count (2) + count × (digest 8, key 34)
//	  - Move count (2) + count × packed move (2)

const (
	fileMagic      = "MCG1"
	fileVersion    = 1
	fileHeaderSize = 16

	snapshotSize = 8 + rules.KeySize
)

// ErrCorrupt is returned when a stored record cannot be decoded.
var ErrCorrupt = errors.New("corrupt game record")

type fileHeader struct {
	Version  uint16
	Flags    uint16
	BodySize uint32
	Checksum uint32
}

func encodeHeader(h fileHeader) []byte {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:4], fileMagic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.Flags)
	binary.BigEndian.PutUint32(buf[8:12], h.BodySize)
	binary.BigEndian.PutUint32(buf[12:16], h.Checksum)
	return buf
}

func decodeHeader(buf []byte) (fileHeader, error) {
	var h fileHeader
	if len(buf) < fileHeaderSize {
		return h, fmt.Errorf("%w: header too short", ErrCorrupt)
	}
	if string(buf[0:4]) != fileMagic {
		return h, fmt.Errorf("%w: invalid magic %q", ErrCorrupt, buf[0:4])
	}
	h.Version = binary.BigEndian.Uint16(buf[4:6])
	if h.Version != fileVersion {
		return h, fmt.Errorf("unsupported version: %d", h.Version)
	}
	h.Flags = binary.BigEndian.Uint16(buf[6:8])
	h.BodySize = binary.BigEndian.Uint32(buf[8:12])
	h.Checksum = binary.BigEndian.Uint32(buf[12:16])
	return h, nil
}

func headerFor(body []byte) fileHeader {
	return fileHeader{
		Version:  fileVersion,
		BodySize: uint32(len(body)),
		Checksum: crc32.ChecksumIEEE(body),
	}
}

// encodeGame serializes g into an uncompressed body.
func encodeGame(g *game.Game) []byte {
	snaps := g.History.Snapshots()
	size := 4*2 + len(g.ID) + len(g.Name) + len(g.White) + len(g.Black) +
		rules.KeySize + 1 + 2 + rules.KeySize + 1 + 2 + 1 + 1 + 6*8 +
		2 + len(snaps)*snapshotSize + 2 + len(g.Moves)*2
	buf := make([]byte, 0, size)

	for _, s := range []string{g.ID, g.Name, g.White, g.Black} {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
		buf = append(buf, s...)
	}

	startKey := g.Start.Key()
	buf = append(buf, startKey[:]...)
	buf = append(buf, g.Start.HalfMoves)
	buf = binary.BigEndian.AppendUint16(buf, uint16(g.StartFullMove))

	stateKey := g.State.Key()
	buf = append(buf, stateKey[:]...)
	buf = append(buf, g.State.HalfMoves)

	buf = binary.BigEndian.AppendUint16(buf, uint16(g.NumMoves))
	buf = append(buf, byte(g.Result))
	var offers byte
	if g.WhiteDrawOffer {
		offers |= 1
	}
	if g.BlackDrawOffer {
		offers |= 2
	}
	buf = append(buf, offers)

	for _, d := range []time.Duration{g.WhiteTime, g.BlackTime, g.WhiteBonus, g.BlackBonus} {
		buf = binary.BigEndian.AppendUint64(buf, uint64(d))
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(unixNano(g.Created)))
	buf = binary.BigEndian.AppendUint64(buf, uint64(unixNano(g.LastMove)))

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(snaps)))
	for _, snap := range snaps {
		buf = binary.BigEndian.AppendUint64(buf, snap.Digest)
		buf = append(buf, snap.Key[:]...)
	}

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(g.Moves)))
	for _, m := range g.Moves {
		buf = binary.BigEndian.AppendUint16(buf, uint16(m))
	}
	return buf
}

// decodeGame parses a body written by encodeGame.
func decodeGame(data []byte) (*game.Game, error) {
	r := reader{buf: data}
	g := &game.Game{}

	g.ID = r.str()
	g.Name = r.str()
	g.White = r.str()
	g.Black = r.str()

	var err error
	if g.Start, err = r.state(); err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	g.StartFullMove = int(r.u16())
	if g.State, err = r.state(); err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}

	g.NumMoves = int(r.u16())
	g.Result = game.Result(r.u8())
	offers := r.u8()
	g.WhiteDrawOffer = offers&1 != 0
	g.BlackDrawOffer = offers&2 != 0

	g.WhiteTime = time.Duration(r.u64())
	g.BlackTime = time.Duration(r.u64())
	g.WhiteBonus = time.Duration(r.u64())
	g.BlackBonus = time.Duration(r.u64())
	g.Created = fromUnixNano(int64(r.u64()))
	g.LastMove = fromUnixNano(int64(r.u64()))

	nSnaps := int(r.u16())
	if nSnaps > game.HistoryCapacity {
		return nil, fmt.Errorf("%w: %d history entries", ErrCorrupt, nSnaps)
	}
	for i := 0; i < nSnaps && r.err == nil; i++ {
		var snap game.Snapshot
		snap.Digest = r.u64()
		copy(snap.Key[:], r.bytes(rules.KeySize))
		g.History.Append(snap)
	}

	nMoves := int(r.u16())
	if nMoves > game.HistoryCapacity {
		return nil, fmt.Errorf("%w: %d moves", ErrCorrupt, nMoves)
	}
	if nMoves > 0 {
		g.Moves = make([]rules.Move, 0, nMoves)
	}
	for i := 0; i < nMoves && r.err == nil; i++ {
		g.Moves = append(g.Moves, rules.Move(r.u16()))
	}

	if r.err != nil {
		return nil, r.err
	}
	if len(r.buf) != r.off {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.buf)-r.off)
	}
	if !g.Result.Valid() || g.Result == game.Invalid {
		return nil, fmt.Errorf("%w: result %d", ErrCorrupt, g.Result)
	}
	return g, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// reader is a bounds-checked big-endian cursor; the first short read sets err
// and all later reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return make([]byte, n)
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrCorrupt, r.off)
		return make([]byte, n)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8   { return r.bytes(1)[0] }
func (r *reader) u16() uint16 { return binary.BigEndian.Uint16(r.bytes(2)) }
func (r *reader) u64() uint64 { return binary.BigEndian.Uint64(r.bytes(8)) }

func (r *reader) str() string {
	n := int(r.u16())
	return string(r.bytes(n))
}

func (r *reader) state() (rules.GameState, error) {
	var key rules.PositionKey
	copy(key[:], r.bytes(rules.KeySize))
	half := r.u8()
	if r.err != nil {
		return rules.GameState{}, r.err
	}
	return key.State(half)
}
