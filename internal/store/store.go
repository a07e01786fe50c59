package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/andrewkomo/moon-chess/internal/game"
)

const fileExt = ".mcg"

var (
	// ErrNotFound is returned when no record exists for a game ID.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for IDs that cannot name a record file.
	ErrInvalidID = errors.New("invalid game id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Config configures the Store.
type Config struct {
	Dir       string
	CacheSize int    // records kept in memory, default 1024 (negative disables)
	Level     string // "fast", "default" or "best" zstd level, default "default"
	Logger    zerolog.Logger
}

// Store keeps one compressed file per game.
type Store struct {
	dir string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	cache *recordCache
	stats statsCollector
	log   zerolog.Logger
}

// New opens (creating if needed) a store in cfg.Dir.
func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("store dir is required")
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = 1024
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encoderLevel(cfg.Level)))
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	return &Store{
		dir:     cfg.Dir,
		encoder: encoder,
		decoder: decoder,
		cache:   newRecordCache(cfg.CacheSize),
		log:     cfg.Logger.With().Str("component", "store").Logger(),
	}, nil
}

func encoderLevel(name string) zstd.EncoderLevel {
	switch name {
	case "fast":
		return zstd.SpeedFastest
	case "best":
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// Close releases the compression resources.
func (s *Store) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Get loads the record for id. Each call returns a fresh copy.
func (s *Store) Get(id string) (*game.Game, error) {
	if !validID.MatchString(id) {
		return nil, ErrInvalidID
	}
	s.stats.incrementReads()

	body, ok := s.cache.get(id)
	if !ok {
		var err error
		body, err = s.readBody(id)
		if err != nil {
			return nil, err
		}
		s.cache.put(id, body)
	}

	g, err := decodeGame(body)
	if err != nil {
		s.cache.invalidate(id)
		s.log.Warn().Err(err).Str("game", id).Msg("decode game record")
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return g, nil
}

func (s *Store) readBody(id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}

	h, err := decodeHeader(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	body, err := s.decoder.DecodeAll(data[fileHeaderSize:], make([]byte, 0, h.BodySize))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", id, err)
	}
	if len(body) != int(h.BodySize) || headerFor(body).Checksum != h.Checksum {
		return nil, fmt.Errorf("read %s: %w: checksum mismatch", id, ErrCorrupt)
	}
	return body, nil
}

// Put writes g, replacing any previous record with the same ID.
func (s *Store) Put(g *game.Game) error {
	if !validID.MatchString(g.ID) {
		return ErrInvalidID
	}
	body := encodeGame(g)
	data := encodeHeader(headerFor(body))
	data = s.encoder.EncodeAll(body, data)

	path := s.path(g.ID)
	tmpPath := path + ".tmp"
	if err := writeFileSync(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", g.ID, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", g.ID, err)
	}

	s.cache.put(g.ID, body)
	s.stats.incrementWrites(len(data))
	s.log.Debug().
		Str("game", g.ID).
		Int("moves", g.NumMoves).
		Int("bytes", len(data)).
		Int("uncompressed", len(body)).
		Msg("game record written")
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Delete removes the record for id.
func (s *Store) Delete(id string) error {
	if !validID.MatchString(id) {
		return ErrInvalidID
	}
	s.cache.invalidate(id)
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.stats.incrementDeletes()
	return nil
}

// List returns the IDs of all stored games, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list store: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Stats returns the store counters.
func (s *Store) Stats() Stats {
	st := s.stats.snapshot()
	st.CacheHits, st.CacheMisses, st.CachedGames = s.cache.stats()
	return st
}
