package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/notation"
)

// Sink receives replayed games.
type Sink interface {
	Put(g *game.Game) error
}

// Config configures the import worker.
type Config struct {
	WatchDir     string         // Directory to watch for PGN files
	ProcessedDir string         // Imported files are moved here
	FailedDir    string         // Files that could not be read are moved here
	Workers      int            // Files replayed in parallel, default 2
	PollInterval time.Duration  // How often to check for new files
	Logger       zerolog.Logger // Logger
}

// Worker watches a folder and imports the games of every PGN file dropped
// into it, replaying each through the engine.
type Worker struct {
	cfg  Config
	sink Sink
	log  zerolog.Logger
}

// FileStats summarizes one imported file.
type FileStats struct {
	Games    int // games read from the file
	Imported int // games handed to the sink
	Rejected int // games the engine could not replay
	Mismatch int // imported games whose engine result disagrees with the Result tag
}

// NewWorker creates an import worker. It returns nil when WatchDir is empty.
func NewWorker(cfg Config, sink Sink) (*Worker, error) {
	if cfg.WatchDir == "" {
		return nil, nil
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = filepath.Join(cfg.WatchDir, "processed")
	}
	if cfg.FailedDir == "" {
		cfg.FailedDir = filepath.Join(cfg.WatchDir, "failed")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}

	for _, dir := range []string{cfg.WatchDir, cfg.ProcessedDir, cfg.FailedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Worker{
		cfg:  cfg,
		sink: sink,
		log:  cfg.Logger.With().Str("component", "ingest").Logger(),
	}, nil
}

// Run polls the watch directory until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().
		Str("watch_dir", w.cfg.WatchDir).
		Str("processed_dir", w.cfg.ProcessedDir).
		Msg("ingest worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, _, err := w.Scan(ctx); err != nil {
				w.log.Warn().Err(err).Msg("process files failed")
			}
		}
	}
}

// Scan imports every PGN file currently in the watch directory, up to
// Workers files at a time, and moves each to the processed or failed
// directory.
func (w *Worker) Scan(ctx context.Context) (processed, failed int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	entries, err := os.ReadDir(w.cfg.WatchDir)
	if err != nil {
		return 0, 0, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isPGNFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return 0, 0, nil
	}
	sort.Strings(files)
	w.log.Info().Int("files", len(files)).Int("workers", w.cfg.Workers).Msg("found PGN files")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(w.cfg.Workers)
	for _, name := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			src := filepath.Join(w.cfg.WatchDir, name)
			stats, err := w.ImportFile(ctx, src)

			dest := w.cfg.ProcessedDir
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Error().Err(err).Str("file", name).Msg("import failed")
				dest = w.cfg.FailedDir
			} else {
				w.log.Info().
					Str("file", name).
					Int("games", stats.Games).
					Int("imported", stats.Imported).
					Int("rejected", stats.Rejected).
					Int("mismatch", stats.Mismatch).
					Msg("file imported")
			}
			if err := os.Rename(src, filepath.Join(dest, name)); err != nil {
				w.log.Warn().Err(err).Str("file", name).Msg("move file failed")
			}

			mu.Lock()
			if err != nil {
				failed++
			} else {
				processed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return processed, failed, ctx.Err()
}

// ImportFile replays every game in path and hands the replayed records to
// the sink, named after the file and the game's position in it.
func (w *Worker) ImportFile(ctx context.Context, path string) (FileStats, error) {
	var stats FileStats
	prefix := idPrefix(path)
	err := notation.ReplayFile(ctx, path, func(r notation.Replayed) error {
		stats.Games++
		if r.Err != nil {
			stats.Rejected++
			w.log.Debug().Err(r.Err).Str("file", filepath.Base(path)).Int("game", r.Index).Msg("game rejected")
			return nil
		}
		if !r.Agrees() {
			stats.Mismatch++
		}
		r.Game.ID = fmt.Sprintf("%s-%d", prefix, r.Index)
		if err := w.sink.Put(r.Game); err != nil {
			return fmt.Errorf("store game %d: %w", r.Index, err)
		}
		stats.Imported++
		return nil
	})
	return stats, err
}

// idPrefix turns a file name into a game ID prefix of letters, digits, -
// and _.
func idPrefix(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".pgn")
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
		if sb.Len() >= 48 {
			break
		}
	}
	if sb.Len() == 0 {
		return "pgn"
	}
	return sb.String()
}

func isPGNFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == ".pgn" {
		return true
	}
	if ext == ".zst" {
		base := name[:len(name)-4]
		return filepath.Ext(base) == ".pgn"
	}
	return false
}
