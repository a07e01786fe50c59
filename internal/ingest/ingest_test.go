package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/andrewkomo/moon-chess/internal/game"
)

type memorySink struct {
	mu    sync.Mutex
	games map[string]*game.Game
}

func (s *memorySink) Put(g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.games == nil {
		s.games = make(map[string]*game.Game)
	}
	s.games[g.ID] = g
	return nil
}

func (s *memorySink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id := range s.games {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

const twoGames = `[Event "Scholar"]
[White "a"]
[Black "b"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "Fool"]
[White "c"]
[Black "d"]
[Result "1-0"]

1. f3 e5 2. g4 Qh4# 1-0
`

func TestNewWorker_Disabled(t *testing.T) {
	w, err := NewWorker(Config{}, &memorySink{})
	if err != nil || w != nil {
		t.Fatalf("NewWorker = %v, %v; want nil, nil", w, err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "club night.pgn"), []byte(twoGames), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := &memorySink{}
	w, err := NewWorker(Config{WatchDir: dir, Logger: zerolog.Nop()}, sink)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	processed, failed, err := w.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if processed != 1 || failed != 0 {
		t.Fatalf("processed=%d failed=%d, want 1 and 0", processed, failed)
	}

	ids := sink.ids()
	want := []string{"club_night-1", "club_night-2"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if got := sink.games["club_night-2"].Result; got != game.BlackWinCheckmate {
		t.Errorf("fool's mate result = %v", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "processed", "club night.pgn")); err != nil {
		t.Errorf("file not moved to processed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("non-PGN file touched: %v", err)
	}

	processed, _, _ = w.Scan(context.Background())
	if processed != 0 {
		t.Errorf("second scan processed %d files", processed)
	}
}

func TestImportFile_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(path, []byte(twoGames), 0644); err != nil {
		t.Fatal(err)
	}
	w, _ := NewWorker(Config{WatchDir: t.TempDir(), Logger: zerolog.Nop()}, &memorySink{})

	stats, err := w.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	// The second game is tagged 1-0 but ends in black's mate.
	want := FileStats{Games: 2, Imported: 2, Mismatch: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestIsPGNFile(t *testing.T) {
	tests := map[string]bool{
		"a.pgn":     true,
		"a.pgn.zst": true,
		"a.zst":     false,
		"a.txt":     false,
		"pgn":       false,
	}
	for name, want := range tests {
		if got := isPGNFile(name); got != want {
			t.Errorf("isPGNFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIDPrefix(t *testing.T) {
	tests := []struct{ path, want string }{
		{"/x/lichess_2024-01.pgn.zst", "lichess_2024-01"},
		{"club night.pgn", "club_night"},
		{".pgn", "pgn"},
	}
	for _, tt := range tests {
		if got := idPrefix(tt.path); got != tt.want {
			t.Errorf("idPrefix(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
