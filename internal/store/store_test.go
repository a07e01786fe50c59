package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/rules"
)

var t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, cacheSize int) *Store {
	t.Helper()
	s, err := New(Config{Dir: t.TempDir(), CacheSize: cacheSize, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleGame returns a game with a few moves, a draw offer and a custom clock.
func sampleGame(t *testing.T, id string) *game.Game {
	t.Helper()
	g, err := game.New(game.Options{
		ID:         id,
		Name:       "brave-otter",
		White:      "alice",
		Black:      "bob",
		WhiteTime:  3 * time.Minute,
		BlackTime:  4 * time.Minute,
		WhiteBonus: 2 * time.Second,
		BlackBonus: 3 * time.Second,
	}, t0)
	if err != nil {
		t.Fatal(err)
	}
	at := t0
	for _, uci := range []string{"e2e4", "c7c5", "g1f3", "d7d6"} {
		at = at.Add(7 * time.Second)
		m, err := rules.ParseUCI(&g.State, uci)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.Play(m, at); err != nil {
			t.Fatalf("Play(%s): %v", uci, err)
		}
	}
	if _, err := g.UpdateDraw(rules.Black, true); err != nil {
		t.Fatal(err)
	}
	return g
}

func assertSameGame(t *testing.T, got, want *game.Game) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.White != want.White || got.Black != want.Black {
		t.Errorf("labels = %q %q %q %q", got.ID, got.Name, got.White, got.Black)
	}
	if got.Start != want.Start || got.StartFullMove != want.StartFullMove {
		t.Error("start position differs")
	}
	if got.State != want.State {
		t.Errorf("state = %s, want %s", got.FEN(), want.FEN())
	}
	if got.NumMoves != want.NumMoves || got.Result != want.Result {
		t.Errorf("NumMoves=%d Result=%v, want %d %v", got.NumMoves, got.Result, want.NumMoves, want.Result)
	}
	if got.WhiteDrawOffer != want.WhiteDrawOffer || got.BlackDrawOffer != want.BlackDrawOffer {
		t.Error("draw offers differ")
	}
	if got.WhiteTime != want.WhiteTime || got.BlackTime != want.BlackTime ||
		got.WhiteBonus != want.WhiteBonus || got.BlackBonus != want.BlackBonus {
		t.Error("clocks differ")
	}
	if !got.Created.Equal(want.Created) || !got.LastMove.Equal(want.LastMove) {
		t.Errorf("times = %v %v, want %v %v", got.Created, got.LastMove, want.Created, want.LastMove)
	}
	gs, ws := got.History.Snapshots(), want.History.Snapshots()
	if len(gs) != len(ws) {
		t.Fatalf("history len = %d, want %d", len(gs), len(ws))
	}
	for i := range ws {
		if gs[i] != ws[i] {
			t.Errorf("history[%d] differs", i)
		}
	}
	if len(got.Moves) != len(want.Moves) {
		t.Fatalf("moves len = %d, want %d", len(got.Moves), len(want.Moves))
	}
	for i := range want.Moves {
		if got.Moves[i] != want.Moves[i] {
			t.Errorf("move %d = %v, want %v", i, got.Moves[i], want.Moves[i])
		}
	}
}

func TestPutGet(t *testing.T) {
	for _, cacheSize := range []int{16, -1} {
		s := newTestStore(t, cacheSize)
		want := sampleGame(t, "game-1")
		if err := s.Put(want); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get("game-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertSameGame(t, got, want)
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	s := newTestStore(t, 16)
	if err := s.Put(sampleGame(t, "g")); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Get("g")
	a.White = "mallory"
	a.Moves[0] = rules.NullMove
	b, err := s.Get("g")
	if err != nil {
		t.Fatal(err)
	}
	if b.White != "alice" || b.Moves[0] == rules.NullMove {
		t.Error("mutating a returned record changed the stored one")
	}
}

func TestGet_AfterReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{Dir: dir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	want := sampleGame(t, "persisted")
	if _, err := want.Resign(rules.White); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(want); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(Config{Dir: dir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Get("persisted")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	assertSameGame(t, got, want)
	if got.Result != game.BlackWinResignation {
		t.Errorf("Result = %v", got.Result)
	}
}

func TestGet_NotFoundAndInvalid(t *testing.T) {
	s := newTestStore(t, 16)
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
	for _, id := range []string{"", "../etc", "a/b", "x y"} {
		if _, err := s.Get(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Get(%q) = %v, want ErrInvalidID", id, err)
		}
	}
	if err := s.Put(&game.Game{ID: "../x"}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Put with bad id = %v", err)
	}
}

func TestGet_Corrupt(t *testing.T) {
	s := newTestStore(t, -1)
	if err := s.Put(sampleGame(t, "c")); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(s.dir, "c"+fileExt)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	bad := append([]byte(nil), data...)
	bad[14] ^= 0xff // checksum
	if err := os.WriteFile(path, bad, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("c"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get with bad checksum = %v, want ErrCorrupt", err)
	}

	bad = append([]byte(nil), data...)
	copy(bad[0:4], "XXXX")
	if err := os.WriteFile(path, bad, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("c"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get with bad magic = %v, want ErrCorrupt", err)
	}
}

func TestDecodeGame_Truncated(t *testing.T) {
	body := encodeGame(sampleGame(t, "t"))
	for _, n := range []int{0, 5, len(body) / 2, len(body) - 1} {
		if _, err := decodeGame(body[:n]); !errors.Is(err, ErrCorrupt) {
			t.Errorf("decodeGame(%d of %d bytes) = %v, want ErrCorrupt", n, len(body), err)
		}
	}
	if _, err := decodeGame(append(body, 0)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("decodeGame with trailing byte = %v, want ErrCorrupt", err)
	}
}

func TestListDelete(t *testing.T) {
	s := newTestStore(t, 16)
	for _, id := range []string{"b", "a", "c"} {
		if err := s.Put(sampleGame(t, id)); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("List = %v", ids)
	}

	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v", err)
	}
	if err := s.Delete("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}
	ids, _ = s.List()
	if len(ids) != 2 {
		t.Errorf("List after Delete = %v", ids)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t, 1)
	if err := s.Put(sampleGame(t, "x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(sampleGame(t, "y")); err != nil {
		t.Fatal(err)
	}
	// x was evicted by y.
	if _, err := s.Get("x"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("x"); err != nil {
		t.Fatal(err)
	}

	st := s.Stats()
	if st.Writes != 2 || st.Reads != 2 {
		t.Errorf("Writes=%d Reads=%d", st.Writes, st.Reads)
	}
	if st.CacheMisses != 1 || st.CacheHits != 1 {
		t.Errorf("CacheHits=%d CacheMisses=%d, want 1 and 1", st.CacheHits, st.CacheMisses)
	}
	if st.CachedGames != 1 {
		t.Errorf("CachedGames = %d, want 1", st.CachedGames)
	}
	if st.BytesWritten == 0 {
		t.Error("BytesWritten = 0")
	}
}
