package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewkomo/moon-chess/internal/logx"
	"github.com/andrewkomo/moon-chess/internal/notation"
	"github.com/andrewkomo/moon-chess/internal/store"
)

var errMaxGames = errors.New("max games reached")

func main() {
	var (
		inputPath = flag.String("pgn", "", "Path to PGN file (supports .zst)")
		maxGames  = flag.Int("max-games", 0, "Maximum games to replay (0 = unlimited)")
		board     = flag.Bool("board", false, "Print the final position of each game")
		plain     = flag.Bool("plain", false, "Print boards without color")
		importDir = flag.String("import", "", "Store replayed games in this game store directory")
		logJSON   = flag.Bool("log-json", false, "log JSON lines instead of console output")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: replay --pgn <file.pgn[.zst]> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger, err := logx.NewLogger(logx.Options{JSON: *logJSON})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Info().Str("pgn", *inputPath).Msg("starting replay")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var st *store.Store
	if *importDir != "" {
		st, err = store.New(store.Config{Dir: *importDir, CacheSize: -1, Logger: logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("open game store")
		}
		defer st.Close()
	}

	var replayed, agreed, failed, imported int
	results := make(map[string]int)
	startTime := time.Now()

	err = notation.ReplayFile(ctx, *inputPath, func(r notation.Replayed) error {
		if *maxGames > 0 && replayed >= *maxGames {
			return errMaxGames
		}
		replayed++

		log := logger.With().
			Int("game", r.Index).
			Str("white", r.Tags["White"]).
			Str("black", r.Tags["Black"]).
			Logger()
		if r.Err != nil {
			failed++
			log.Warn().Err(r.Err).Int("plies", r.Plies).Msg("replay failed")
			return nil
		}

		results[r.Game.Result.String()]++
		if r.Agrees() {
			agreed++
		} else {
			log.Warn().
				Str("recorded", r.Recorded()).
				Str("engine", r.Game.Result.String()).
				Msg("result mismatch")
		}
		if r.Unplayed > 0 {
			log.Info().
				Str("engine", r.Game.Result.String()).
				Int("unplayed", r.Unplayed).
				Msg("engine concluded before the recorded end")
		}

		if *board {
			fmt.Printf("\nGame %d: %s - %s  %s (%s)\n", r.Index, r.Tags["White"], r.Tags["Black"], r.Game.Result.PGN(), r.Game.Result)
			if err := notation.Diagram(os.Stdout, &r.Game.State, !*plain); err != nil {
				return err
			}
		}

		if st != nil {
			r.Game.ID = fmt.Sprintf("replay-%d", r.Index)
			if err := st.Put(r.Game); err != nil {
				return fmt.Errorf("import game %d: %w", r.Index, err)
			}
			imported++
		}
		return nil
	})
	if err != nil && !errors.Is(err, errMaxGames) {
		logger.Error().Err(err).Msg("replay stopped")
	}

	ev := logger.Info().
		Int("games", replayed).
		Int("agreed", agreed).
		Int("failed", failed).
		Dur("elapsed", time.Since(startTime))
	for name, n := range results {
		ev = ev.Int(name, n)
	}
	if st != nil {
		ev = ev.Int("imported", imported)
	}
	ev.Msg("replay complete")
}
