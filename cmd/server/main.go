package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/httpapi"
	"github.com/andrewkomo/moon-chess/internal/ingest"
	"github.com/andrewkomo/moon-chess/internal/logx"
	"github.com/andrewkomo/moon-chess/internal/match"
	"github.com/andrewkomo/moon-chess/internal/store"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func main() {
	var (
		// Server
		addr = flag.String("addr", envOr("MOONCHESS_ADDR", ":8008"), "listen address")

		// Storage
		dataDir   = flag.String("data", envOr("MOONCHESS_DATA", "./data/games"), "game store directory")
		cacheSize = flag.Int("cache-size", 1024, "game records kept in memory (negative disables)")
		level     = flag.String("compression", "default", "zstd level: fast, default or best")

		// PGN import
		importDir = flag.String("import-dir", envOr("MOONCHESS_IMPORT", ""), "directory to watch for PGN files to import (empty = disabled)")

		// Clock defaults
		timeBank = flag.Duration("time", game.DefaultTimeBank, "default initial time bank per side")
		bonus    = flag.Duration("bonus", game.DefaultBonus, "default per-move bonus")

		// Logging
		logJSON  = flag.Bool("log-json", envBool("MOONCHESS_LOG_JSON", false), "log JSON lines instead of console output")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger, err := logx.NewLogger(logx.Options{JSON: *logJSON, Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	st, err := store.New(store.Config{
		Dir:       *dataDir,
		CacheSize: *cacheSize,
		Level:     *level,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open game store")
	}
	defer st.Close()

	ids, err := st.List()
	if err != nil {
		logger.Fatal().Err(err).Msg("list games")
	}
	logger.Info().Str("dir", *dataDir).Int("games", len(ids)).Msg("opened game store")

	mgr := match.NewManager(match.Config{
		Logger:   logger,
		TimeBank: *timeBank,
		Bonus:    *bonus,
	}, st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         *addr,
		Handler:      httpapi.NewRouter(logger, mgr),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	worker, err := ingest.NewWorker(ingest.Config{
		WatchDir: *importDir,
		Logger:   logger,
	}, st)
	if err != nil {
		logger.Fatal().Err(err).Msg("create ingest worker")
	}
	if worker != nil {
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("ingest worker stopped")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}

	stats := st.Stats()
	logger.Info().
		Uint64("reads", stats.Reads).
		Uint64("writes", stats.Writes).
		Uint64("cache_hits", stats.CacheHits).
		Msg("shutdown complete")
}
