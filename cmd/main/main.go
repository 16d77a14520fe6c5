package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/rs/zerolog"

	"pricematch-service/internal/config"
	"pricematch-service/internal/match/service"
	"pricematch-service/internal/repo"
	serverhttp "pricematch-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg, err := config.Load()
	if err != nil {
		// конфиг кривой — падаем на старте, не посреди прогона
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)

	var store repo.GroupStore = repo.NewMemoryStore()
	if cfg.DBPath != "" {
		s, err := repo.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open group store")
		}
		defer s.Close()
		store = s
		logger.Info().Str("path", cfg.DBPath).Msg("sqlite group store")
	}

	matcher, err := service.NewMatcher(cfg.Match, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("matcher options")
	}

	r := serverhttp.NewRouter(cfg, logger, matcher)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
