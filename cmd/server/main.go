package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Signal/internal/adapters/http"
	wssignal "github.com/dkeye/Signal/internal/adapters/signal"
	"github.com/dkeye/Signal/internal/app"
	"github.com/dkeye/Signal/internal/app/orch"
	"github.com/dkeye/Signal/internal/config"
)

func setupLogger(mode, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if mode != "release" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Err(err).Str("level", level).Msg("unknown log level, using info")
	}
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Console output until the config says otherwise, so config.Load can log.
	setupLogger("", "info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.Mode, cfg.LogLevel)

	action, err := app.ParseBackpressureAction(cfg.Backpressure)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backpressure policy")
	}
	iceServers := cfg.ICEServers()

	o := &orch.Orchestrator{
		Registry:    app.NewRegistry(),
		Policy:      app.SimplePolicy{Action: action},
		ICEServers:  iceServers,
		RedirectURL: cfg.RedirectURL,
		SurveyURL:   cfg.SurveyURL,
	}
	ctrl := wssignal.NewSignalWSController(
		o,
		wssignal.NewRateLimiter(cfg.RateLimit.Messages, cfg.RateLimit.Interval),
		wssignal.Settings{
			ReadLimit:  cfg.ReadLimit,
			PingPeriod: cfg.PingPeriod,
			PongWait:   cfg.PongWait,
			WriteWait:  cfg.WriteWait,
			SendBuffer: cfg.SendBuffer,
		},
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupRouter(ctx, cfg, o, ctrl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Int("ice_servers", len(iceServers)).Msg("Signal server started")
	if err := run(ctx, srv, o, cfg.ShutdownAfter); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

// run serves srv until ctx is done or, when after > 0, until after elapses.
// Every signaling connection is closed before the listener shuts down.
func run(ctx context.Context, srv *http.Server, o *orch.Orchestrator, after time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		var deadline <-chan time.Time
		if after > 0 {
			timer := time.NewTimer(after)
			defer timer.Stop()
			deadline = timer.C
			log.Info().Dur("after", after).Msg("scheduled shutdown")
		}
		select {
		case <-gctx.Done():
		case <-deadline:
			log.Info().Msg("scheduled shutdown reached")
		}

		log.Info().Msg("Shutting down")
		o.CloseAll()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
