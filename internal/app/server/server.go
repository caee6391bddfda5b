package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"vitals-monitor/internal/api"
	"vitals-monitor/internal/config"
	"vitals-monitor/internal/engine"
	"vitals-monitor/internal/listener"
	"vitals-monitor/internal/notify"
	"vitals-monitor/internal/observability"
	"vitals-monitor/internal/rulefile"
	"vitals-monitor/internal/storage"
	"vitals-monitor/internal/vitals"
)

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := engine.NewLocked(buildMonitor(cfg))

	reg := newRuleRegistry(mon, sourcePostgres, sourceFile)

	// Rules file
	if path := cfg.Monitor.RulesFile; path != "" {
		defs, err := rulefile.Load(path)
		if err == nil {
			err = reg.Apply(sourceFile, defs)
		}
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("load rules file")
		}
		go func() {
			err := rulefile.Watch(rootCtx, path, func(defs []vitals.Def) {
				if err := reg.Apply(sourceFile, defs); err != nil {
					log.Error().Err(err).Msg("apply rules file")
				}
			})
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("rules watcher stopped")
			}
		}()
	}

	// Storage + listener (LISTEN/NOTIFY)
	if cfg.PostgresEnabled() {
		store, err := storage.New(rootCtx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init storage")
		}
		defer store.Close()

		if err := reg.Refresh(rootCtx, sourcePostgres, store); err != nil {
			log.Fatal().Err(err).Msg("initial rules load")
		}
		refresh := func(ctx context.Context) error { return reg.Refresh(ctx, sourcePostgres, store) }
		go listener.ListenAndRefresh(rootCtx, store, refresh, cfg.Listener.Channel, cfg.Backoff())
	}

	// HTTP
	h := api.NewVitalsHandler(mon, reg)
	r := api.Router(h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	waitForSignal()
	log.Info().Msg("shutdown...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = srv.Shutdown(shCtx)
}

func buildMonitor(cfg config.Config) *engine.Monitor {
	opts := []engine.Option{
		engine.WithNotifier(buildNotifier(cfg)),
		engine.WithRecorder(observability.PromRecorder{}),
	}
	if cfg.Monitor.LiveLimits {
		opts = append(opts, engine.WithLiveLimits())
	}
	return engine.New(opts...)
}

// buildNotifier picks the alert sink. The console notifier blocks every
// request that trips a rule for the whole blink animation; config caps the
// animation below the request timeout.
func buildNotifier(cfg config.Config) notify.Notifier {
	if cfg.Monitor.Notifier == "console" {
		return notify.NewConsole(notify.WithBlink(cfg.Monitor.BlinkCycles, cfg.BlinkInterval()))
	}
	return notify.NewLog(log.Logger.With().Str("component", "notifier").Logger())
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
