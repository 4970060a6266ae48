package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/application/auth"
	"github.com/MarxCha/poa-dashboard/internal/application/loader"
	"github.com/MarxCha/poa-dashboard/internal/application/navigator"
	"github.com/MarxCha/poa-dashboard/internal/application/orchestrator"
	"github.com/MarxCha/poa-dashboard/internal/application/voice"
	"github.com/MarxCha/poa-dashboard/internal/domain/command"
	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/api"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/config"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/logger"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/storage"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/telemetry"
)

// application holds the wired components of one process
type application struct {
	cfg          *config.Config
	log          *zap.Logger
	metrics      *telemetry.Metrics
	store        session.Store
	client       *api.Client
	loader       *loader.Loader
	voice        *voice.Adapter
	orchestrator *orchestrator.Orchestrator
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, log, nil
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger, rec speech.Recognizer) (*application, error) {
	metrics := telemetry.NewMetrics()

	store, err := storage.NewStoreFactory(cfg.Store,
		storage.WithLogger(log),
		storage.WithInMemoryFallback(cfg.Store.Fallback),
	).CreateStore()
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initializing session store: %w", err)
	}

	// the client reads the token from the gate, which is built from the client
	var gate *auth.Gate
	client, err := api.NewClient(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Retry: &api.RetryConfig{
			MaxRetries:  cfg.API.MaxRetries,
			RetryDelay:  cfg.API.RetryDelay,
			MaxDelay:    cfg.API.MaxRetryDelay,
			Multiplier:  2.0,
			ShouldRetry: api.DefaultRetryConfig().ShouldRetry,
		},
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
		Tokens: func(ctx context.Context) string {
			if gate == nil {
				return ""
			}
			return gate.Token(ctx)
		},
		Observer: metrics,
		Logger:   log,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating backend client: %w", err)
	}
	gate = auth.NewGate(store, client, log, auth.WithMetrics(metrics))

	ld := loader.New(client, log, metrics)
	listen := speech.SingleShot(cfg.Voice.ListenTimeout)
	if cfg.Voice.Locale != "" {
		listen.Locale = cfg.Voice.Locale
	}
	adapter := voice.NewAdapter(rec, command.NewMatcher(), listen, log, metrics)

	o, err := orchestrator.New(orchestrator.Deps{
		Gate:      gate,
		Loader:    ld,
		Navigator: navigator.New(log, metrics),
		Voice:     adapter,
		Store:     store,
		Metrics:   metrics,
		Logger:    log,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &application{
		cfg:          cfg,
		log:          log,
		metrics:      metrics,
		store:        store,
		client:       client,
		loader:       ld,
		voice:        adapter,
		orchestrator: o,
	}, nil
}

func (a *application) close() {
	a.orchestrator.StopVoice()
	a.orchestrator.WaitVoice()
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing session store", zap.Error(err))
	}
	_ = logger.Sync(a.log)
}
