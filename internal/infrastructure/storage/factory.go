package storage

import (
	"fmt"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates session stores based on configuration
type StoreFactory struct {
	cfg                   config.StoreConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the memory store
// when the configured driver cannot start
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory; fallback defaults to cfg.Fallback
func NewStoreFactory(cfg config.StoreConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Fallback,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *StoreFactory) create() (session.Store, error) {
	switch f.cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLiteStore(f.cfg.SQLitePath)
	case "redis":
		return NewRedisStore(RedisConfig{
			Addr:      f.cfg.RedisAddr(),
			Password:  f.cfg.RedisPassword,
			DB:        f.cfg.RedisDB,
			KeyPrefix: f.cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown session store driver %q", f.cfg.Driver)
	}
}

// CreateStore builds the configured driver, falling back to memory when
// allowed. The returned store is not yet initialized.
func (f *StoreFactory) CreateStore() (session.Store, error) {
	store, err := f.create()
	if err == nil {
		f.logger.Info("using session store", zap.String("driver", f.cfg.Driver))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("session store %q unavailable: %w", f.cfg.Driver, err)
	}

	f.logger.Warn("session store unavailable, falling back to in-memory store. "+
		"Credentials will not survive a restart.",
		zap.String("driver", f.cfg.Driver),
		zap.Error(err),
	)
	return NewMemoryStore(), nil
}
