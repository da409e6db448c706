package backend

import (
	"context"
	"errors"
	"fmt"

	"billhub/internal/amqp"
	"billhub/internal/log"
	"billhub/internal/session"
	"billhub/internal/storage"
)

// sessionEntries bounds the in-process session store.
const sessionEntries = 100_000

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend. A broker that cannot be
// reached is logged and skipped; the web app works without it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	cleanups := []func() error{store.Close}

	if config.SeedFile != "" {
		seed, err := LoadSeed(config.SeedFile)
		if err == nil {
			var n SeedResult
			n, err = seed.Apply(ctx, store)
			f.logger.Info("Seeded document store", "file", config.SeedFile, "users", n.Users, "bills", n.Bills)
		}
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("seed %s: %w", config.SeedFile, err)
		}
	}

	sessions, closeSessions, err := f.createSessions(ctx, config)
	if err != nil {
		store.Close()
		return nil, err
	}
	if closeSessions != nil {
		cleanups = append(cleanups, closeSessions)
	}

	result := &BackendResult{Store: store, Sessions: sessions}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, amqp.Config{
			URL:          config.AMQPURL,
			Exchange:     config.AMQPExchange,
			Queue:        config.AMQPQueue,
			DialAttempts: 5,
		}, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
			result.Publisher = client
			cleanups = append(cleanups, client.Close)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	f.logger.Info("Initialized backend",
		"store", config.Type,
		"sessions", config.Sessions,
		"amqp_enabled", result.Publisher != nil)

	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory store")
		return storage.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSessions(ctx context.Context, config Config) (session.KV, func() error, error) {
	if config.Sessions == RedisSessions {
		kv, err := session.NewRedisKV(ctx, session.RedisConfig{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		f.logger.Info("Initialized redis sessions", "addr", config.RedisAddr, "db", config.RedisDB)
		return kv, kv.Close, nil
	}
	return session.NewMemoryKV(sessionEntries), nil, nil
}
