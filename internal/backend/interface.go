package backend

import (
	"context"

	"billhub/internal/services"
	"billhub/internal/session"
)

// Store is the document store behind the services.
type Store interface {
	services.UserStore
	services.BillStore
	Ping(ctx context.Context) error
	Close() error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything a binary needs to serve requests.
// Publisher is nil when no broker is configured.
type BackendResult struct {
	Store     Store
	Sessions  session.KV
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	SeedFile     string

	Sessions      SessionType
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of document store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SessionType selects the session key-value backend.
type SessionType string

const (
	MemorySessions SessionType = "memory"
	RedisSessions  SessionType = "redis"
)

func (st SessionType) IsValid() bool {
	return st == MemorySessions || st == RedisSessions
}
