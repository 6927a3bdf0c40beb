package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend selects the KV implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
)

type Options struct {
	Backend       Backend
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration
	MongoURI      string
	MongoDBName   string
}

// Open connects to the configured backend and prepares it for use.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil

	case BackendSQLite, BackendPostgres:
		var (
			s   *SQL
			err error
		)
		if opts.Backend == BackendSQLite {
			s, err = NewSQLite(opts.SQLitePath)
		} else {
			s, err = NewPostgres(opts.PostgresDSN)
		}
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return NewRedis(client, opts.RedisTTL), nil

	case BackendMongo:
		db, err := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDBName)
		if err != nil {
			return nil, err
		}
		return NewMongo(db), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
