package quotestore

import (
	"context"
	"fmt"

	"kilowatt-backend/internal/config"
)

// Open picks the backend named by cfg.QuoteStore.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.QuoteStore {
	case config.QuoteStoreMemory, "":
		return NewMemoryBackend(), nil
	case config.QuoteStoreRedis:
		return NewRedisBackend(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.QuoteStoreTTL,
		}), nil
	case config.QuoteStoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.QuoteStoreNone:
		return DisabledBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown quote store %q", cfg.QuoteStore)
	}
}
