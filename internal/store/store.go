package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marquee/internal/config"
	"marquee/internal/metadata"
	"marquee/internal/services"
)

// Store is the read/write contract the enrichment engine depends on.
type Store interface {
	// Load returns the record for id. The boolean is false when none is stored.
	Load(ctx context.Context, id string) (metadata.Record, bool, error)
	// Save writes rec, replacing any previous version.
	Save(ctx context.Context, rec metadata.Record) error
	// List returns up to limit records, most recently updated first. A
	// non-positive limit returns everything.
	List(ctx context.Context, limit int) ([]metadata.Record, error)
	Close() error
}

// Open builds the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	case config.StoreRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.KeyPrefix,
		})
	case config.StoreMemory:
		return NewMemory(), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "unsupported backend "+cfg.Store.Backend, nil)
	}
}

func recordKey(rec metadata.Record) (string, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return "", services.Wrap(services.ErrInvalidInput, "store", "save", "record id required", nil)
	}
	return id, nil
}

func encodeRecord(rec metadata.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	return data, nil
}

func decodeRecord(id string, data []byte) (metadata.Record, error) {
	var rec metadata.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return metadata.Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}
