// Package memorystorage is the default storage backend: the jsondb
// cache without a backing file. All data is lost on restart.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/tinyapp/internal/db/jsondb"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// MemoryStorage reuses the jsondb table implementation in memory.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users: map[string]models.User{},
				Urls:  map[string]models.URL{},
			},
		},
	}, nil
}

// Close is a no-op: there is nothing to persist.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping reports storage health. Memory storage is always healthy.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
