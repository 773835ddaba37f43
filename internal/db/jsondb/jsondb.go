// Package jsondb is a JSON-file-backed storage backend. The whole
// dataset lives in memory behind a single lock and is flushed to the
// file on Close. Suitable for development and small deployments; the
// same cache without a file backs the memory storage.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// CacheStruct is the serialized shape of the database file.
type CacheStruct struct {
	Users map[string]models.User
	Urls  map[string]models.URL
}

// JSONDB holds the in-memory tables and the backing file name.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// New loads the database from fileName, creating an empty file on
// first use.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]models.User{}
	}
	if db.Cache.Urls == nil {
		db.Cache.Urls = map[string]models.URL{}
	}

	return db, nil
}

// CreateUser stores a new user record.
func (db *JSONDB) CreateUser(ctx context.Context, usr *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.Cache.Users[usr.ID] = *usr

	return nil
}

// GetUserByID fetches a user by id. The second result reports
// presence.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	return &usr, true, nil
}

// GetUserByEmail fetches a user by email with a linear scan over the
// user table.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Email == email {
			return &usr, true, nil
		}
	}

	return nil, false, nil
}

// SaveURL stores a URL record under its shortCode.
func (db *JSONDB) SaveURL(ctx context.Context, url *models.URL) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.Cache.Urls[url.ShortCode] = *url

	return nil
}

// FindURLByCode fetches a URL record by shortCode.
func (db *JSONDB) FindURLByCode(ctx context.Context, shortCode string) (*models.URL, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	url, found := db.Cache.Urls[shortCode]
	if !found {
		return nil, false, nil
	}

	return &url, true, nil
}

// FindURLsByOwner returns the sub-mapping of records owned by ownerID.
func (db *JSONDB) FindURLsByOwner(ctx context.Context, ownerID string) (models.URLs, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := models.URLs{}
	for shortCode, url := range db.Cache.Urls {
		if url.OwnerID == ownerID {
			result[shortCode] = url
		}
	}

	return result, nil
}

// UpdateLongURL replaces the redirect target of an existing record.
func (db *JSONDB) UpdateLongURL(ctx context.Context, shortCode, longURL string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	url, found := db.Cache.Urls[shortCode]
	if !found {
		return models.ErrNotFound
	}
	url.LongURL = longURL
	db.Cache.Urls[shortCode] = url

	return nil
}

// DeleteURL removes a record. Deleting an absent shortCode is a
// no-op.
func (db *JSONDB) DeleteURL(ctx context.Context, shortCode string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.Cache.Urls, shortCode)

	return nil
}

// IsKeyTaken reports whether key is in use as either a user id or a
// shortCode. Keys from both directories share one generator.
func (db *JSONDB) IsKeyTaken(ctx context.Context, key string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if _, exists := db.Cache.Users[key]; exists {
		return true, nil
	}
	_, exists := db.Cache.Urls[key]

	return exists, nil
}

// Ping reports storage health. The file backend is always healthy.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close persists the cache to the backing file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"Urls": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %s", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}
