// Package mockstorage provides a testify-based mock implementation of
// the storage interfaces consumed by the auth and service packages.
// Use it in unit tests to simulate storage behavior and failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// StorageMock is a testify mock covering every storage method the
// application consumes.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// GetUserByID mocks fetching a user by id.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByEmail mocks the email lookup.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Bool(1), args.Error(2)
}

// SaveURL mocks storing a URL record.
func (m *StorageMock) SaveURL(ctx context.Context, url *models.URL) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// FindURLByCode mocks the shortCode lookup.
func (m *StorageMock) FindURLByCode(ctx context.Context, shortCode string) (*models.URL, bool, error) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Bool(1), args.Error(2)
}

// FindURLsByOwner mocks the ownership scan.
func (m *StorageMock) FindURLsByOwner(ctx context.Context, ownerID string) (models.URLs, error) {
	args := m.Called(ctx, ownerID)
	urls, _ := args.Get(0).(models.URLs)
	return urls, args.Error(1)
}

// UpdateLongURL mocks replacing a redirect target.
func (m *StorageMock) UpdateLongURL(ctx context.Context, shortCode, longURL string) error {
	args := m.Called(ctx, shortCode, longURL)
	return args.Error(0)
}

// DeleteURL mocks removing a record.
func (m *StorageMock) DeleteURL(ctx context.Context, shortCode string) error {
	args := m.Called(ctx, shortCode)
	return args.Error(0)
}

// IsKeyTaken mocks the key uniqueness check.
func (m *StorageMock) IsKeyTaken(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the backend.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
