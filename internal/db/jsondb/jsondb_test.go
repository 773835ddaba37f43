package jsondb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

func newTestDB(t *testing.T) (*JSONDB, string) {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "db_test.json")
	db, err := New(fileName)
	require.NoError(t, err)

	return db, fileName
}

func TestUserRoundTrip(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	usr := &models.User{ID: "LmjMRm", Email: "user@example.com", PasswordHash: "$2a$10$hash"}
	require.NoError(t, db.CreateUser(ctx, usr))

	byID, found, err := db.GetUserByID(ctx, "LmjMRm")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, usr, byID)

	byEmail, found, err := db.GetUserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, usr, byEmail)

	_, found, err = db.GetUserByID(ctx, "nosuch")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = db.GetUserByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestURLLifecycle(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	url := &models.URL{ShortCode: "b2xVn2", LongURL: "http://www.lighthouselabs.ca", OwnerID: "LmjMRm"}
	require.NoError(t, db.SaveURL(ctx, url))

	stored, found, err := db.FindURLByCode(ctx, "b2xVn2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, url, stored)

	require.NoError(t, db.UpdateLongURL(ctx, "b2xVn2", "http://example.com"))
	stored, _, err = db.FindURLByCode(ctx, "b2xVn2")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", stored.LongURL)

	require.ErrorIs(t, db.UpdateLongURL(ctx, "nosuch", "http://example.com"), models.ErrNotFound)

	require.NoError(t, db.DeleteURL(ctx, "b2xVn2"))
	_, found, err = db.FindURLByCode(ctx, "b2xVn2")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again stays a no-op.
	require.NoError(t, db.DeleteURL(ctx, "b2xVn2"))
}

func TestFindURLsByOwner(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveURL(ctx, &models.URL{ShortCode: "b2xVn2", LongURL: "http://a.example.com", OwnerID: "LmjMRm"}))
	require.NoError(t, db.SaveURL(ctx, &models.URL{ShortCode: "fsm5xK", LongURL: "http://b.example.com", OwnerID: "P22Wyk"}))
	require.NoError(t, db.SaveURL(ctx, &models.URL{ShortCode: "9sm5xK", LongURL: "http://c.example.com", OwnerID: "LmjMRm"}))

	urls, err := db.FindURLsByOwner(ctx, "LmjMRm")
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, "b2xVn2")
	assert.Contains(t, urls, "9sm5xK")

	urls, err = db.FindURLsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestIsKeyTakenCoversBothDirectories(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, &models.User{ID: "LmjMRm", Email: "user@example.com"}))
	require.NoError(t, db.SaveURL(ctx, &models.URL{ShortCode: "b2xVn2", LongURL: "http://example.com", OwnerID: "LmjMRm"}))

	taken, err := db.IsKeyTaken(ctx, "LmjMRm")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = db.IsKeyTaken(ctx, "b2xVn2")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = db.IsKeyTaken(ctx, "fresh1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	db, fileName := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, &models.User{ID: "LmjMRm", Email: "user@example.com", PasswordHash: "$2a$10$hash"}))
	require.NoError(t, db.SaveURL(ctx, &models.URL{ShortCode: "b2xVn2", LongURL: "http://example.com", OwnerID: "LmjMRm"}))
	require.NoError(t, db.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	_, found, err := reopened.GetUserByID(ctx, "LmjMRm")
	require.NoError(t, err)
	assert.True(t, found)

	url, found, err := reopened.FindURLByCode(ctx, "b2xVn2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "http://example.com", url.LongURL)
}
