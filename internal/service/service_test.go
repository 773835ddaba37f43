package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/tinyapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/tinyapp/internal/mockstorage"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

const shortURLBase = "http://localhost:8080"

func newTestService(t *testing.T) *Service {
	t.Helper()
	storage, err := memorystorage.New()
	require.NoError(t, err)

	return New(storage, shortURLBase)
}

func TestShortenURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.ShortenURL(ctx, "LmjMRm", "http://example.com")
	require.NoError(t, err)
	assert.Len(t, record.ShortCode, 6)
	assert.Equal(t, "http://example.com", record.LongURL)
	assert.Equal(t, "LmjMRm", record.OwnerID)

	longURL, err := svc.ResolveShortURL(ctx, record.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", longURL)
}

func TestShortenURLKeepsSubmittedValueVerbatim(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	testCases := []string{
		"http://example.com/foo/",
		"http://example.com/page(1)",
		"https://example.com/search?q=go&page=2",
		"http://example.com/path#fragment",
	}
	for _, longURL := range testCases {
		record, err := svc.ShortenURL(ctx, "LmjMRm", longURL)
		require.NoError(t, err, "input: %q", longURL)
		assert.Equal(t, longURL, record.LongURL)

		resolved, err := svc.ResolveShortURL(ctx, record.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, longURL, resolved, "input: %q", longURL)
	}
}

func TestShortenURLTrimsSurroundingWhitespace(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.ShortenURL(context.Background(), "LmjMRm", "  http://example.com/foo/ \n")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/foo/", record.LongURL)
}

func TestShortenURLExtractsFirstURL(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.ShortenURL(context.Background(), "LmjMRm", "check this out: https://example.com/page and more")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", record.LongURL)
}

func TestShortenURLRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)

	testCases := []string{
		"",
		"not a url at all",
		"ftp://example.com/file",
	}
	for _, rawInput := range testCases {
		_, err := svc.ShortenURL(context.Background(), "LmjMRm", rawInput)
		assert.ErrorIs(t, err, models.ErrInvalidURL, "input: %q", rawInput)
	}
}

func TestUserURLsOwnershipFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.ShortenURL(ctx, "LmjMRm", "http://a.example.com")
	require.NoError(t, err)
	_, err = svc.ShortenURL(ctx, "P22Wyk", "http://b.example.com")
	require.NoError(t, err)
	second, err := svc.ShortenURL(ctx, "LmjMRm", "http://c.example.com")
	require.NoError(t, err)

	urls, err := svc.UserURLs(ctx, "LmjMRm")
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls, first.ShortCode)
	assert.Contains(t, urls, second.ShortCode)

	t.Run("anonymous caller sees nothing", func(t *testing.T) {
		urls, err := svc.UserURLs(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, urls)
	})
}

func TestURLForOwnerDeniesAsNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.ShortenURL(ctx, "LmjMRm", "http://example.com")
	require.NoError(t, err)

	owned, err := svc.URLForOwner(ctx, "LmjMRm", record.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, record.LongURL, owned.LongURL)

	// Another user and an anonymous caller get the same answer as
	// for an absent record.
	_, err = svc.URLForOwner(ctx, "P22Wyk", record.ShortCode)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.URLForOwner(ctx, "", record.ShortCode)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.URLForOwner(ctx, "LmjMRm", "nosuch1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateLongURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.ShortenURL(ctx, "LmjMRm", "http://example.com")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLongURL(ctx, "LmjMRm", record.ShortCode, "http://changed.example.com/path/?v=1"))
	longURL, err := svc.ResolveShortURL(ctx, record.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "http://changed.example.com/path/?v=1", longURL)

	assert.ErrorIs(
		t,
		svc.UpdateLongURL(ctx, "P22Wyk", record.ShortCode, "http://hijacked.example.com"),
		models.ErrNotFound,
	)
	assert.ErrorIs(
		t,
		svc.UpdateLongURL(ctx, "LmjMRm", record.ShortCode, "not a url"),
		models.ErrInvalidURL,
	)
}

func TestDeleteURL(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.ShortenURL(ctx, "LmjMRm", "http://example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteURL(ctx, "P22Wyk", record.ShortCode), models.ErrNotFound)

	require.NoError(t, svc.DeleteURL(ctx, "LmjMRm", record.ShortCode))
	_, err = svc.ResolveShortURL(ctx, record.ShortCode)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Repeated deletes are a safe no-op.
	require.NoError(t, svc.DeleteURL(ctx, "LmjMRm", record.ShortCode))
	require.NoError(t, svc.DeleteURL(ctx, "LmjMRm", record.ShortCode))
}

func TestShortURL(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, shortURLBase+"/u/b2xVn2", svc.ShortURL("b2xVn2"))
}

func TestShortenURLPropagatesStorageError(t *testing.T) {
	storageErr := errors.New("storage unavailable")
	storageMock := &mockstorage.StorageMock{}
	storageMock.On("IsKeyTaken", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	storageMock.On("SaveURL", mock.Anything, mock.AnythingOfType("*models.URL")).Return(storageErr)

	svc := New(storageMock, shortURLBase)

	_, err := svc.ShortenURL(context.Background(), "LmjMRm", "http://example.com")
	require.ErrorIs(t, err, storageErr)
	storageMock.AssertExpectations(t)
}
