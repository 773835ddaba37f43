// Package service implements the URL directory operations: creation,
// ownership-scoped reads and mutations, and public short-link
// resolution.
package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/patric-chuzhbe/tinyapp/internal/keygen"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

type urlsKeeper interface {
	SaveURL(ctx context.Context, url *models.URL) error
	FindURLByCode(ctx context.Context, shortCode string) (*models.URL, bool, error)
	FindURLsByOwner(ctx context.Context, ownerID string) (models.URLs, error)
	UpdateLongURL(ctx context.Context, shortCode, longURL string) error
	DeleteURL(ctx context.Context, shortCode string) error
	IsKeyTaken(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

var urlPattern = regexp.MustCompile(`\bhttps?://\S+`)

// Service exposes the URL directory to the HTTP layer.
type Service struct {
	db           urlsKeeper
	keys         *keygen.Generator
	shortURLBase string
}

// New creates a Service on top of the given storage. shortURLBase is
// the public prefix of generated short links.
func New(db urlsKeeper, shortURLBase string) *Service {
	return &Service{
		db:           db,
		keys:         keygen.New(db.IsKeyTaken),
		shortURLBase: shortURLBase,
	}
}

// ShortenURL creates a record owned by userID and returns it. The
// submitted value becomes the redirect target exactly as typed (after
// whitespace trimming); input that contains no http(s) URL yields
// models.ErrInvalidURL.
func (s *Service) ShortenURL(ctx context.Context, userID, rawInput string) (*models.URL, error) {
	longURL, err := extractFirstURL(rawInput)
	if err != nil {
		return nil, err
	}

	shortCode, err := s.keys.NewKey(ctx)
	if err != nil {
		return nil, err
	}

	record := &models.URL{
		ShortCode: shortCode,
		LongURL:   longURL,
		OwnerID:   userID,
	}
	if err := s.db.SaveURL(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// UserURLs is the ownership filter: the sub-mapping of records owned
// by userID. An empty userID (anonymous caller) yields an empty map.
func (s *Service) UserURLs(ctx context.Context, userID string) (models.URLs, error) {
	if userID == "" {
		return models.URLs{}, nil
	}

	return s.db.FindURLsByOwner(ctx, userID)
}

// URLForOwner returns the record for shortCode if and only if userID
// owns it. An absent record and a record owned by someone else both
// yield models.ErrNotFound, so existence of other users' records
// never leaks.
func (s *Service) URLForOwner(ctx context.Context, userID, shortCode string) (*models.URL, error) {
	if userID == "" {
		return nil, models.ErrNotFound
	}

	record, found, err := s.db.FindURLByCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if !found || record.OwnerID != userID {
		return nil, models.ErrNotFound
	}

	return record, nil
}

// UpdateLongURL replaces the redirect target of a record owned by
// userID.
func (s *Service) UpdateLongURL(ctx context.Context, userID, shortCode, rawInput string) error {
	if _, err := s.URLForOwner(ctx, userID, shortCode); err != nil {
		return err
	}

	longURL, err := extractFirstURL(rawInput)
	if err != nil {
		return err
	}

	return s.db.UpdateLongURL(ctx, shortCode, longURL)
}

// DeleteURL removes a record owned by userID. Deleting an absent
// shortCode is a no-op; a record owned by someone else yields
// models.ErrNotFound.
func (s *Service) DeleteURL(ctx context.Context, userID, shortCode string) error {
	record, found, err := s.db.FindURLByCode(ctx, shortCode)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if userID == "" || record.OwnerID != userID {
		return models.ErrNotFound
	}

	return s.db.DeleteURL(ctx, shortCode)
}

// ResolveShortURL is the public lookup behind GET /u/{code}. No
// ownership check: short links are meant to be shared. An absent
// shortCode yields models.ErrNotFound.
func (s *Service) ResolveShortURL(ctx context.Context, shortCode string) (string, error) {
	record, found, err := s.db.FindURLByCode(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrNotFound
	}

	return record.LongURL, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ShortURL renders the public address of a shortCode.
func (s *Service) ShortURL(shortCode string) string {
	return s.shortURLBase + "/u/" + shortCode
}

// extractFirstURL normalizes the submitted form field into a redirect
// target. A trimmed field that is itself a valid http(s) URL is stored
// verbatim, so trailing slashes, parentheses and query strings survive
// the round trip; otherwise the first http(s) URL found in the text is
// used.
func extractFirstURL(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if isValidURL(trimmed) {
		return trimmed, nil
	}

	match := urlPattern.FindString(trimmed)
	if match == "" || !isValidURL(match) {
		return "", models.ErrInvalidURL
	}

	return match, nil
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil &&
		(u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
}
