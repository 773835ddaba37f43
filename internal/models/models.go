// Package models defines the domain records shared by the storage,
// service, and HTTP layers, together with the sentinel errors that
// handlers map to response codes.
package models

import (
	"errors"
	"fmt"
)

// User represents a registered account.
// The ID doubles as the ownership key on URL records.
type User struct {
	// ID is a short random key produced by the key generator.
	ID string

	// Email identifies the account at login. Unique by convention,
	// checked at registration time.
	Email string

	// PasswordHash is a bcrypt hash. Plaintext is never stored.
	PasswordHash string
}

// URL is a single short-link record.
type URL struct {
	// ShortCode is the mapping key, also the public path segment.
	ShortCode string

	// LongURL is the redirect target. The only mutable field.
	LongURL string

	// OwnerID references the creating user's ID.
	OwnerID string
}

// URLs maps shortCode to record, the shape produced by ownership
// filtering and consumed by the listing view.
type URLs map[string]URL

// RegisterForm carries the registration request fields.
type RegisterForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// ErrValidation marks malformed or incomplete registration input.
var ErrValidation = errors.New("validation failed")

// ErrEmailTaken is returned on a duplicate registration attempt.
// It matches ErrValidation through errors.Is.
var ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrValidation)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNotFound covers both a genuinely absent record and a record the
// caller does not own. Handlers must not distinguish the two cases.
var ErrNotFound = errors.New("record not found")

// ErrInvalidURL is returned when the submitted long URL is not an
// absolute http or https URL.
var ErrInvalidURL = errors.New("there is no valid URL in the request")

// ErrKeySpaceExhausted is returned when the key generator fails to
// find a free key within its retry budget.
var ErrKeySpaceExhausted = errors.New("unable to generate a unique key")

// Storage backend selectors, chosen from configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
