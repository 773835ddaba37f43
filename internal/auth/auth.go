// Package auth implements the authentication service (registration,
// login, logout) and the session-resolving middleware that maps an
// inbound request to its user.
package auth

import (
	"context"
	"fmt"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/tinyapp/internal/keygen"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, bool, error)
	IsKeyTaken(ctx context.Context, key string) (bool, error)
}

type sessionKeeper interface {
	IssueCookie(response http.ResponseWriter, userID string) error
	ClearCookie(response http.ResponseWriter, request *http.Request)
	ResolveRequest(request *http.Request) (string, bool)
}

// ContextKey is a custom type for storing values in context to avoid
// collisions.
type ContextKey string

// UserIDKey is the context key under which the resolved user id is
// stored. An empty value means an anonymous visitor.
const UserIDKey ContextKey = "userID"

// Auth validates credentials and manages the session bound to them.
type Auth struct {
	db       userKeeper
	sessions sessionKeeper
	keys     *keygen.Generator
	validate *validator.Validate
}

// New creates an Auth backed by the given storage and session store.
func New(db userKeeper, sessions sessionKeeper) *Auth {
	return &Auth{
		db:       db,
		sessions: sessions,
		keys:     keygen.New(db.IsKeyTaken),
		validate: validator.New(),
	}
}

// Register creates a new account and signs it in. Empty or malformed
// fields yield models.ErrValidation; a duplicate email yields
// models.ErrEmailTaken (which also matches ErrValidation).
func (a *Auth) Register(
	ctx context.Context,
	response http.ResponseWriter,
	email, password string,
) (*models.User, error) {
	form := models.RegisterForm{Email: email, Password: password}
	if err := a.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err)
	}

	_, exists, err := a.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID, err := a.keys.NewKey(ctx)
	if err != nil {
		return nil, err
	}

	usr := &models.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(passwordHash),
	}
	if err := a.db.CreateUser(ctx, usr); err != nil {
		return nil, err
	}

	if err := a.sessions.IssueCookie(response, usr.ID); err != nil {
		return nil, err
	}

	return usr, nil
}

// Login verifies the credentials and establishes a session. Unknown
// email and wrong password both yield models.ErrInvalidCredentials.
func (a *Auth) Login(
	ctx context.Context,
	response http.ResponseWriter,
	email, password string,
) (*models.User, error) {
	usr, found, err := a.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := a.sessions.IssueCookie(response, usr.ID); err != nil {
		return nil, err
	}

	return usr, nil
}

// Logout ends the caller's session. Always succeeds, with or without
// a session.
func (a *Auth) Logout(response http.ResponseWriter, request *http.Request) {
	a.sessions.ClearCookie(response, request)
}

// UserByID fetches a user record for view rendering.
func (a *Auth) UserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	if userID == "" {
		return nil, false, nil
	}

	return a.db.GetUserByID(ctx, userID)
}

// ResolveUser is the session-resolver middleware. It deposits the
// session's user id in the request context, or the empty string for
// anonymous visitors. It never fails the request: an absent or
// garbled session is the normal anonymous state.
func (a *Auth) ResolveUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID := ""
		if sessionUserID, ok := a.sessions.ResolveRequest(request); ok {
			// The session may reference a user that is gone from the
			// directory (e.g. a memory backend restart); treat that
			// as anonymous too.
			if _, found, err := a.db.GetUserByID(request.Context(), sessionUserID); err == nil && found {
				userID = sessionUserID
			}
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the resolved user id. The second result
// is false for anonymous visitors.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}
