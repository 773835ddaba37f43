// Package session implements the server-side session store and the
// signed cookie that references it. The cookie value is a JWT whose
// claims carry only an opaque session token; the user id never leaves
// the server.
package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims is the JWT payload stored in the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

type record struct {
	userID    string
	expiresAt time.Time
}

// Store keeps sessions in memory, keyed by opaque token.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]record

	cookieName string
	signingKey []byte
	ttl        time.Duration
}

// NewStore creates an empty session store. The signing key signs the
// cookie JWTs; ttl bounds both the server-side record and the token.
func NewStore(cookieName string, signingKey []byte, ttl time.Duration) *Store {
	return &Store{
		sessions:   map[string]record{},
		cookieName: cookieName,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// Create registers a new session for userID and returns its token.
func (s *Store) Create(userID string) string {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = record{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}

	return token
}

// Resolve returns the user id bound to token. The second result is
// false for unknown or expired tokens.
func (s *Store) Resolve(token string) (string, bool) {
	s.mu.RLock()
	rec, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Now().After(rec.expiresAt) {
		s.Delete(token)
		return "", false
	}

	return rec.userID, true
}

// Delete removes a session. Unknown tokens are a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// IssueCookie starts a session for userID and writes the signed
// cookie to the response.
func (s *Store) IssueCookie(response http.ResponseWriter, userID string) error {
	token := s.Create(userID)

	jwtString, err := s.buildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
		SessionID: token,
	})
	if err != nil {
		s.Delete(token)
		return err
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     s.cookieName,
			Value:    jwtString,
			Path:     "/",
			HttpOnly: true,
		},
	)

	return nil
}

// ClearCookie ends the session referenced by the request's cookie, if
// any, and expires the cookie. Always succeeds.
func (s *Store) ClearCookie(response http.ResponseWriter, request *http.Request) {
	if token, ok := s.tokenFromRequest(request); ok {
		s.Delete(token)
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		},
	)
}

// ResolveRequest maps a request to the user id of its session.
// The second result is false for anonymous visitors: no cookie, a
// garbled or forged cookie, or a token no longer in the store.
func (s *Store) ResolveRequest(request *http.Request) (string, bool) {
	token, ok := s.tokenFromRequest(request)
	if !ok {
		return "", false
	}

	return s.Resolve(token)
}

func (s *Store) tokenFromRequest(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(s.cookieName)
	if err != nil {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingKey, nil
		},
	)
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", false
	}

	return claims.SessionID, true
}

func (s *Store) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
