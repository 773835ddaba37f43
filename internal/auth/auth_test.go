package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/tinyapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
	"github.com/patric-chuzhbe/tinyapp/internal/session"
)

func newTestAuth(t *testing.T) (*Auth, *memorystorage.MemoryStorage, *session.Store) {
	t.Helper()
	storage, err := memorystorage.New()
	require.NoError(t, err)
	sessions := session.NewStore(
		"tinyapp_session_test",
		[]byte("0123456789abcdef0123456789abcdef"),
		time.Hour,
	)

	return New(storage, sessions), storage, sessions
}

func TestRegisterValidation(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "pw1"},
		{name: "empty password", email: "a@x.com", password: ""},
		{name: "malformed email", email: "not-an-email", password: "pw1"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			authSvc, _, _ := newTestAuth(t)
			recorder := httptest.NewRecorder()

			_, err := authSvc.Register(context.Background(), recorder, testCase.email, testCase.password)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Empty(t, recorder.Result().Cookies())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	authSvc, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := authSvc.Register(ctx, httptest.NewRecorder(), "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = authSvc.Register(ctx, httptest.NewRecorder(), "a@x.com", "pw2")
	require.ErrorIs(t, err, models.ErrEmailTaken)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	authSvc, storage, _ := newTestAuth(t)
	ctx := context.Background()

	usr, err := authSvc.Register(ctx, httptest.NewRecorder(), "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Len(t, usr.ID, 6)

	stored, found, err := storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "pw1")
}

func TestLogin(t *testing.T) {
	authSvc, _, _ := newTestAuth(t)
	ctx := context.Background()

	registered, err := authSvc.Register(ctx, httptest.NewRecorder(), "a@x.com", "pw1")
	require.NoError(t, err)

	t.Run("exact pair succeeds", func(t *testing.T) {
		usr, err := authSvc.Login(ctx, httptest.NewRecorder(), "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, usr.ID)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, err := authSvc.Login(ctx, httptest.NewRecorder(), "a@x.com", "pw2")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("unknown email fails", func(t *testing.T) {
		_, err := authSvc.Login(ctx, httptest.NewRecorder(), "b@x.com", "pw1")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func resolvedUserID(t *testing.T, authSvc *Auth, request *http.Request) (string, bool) {
	t.Helper()
	var userID string
	var ok bool
	handler := authSvc.ResolveUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok = UserIDFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), request)

	return userID, ok
}

func TestResolveUserMiddleware(t *testing.T) {
	authSvc, _, _ := newTestAuth(t)
	ctx := context.Background()

	recorder := httptest.NewRecorder()
	registered, err := authSvc.Register(ctx, recorder, "a@x.com", "pw1")
	require.NoError(t, err)

	t.Run("session cookie resolves to the user", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/urls", nil)
		for _, cookie := range recorder.Result().Cookies() {
			request.AddCookie(cookie)
		}

		userID, ok := resolvedUserID(t, authSvc, request)
		require.True(t, ok)
		assert.Equal(t, registered.ID, userID)
	})

	t.Run("no cookie resolves to anonymous", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/urls", nil)
		_, ok := resolvedUserID(t, authSvc, request)
		assert.False(t, ok)
	})

	t.Run("logout resolves to anonymous", func(t *testing.T) {
		loginRecorder := httptest.NewRecorder()
		_, err := authSvc.Login(ctx, loginRecorder, "a@x.com", "pw1")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/logout", nil)
		for _, cookie := range loginRecorder.Result().Cookies() {
			request.AddCookie(cookie)
		}
		authSvc.Logout(httptest.NewRecorder(), request)

		_, ok := resolvedUserID(t, authSvc, request)
		assert.False(t, ok)
	})
}
