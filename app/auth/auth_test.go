package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := New(Options{
		Username:     "admin",
		PasswordHash: string(hash),
		Secret:       "test-session-secret",
	}, discard)
	require.NoError(t, err)
	return a
}

func login(t *testing.T, a *Authenticator, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.HandleLogin(rec, httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(body)))
	return rec
}

func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestHandleLogin(t *testing.T) {
	a := newTestAuthenticator(t)

	testCases := []struct {
		name               string
		body               string
		expectedStatusCode int
		expectCookie       bool
	}{
		{
			name:               "Valid credentials",
			body:               `{"username":"admin","password":"s3cret"}`,
			expectedStatusCode: http.StatusOK,
			expectCookie:       true,
		},
		{
			name:               "Wrong password",
			body:               `{"username":"admin","password":"nope"}`,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Wrong username",
			body:               `{"username":"root","password":"s3cret"}`,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Malformed body",
			body:               `{"username":`,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := login(t, a, tc.body)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			cookies := rec.Result().Cookies()
			if !tc.expectCookie {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, SessionName, c.Name)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, SessionMaxAge, c.MaxAge)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestAuthenticator(t)
	protected := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Anonymous request is rejected.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest("POST", "/api/migrate-categories", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	loginRec := login(t, a, `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, withCookies(httptest.NewRequest("POST", "/api/migrate-categories", nil), loginRec))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	a.HandleSession(rec, withCookies(httptest.NewRequest("GET", "/api/admin/session", nil), loginRec))
	var status SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, "admin", status.Username)

	rec = httptest.NewRecorder()
	a.HandleLogout(rec, withCookies(httptest.NewRequest("POST", "/api/admin/logout", nil), loginRec))
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionTamperedCookie(t *testing.T) {
	a := newTestAuthenticator(t)

	req := httptest.NewRequest("GET", "/api/admin/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "forged"})
	rec := httptest.NewRecorder()
	a.HandleSession(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	assert.False(t, a.IsAdmin(req))
}

func TestNew(t *testing.T) {
	t.Run("hashes plain password", func(t *testing.T) {
		a, err := New(Options{Username: "admin", Password: "plain", Secret: "x"}, discard)
		require.NoError(t, err)
		assert.NoError(t, a.Verify("admin", "plain"))
		assert.ErrorIs(t, a.Verify("admin", "other"), ErrInvalidCredentials)
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		_, err := New(Options{Username: "admin", PasswordHash: "not-bcrypt", Secret: "x"}, discard)
		assert.Error(t, err)
	})

	t.Run("no password disables login", func(t *testing.T) {
		a, err := New(Options{Username: "admin", Secret: "x"}, discard)
		require.NoError(t, err)
		assert.ErrorIs(t, a.Verify("admin", ""), ErrInvalidCredentials)
	})

	t.Run("secure cookies", func(t *testing.T) {
		a, err := New(Options{Username: "admin", Password: "plain", Secret: "x", Secure: true}, discard)
		require.NoError(t, err)
		assert.True(t, a.store.Options.Secure)
	})
}
