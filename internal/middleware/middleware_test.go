package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/user"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[string]*user.User
}

func (r *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	r.users[u.Login] = u
	return nil
}

func (r *stubUserRepo) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	u, ok := r.users[login]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

var secret = []byte("secret")

func signed(t *testing.T, login string, key []byte, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   login,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func adminEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsAdmin(r.Context()) {
			w.Write([]byte("admin"))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func TestJWTMiddleware(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*user.User{"admin": {ID: 7, Login: "admin"}}}
	h := JWTMiddleware(secret, repo)(adminEcho())

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signed(t, "admin", secret, time.Now().Add(time.Hour)), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"wrong key", "Bearer " + signed(t, "admin", []byte("other"), time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, "admin", secret, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signed(t, "ghost", secret, time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOptionalJWT(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*user.User{"admin": {ID: 7, Login: "admin"}}}
	h := OptionalJWT(secret, repo)(adminEcho())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "admin", secret, time.Now().Add(time.Hour)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestGzipHandler(t *testing.T) {
	h := GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`{"customer_name":"Siti"}`))
	zw.Close()

	req := httptest.NewRequest(http.MethodPost, "/orders", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"customer_name":"Siti"}`, string(out))

	req = httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
