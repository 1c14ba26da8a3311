package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/antonminaichev/laundry-orders/internal/user"
	"github.com/antonminaichev/laundry-orders/internal/util/render"
	"github.com/golang-jwt/jwt/v4"
)

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func GzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") == "gzip" {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				render.Error(rw, http.StatusBadRequest, "invalid_body", "failed to create gzip reader")
				return
			}
			defer gzr.Close()
			r.Body = io.NopCloser(gzr)
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			rw.Header().Del("Content-Length")
			gzw := gzip.NewWriter(rw)
			defer gzw.Close()

			gzrw := gzipResponseWriter{Writer: gzw, ResponseWriter: rw}
			next.ServeHTTP(gzrw, r)
		} else {
			next.ServeHTTP(rw, r)
		}
	})
}

type ctxKeyUserID struct{}

// authenticate resolves the bearer token to a user id. ok is false for a missing or bad token.
func authenticate(r *http.Request, secret []byte, repo user.UserRepository) (int64, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return 0, false
	}
	tokenStr := strings.TrimPrefix(auth, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, false
	}

	u, err := repo.FindByLogin(r.Context(), claims.Subject)
	if err != nil {
		return 0, false
	}
	return u.ID, true
}

// JWTMiddleware rejects requests without a valid admin token.
func JWTMiddleware(secret []byte, repo user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(r, secret, repo)
			if !ok {
				render.Error(w, http.StatusUnauthorized, "unauthorized", "admin token required")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), id)))
		})
	}
}

// OptionalJWT marks the request as admin when a valid token is present and passes it through otherwise.
func OptionalJWT(secret []byte, repo user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := authenticate(r, secret, repo); ok {
				r = r.WithContext(ContextWithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns 0 for anonymous requests.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKeyUserID{}).(int64)
	return id
}

func IsAdmin(ctx context.Context) bool {
	return UserIDFromContext(ctx) != 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, userID)
}
