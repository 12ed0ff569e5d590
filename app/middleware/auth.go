package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const callerIDKey contextKey = "callerId"

// TokenVerifier validates a bearer token and yields the caller id.
type TokenVerifier interface {
	VerifyToken(token string) (int, error)
}

// CallerID extracts the authenticated caller id from the request context.
func CallerID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(callerIDKey).(int)
	return id, ok
}

// WithCallerID injects a caller id into the context. Adapter tests and the
// GraphQL handler use it directly.
func WithCallerID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

// Auth requires a valid Bearer token and injects the caller id into the
// request context. Missing or invalid tokens end the request with 401.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, "not authenticated")
				return
			}
			callerID, err := verifier.VerifyToken(token)
			if err != nil {
				writeAuthError(w, "not authenticated")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), callerID)))
		})
	}
}

// AuthOptional injects the caller id when a valid Bearer token is present
// and passes the request through otherwise. The GraphQL surface mounts
// behind it so resolvers can report missing auth with their own codes.
func AuthOptional(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if callerID, err := verifier.VerifyToken(token); err == nil {
					r = r.WithContext(WithCallerID(r.Context(), callerID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
