package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Middleware guards the MCP endpoint with a static bearer token.
// An empty token disables the guard. /health is always reachable.
func Middleware(token, serverURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+serverURL+`"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				http.Error(w, "Invalid Authorization format", http.StatusUnauthorized)
				return
			}

			presented := strings.TrimPrefix(authHeader, bearerPrefix)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+serverURL+`" error="invalid_token"`)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
