package httpapi

import (
	"net/http"
)

// authMiddleware validates the authorization token on every request except
// the health check. When no token is configured, authentication is
// disabled.
// If the token is missing or invalid, it replies 401 without invoking the
// handler.
func authMiddleware(validToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validToken == "" || r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization header"})
				return
			}

			if auth != validToken && auth != "Bearer "+validToken {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
