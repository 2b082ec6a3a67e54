package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

func hashToken(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}

// authMiddleware requires "Authorization: Bearer <api_token>" on /api/ routes
// when a token is configured. /health stays open for probes.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	want := hashToken(s.config.APIToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}

		got := hashToken(strings.TrimPrefix(authHeader, "Bearer "))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
