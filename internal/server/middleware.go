package server

import (
	"net/http"
	"strings"

	"shaggydog/internal/services"
)

// requireUser authenticates the bearer token and stashes the user ID in the
// request context.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		userID, err := s.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r.WithContext(services.WithUserID(r.Context(), userID)))
	}
}
