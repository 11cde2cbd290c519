package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shaggydog/internal/auth"
	"shaggydog/internal/logging"
	"shaggydog/internal/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	creds, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(creds.Username) < 3 || len(creds.Username) > 64 {
		s.writeError(w, http.StatusBadRequest, "Username must be between 3 and 64 characters")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), creds.Username, hash)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logger.Info("user registered", logging.String("username", user.Username))
	s.writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Username: user.Username},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	creds, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := s.store.UserByUsername(r.Context(), creds.Username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.writeServiceError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		s.writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Username: user.Username},
	})
}

func (s *Server) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return creds, false
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Username and password are required")
		return creds, false
	}
	return creds, true
}
