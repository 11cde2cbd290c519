package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shaggydog/internal/imaging"
	"shaggydog/internal/logging"
	"shaggydog/internal/services"
	"shaggydog/internal/store"
)

type statusResponse struct {
	Running       bool   `json:"running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveJobs    int    `json:"active_jobs"`
	DatabasePath  string `json:"database_path"`
}

type uploadResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type transformationPayload struct {
	ID        int64     `json:"id"`
	Breed     string    `json:"dog_breed"`
	CreatedAt time.Time `json:"created_at"`
	Images    []string  `json:"images"`
}

type transformationListResponse struct {
	Transformations []transformationPayload `json:"transformations"`
	Count           int                     `json:"count"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:       true,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		ActiveJobs:    s.runner.ActiveCount(),
		DatabasePath:  s.store.Path(),
	})
}

// handleTransformations accepts uploads (POST) and lists the gallery (GET).
func (s *Server) handleTransformations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := services.UserIDFromContext(r.Context())

	// Bound the multipart read before parsing so an oversized body fails
	// early instead of buffering.
	maxBytes := s.cfg.Uploads.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))
			return
		}
		s.writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))
		return
	}

	limits := s.limits()
	if err := imaging.Validate(data, limits); err != nil {
		s.writeServiceError(w, err)
		return
	}
	normalized, err := imaging.Normalize(data, limits)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	token := s.uploads.Put(userID, normalized)
	jobID, err := s.runner.Begin(userID, token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.logger.Info("transformation accepted",
		logging.Int64(logging.FieldUserID, userID),
		logging.String(logging.FieldJobID, jobID),
	)
	s.writeJSON(w, http.StatusAccepted, uploadResponse{
		JobID:   jobID,
		Message: "Transformation started",
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := services.UserIDFromContext(r.Context())
	summaries, err := s.store.ListTransformations(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	payloads := make([]transformationPayload, 0, len(summaries))
	for _, summary := range summaries {
		payloads = append(payloads, transformationPayload{
			ID:        summary.ID,
			Breed:     summary.Breed,
			CreatedAt: summary.CreatedAt,
			Images:    imagePaths(summary.ID),
		})
	}
	s.writeJSON(w, http.StatusOK, transformationListResponse{
		Transformations: payloads,
		Count:           len(payloads),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, _ := services.UserIDFromContext(r.Context())
	s.writeJSON(w, http.StatusOK, s.tracker.Snapshot(userID))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, _ := services.UserIDFromContext(r.Context())
	if !s.runner.Cancel(userID) {
		s.writeError(w, http.StatusNotFound, "no transformation in progress")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Transformation canceled"})
}

// handleTransformationItem serves /api/transformations/{id} and
// /api/transformations/{id}/images/{kind}.
func (s *Server) handleTransformationItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := services.UserIDFromContext(r.Context())
	rest := strings.TrimPrefix(r.URL.Path, "/api/transformations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid transformation id")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.handleGetTransformation(w, r, userID, id)
		case http.MethodDelete:
			s.handleDeleteTransformation(w, r, userID, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(parts) == 3 && parts[1] == "images":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetImage(w, r, userID, id, store.ImageKind(parts[2]))
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleGetTransformation(w http.ResponseWriter, r *http.Request, userID, id int64) {
	t, err := s.store.TransformationByID(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transformationPayload{
		ID:        t.ID,
		Breed:     t.Breed,
		CreatedAt: t.CreatedAt,
		Images:    imagePaths(t.ID),
	})
}

func (s *Server) handleDeleteTransformation(w http.ResponseWriter, r *http.Request, userID, id int64) {
	if err := s.store.DeleteTransformation(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Transformation deleted"})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request, userID, id int64, kind store.ImageKind) {
	if !store.ValidImageKind(kind) {
		s.writeError(w, http.StatusBadRequest, "unknown image kind")
		return
	}
	data, err := s.store.TransformationImage(r.Context(), userID, id, kind)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func imagePaths(id int64) []string {
	base := fmt.Sprintf("/api/transformations/%d/images/", id)
	return []string{
		base + string(store.ImageOriginal),
		base + string(store.ImageTransition1),
		base + string(store.ImageTransition2),
		base + string(store.ImageFinalDog),
	}
}
