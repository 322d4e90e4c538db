package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harrysonduke/bsc-project/internal/analytics"
	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/attendance"
	"github.com/harrysonduke/bsc-project/internal/auth"
	"github.com/harrysonduke/bsc-project/internal/config"
	"github.com/harrysonduke/bsc-project/internal/httpmiddleware"
	"github.com/harrysonduke/bsc-project/internal/lecturer"
	"github.com/harrysonduke/bsc-project/internal/session"
	"github.com/harrysonduke/bsc-project/internal/token"
)

type Server struct {
	cfg       config.Config
	lecturers *lecturer.Repository
	sessions  *session.Service
	ledger    *attendance.Ledger
	analytics *analytics.Service
	limiter   *httpmiddleware.RateLimiter
	validate  *validator.Validate
}

func NewServer(cfg config.Config, lecturers *lecturer.Repository, sessions *session.Service, ledger *attendance.Ledger, analyticsService *analytics.Service, limiter *httpmiddleware.RateLimiter) *Server {
	return &Server{
		cfg:       cfg,
		lecturers: lecturers,
		sessions:  sessions,
		ledger:    ledger,
		analytics: analyticsService,
		limiter:   limiter,
		validate:  validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/lecturers", s.handleCreateLecturer)
	r.With(s.authMiddleware).Get("/lecturers/me", s.handleGetMe)

	r.With(s.authMiddleware).Post("/sessions", s.handleCreateSession)
	r.With(s.authMiddleware).Get("/sessions", s.handleListSessions)
	r.Get("/sessions/{sessionId}", s.handleGetSession)
	r.With(s.authMiddleware).Patch("/sessions/{sessionId}", s.handlePatchSession)
	r.With(s.authMiddleware).Delete("/sessions/{sessionId}", s.handleDeleteSession)

	r.With(s.authMiddleware).Get("/sessions/{sessionId}/attendance", s.handleListAttendance)
	r.With(s.limiter.Middleware).Post("/sessions/{sessionId}/attendance", s.handleSubmitAttendance)

	r.With(s.authMiddleware).Get("/analytics/summary", s.handleAnalyticsSummary)

	return r
}

// Auth

type lecturerKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r.Header.Get("Authorization"))
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		lecturerID, err := uuid.Parse(claims.LecturerID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), lecturerKey{}, lecturerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func lecturerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(lecturerKey{}).(uuid.UUID)
	return id, ok
}

// Models

type createLecturerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
}

type lecturerResponse struct {
	lecturer.Lecturer
	AccessToken string `json:"accessToken,omitempty"`
}

type createSessionRequest struct {
	CourseCode  string   `json:"courseCode" validate:"required"`
	CourseTitle string   `json:"courseTitle" validate:"required"`
	Venue       string   `json:"venue" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	ClassDate   string   `json:"classDate" validate:"required"`
	StartTime   string   `json:"startTime" validate:"required"`
	EndTime     string   `json:"endTime" validate:"required"`
	Note        string   `json:"note"`
}

type patchSessionRequest struct {
	CourseCode  *string  `json:"courseCode"`
	CourseTitle *string  `json:"courseTitle"`
	Venue       *string  `json:"venue"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	ClassDate   *string  `json:"classDate"`
	StartTime   *string  `json:"startTime"`
	EndTime     *string  `json:"endTime"`
	Note        *string  `json:"note"`
	IsActive    *bool    `json:"isActive"`
}

type submitAttendanceRequest struct {
	StudentID   string   `json:"studentId" validate:"required"`
	StudentName string   `json:"studentName" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type sessionResponse struct {
	session.ClassSession
	RegistrationLink string `json:"registrationLink"`
}

type submissionResponse struct {
	attendance.Record
	Outcome attendance.Outcome `json:"outcome"`
}

// Handlers

func (s *Server) handleCreateLecturer(w http.ResponseWriter, r *http.Request) {
	var req createLecturerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	created, err := s.lecturers.Insert(r.Context(), req.Email, req.FullName)
	if err != nil {
		writeAppError(w, err)
		return
	}
	accessToken, err := auth.NewToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, created.ID.String(), s.cfg.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, lecturerResponse{Lecturer: created, AccessToken: accessToken})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	found, err := s.lecturers.GetByID(r.Context(), lecturerID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lecturerResponse{Lecturer: found})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	created, err := s.sessions.Create(r.Context(), lecturerID, session.CreateInput{
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		Venue:       req.Venue,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		ClassDate:   req.ClassDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Note:        req.Note,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.mapSession(created))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	sessions, err := s.sessions.ListByLecturer(r.Context(), lecturerID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, s.mapSession(sess))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}
	found, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mapSession(found))
}

func (s *Server) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}
	var req patchSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	updated, err := s.sessions.Update(r.Context(), sessionID, lecturerID, session.Patch{
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		Venue:       req.Venue,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ClassDate:   req.ClassDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Note:        req.Note,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.mapSession(updated))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}
	if err := s.sessions.Delete(r.Context(), sessionID, lecturerID); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}
	// Listing is owner-only even though reads of the session itself are not.
	if _, err := s.sessions.GetOwned(r.Context(), sessionID, lecturerID); err != nil {
		writeAppError(w, err)
		return
	}
	records, err := s.ledger.List(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := make([]submissionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, mapRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}
	var req submitAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	var coord *attendance.Coordinate
	if req.Latitude != nil && req.Longitude != nil {
		coord = &attendance.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	rec, err := s.ledger.Submit(r.Context(), sessionID, req.StudentID, req.StudentName, coord)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapRecord(rec))
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	lecturerID, ok := lecturerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	report, err := s.analytics.Summary(r.Context(), lecturerID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Mapping helpers

func (s *Server) mapSession(sess session.ClassSession) sessionResponse {
	return sessionResponse{
		ClassSession: sess,
		RegistrationLink: token.RegistrationLink(s.cfg.PublicBaseURL, sess.ID.String(),
			sess.SessionToken, sess.CourseCode, sess.Latitude, sess.Longitude),
	}
}

func mapRecord(rec attendance.Record) submissionResponse {
	if rec.DistanceFromSession != nil {
		rounded := roundMeters(*rec.DistanceFromSession)
		rec.DistanceFromSession = &rounded
	}
	return submissionResponse{Record: rec, Outcome: rec.Outcome()}
}

// roundMeters keeps the two-decimal display precision of measured distances.
func roundMeters(meters float64) float64 {
	return math.Round(meters*100) / 100
}

// Utilities

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Printf("unclassified error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindSessionClosed, apperr.KindOutOfRange, apperr.KindLocationUnavailable:
		status = http.StatusForbidden
	case apperr.KindDuplicate:
		status = http.StatusConflict
	case apperr.KindStore:
		log.Printf("store error: %v", appErr)
	}
	payload := map[string]interface{}{"error": appErr.Code, "message": appErr.Message}
	if appErr.Distance != nil {
		payload["distance"] = roundMeters(*appErr.Distance)
	}
	writeJSON(w, status, payload)
}
