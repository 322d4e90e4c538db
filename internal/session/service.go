package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/metrics"
	"github.com/harrysonduke/bsc-project/internal/token"
)

// Store is the persistence contract the service needs; *Repository is the
// production implementation.
type Store interface {
	Insert(ctx context.Context, s ClassSession) error
	GetByID(ctx context.Context, id uuid.UUID) (ClassSession, error)
	GetOwned(ctx context.Context, id, lecturerID uuid.UUID) (ClassSession, error)
	Save(ctx context.Context, s ClassSession) error
	DeleteCascade(ctx context.Context, id, lecturerID uuid.UUID) error
	ListByLecturer(ctx context.Context, lecturerID uuid.UUID) ([]ClassSession, error)
}

// LecturerDirectory resolves owner ids against the external identity store.
type LecturerDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	store     Store
	lecturers LecturerDirectory
	now       func() time.Time
}

func NewService(store Store, lecturers LecturerDirectory) *Service {
	return &Service{store: store, lecturers: lecturers, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (ClassSession, error) {
	in.CourseCode = strings.TrimSpace(in.CourseCode)
	in.CourseTitle = strings.TrimSpace(in.CourseTitle)
	in.Venue = strings.TrimSpace(in.Venue)
	if in.CourseCode == "" || in.CourseTitle == "" || in.Venue == "" ||
		in.ClassDate == "" || in.StartTime == "" || in.EndTime == "" {
		return ClassSession{}, apperr.Validation("missing_fields", "course title, code, venue and schedule are required")
	}

	known, err := s.lecturers.Exists(ctx, ownerID)
	if err != nil {
		return ClassSession{}, err
	}
	if !known {
		return ClassSession{}, apperr.Validation("unknown_lecturer", "owner does not resolve to a known lecturer")
	}

	now := s.now()
	created := ClassSession{
		ID:           uuid.New(),
		LecturerID:   ownerID,
		CourseCode:   in.CourseCode,
		CourseTitle:  in.CourseTitle,
		Venue:        in.Venue,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		ClassDate:    in.ClassDate,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		SessionToken: token.Mint(in.CourseCode, now),
		IsActive:     true,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, created); err != nil {
		return ClassSession{}, err
	}
	metrics.SessionsCreated.Inc()
	return created, nil
}

func (s *Service) Update(ctx context.Context, sessionID, ownerID uuid.UUID, patch Patch) (ClassSession, error) {
	current, err := s.store.GetOwned(ctx, sessionID, ownerID)
	if err != nil {
		return ClassSession{}, err
	}
	patch.apply(&current)
	if current.CourseCode == "" || current.CourseTitle == "" || current.Venue == "" ||
		current.ClassDate == "" || current.StartTime == "" || current.EndTime == "" {
		return ClassSession{}, apperr.Validation("missing_fields", "required fields cannot be cleared")
	}
	current.UpdatedAt = s.now()
	if err := s.store.Save(ctx, current); err != nil {
		return ClassSession{}, err
	}
	return current, nil
}

// Delete is destructive and non-recoverable; callers confirm before invoking.
func (s *Service) Delete(ctx context.Context, sessionID, ownerID uuid.UUID) error {
	return s.store.DeleteCascade(ctx, sessionID, ownerID)
}

// Get is not ownership-restricted: attendees fetch session details through
// the public registration link.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (ClassSession, error) {
	return s.store.GetByID(ctx, sessionID)
}

// GetOwned resolves a session only when ownerID owns it; a session owned by
// someone else is indistinguishable from a missing one.
func (s *Service) GetOwned(ctx context.Context, sessionID, ownerID uuid.UUID) (ClassSession, error) {
	return s.store.GetOwned(ctx, sessionID, ownerID)
}

func (s *Service) ListByLecturer(ctx context.Context, ownerID uuid.UUID) ([]ClassSession, error) {
	return s.store.ListByLecturer(ctx, ownerID)
}
