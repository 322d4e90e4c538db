// Package attendance records attendee submissions and decides whether each
// one counts as verified presence.
package attendance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/geo"
	"github.com/harrysonduke/bsc-project/internal/metrics"
	"github.com/harrysonduke/bsc-project/internal/session"
)

// Coordinate is a device-reported position. Absence of a Coordinate is the
// LocationUnavailable input, handled by the policy.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Record is one attendance submission. Created once, never updated; deleted
// only as a cascade of session deletion.
type Record struct {
	ID                  uuid.UUID `json:"id"`
	SessionID           uuid.UUID `json:"sessionId"`
	StudentID           string    `json:"studentId"`
	StudentName         string    `json:"studentName"`
	AttendeeLatitude    *float64  `json:"attendeeLatitude"`
	AttendeeLongitude   *float64  `json:"attendeeLongitude"`
	DistanceFromSession *float64  `json:"distanceFromSession"`
	IsVerified          bool      `json:"isVerified"`
	FlaggedForReview    bool      `json:"flaggedForReview"`
	MarkedAt            time.Time `json:"markedAt"`
}

// SessionGetter resolves the session a submission targets. Submit re-reads
// the session on every call so an owner flipping isActive takes effect for
// submissions that arrive afterwards.
type SessionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (session.ClassSession, error)
}

// RecordStore persists records. Insert must enforce the
// (sessionID, studentID) uniqueness atomically and surface violations as
// apperr.KindDuplicate.
type RecordStore interface {
	Insert(ctx context.Context, rec Record) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Record, error)
}

// CountInvalidator drops memoized per-session counts after a new submission.
type CountInvalidator interface {
	Invalidate(ctx context.Context, sessionID uuid.UUID)
}

type Ledger struct {
	sessions   SessionGetter
	records    RecordStore
	policy     Policy
	invalidate CountInvalidator
	now        func() time.Time
}

func NewLedger(sessions SessionGetter, records RecordStore, policy Policy, invalidate CountInvalidator) *Ledger {
	return &Ledger{
		sessions:   sessions,
		records:    records,
		policy:     policy,
		invalidate: invalidate,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit normalizes the attendee identity, verifies presence against the
// session venue and persists the outcome. The duplicate check rides on the
// store's uniqueness constraint, so two near-simultaneous submissions cannot
// both land.
func (l *Ledger) Submit(ctx context.Context, sessionID uuid.UUID, studentID, studentName string, coord *Coordinate) (Record, error) {
	studentID = strings.ToUpper(strings.TrimSpace(studentID))
	studentName = strings.ToUpper(strings.TrimSpace(studentName))
	if studentID == "" || studentName == "" {
		return Record{}, apperr.Validation("missing_fields", "name and matriculation number are required")
	}

	sess, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}

	var distance *float64
	if coord != nil {
		d := geo.Distance(coord.Latitude, coord.Longitude, sess.Latitude, sess.Longitude)
		distance = &d
	}

	outcome, err := l.policy.Evaluate(sess.IsActive, distance)
	if err != nil {
		if appErr, ok := err.(*apperr.Error); ok {
			metrics.SubmissionRejections.WithLabelValues(appErr.Code).Inc()
		}
		return Record{}, err
	}

	rec := Record{
		ID:                  uuid.New(),
		SessionID:           sessionID,
		StudentID:           studentID,
		StudentName:         studentName,
		DistanceFromSession: distance,
		IsVerified:          outcome == OutcomeVerified || outcome == OutcomeUnlocated,
		FlaggedForReview:    outcome == OutcomeUnlocated,
		MarkedAt:            l.now(),
	}
	if coord != nil {
		lat, lng := coord.Latitude, coord.Longitude
		rec.AttendeeLatitude = &lat
		rec.AttendeeLongitude = &lng
	}

	if err := l.records.Insert(ctx, rec); err != nil {
		if apperr.Is(err, apperr.KindDuplicate) {
			metrics.SubmissionRejections.WithLabelValues("already_marked").Inc()
		}
		return Record{}, err
	}

	metrics.Submissions.WithLabelValues(string(outcome)).Inc()
	if l.invalidate != nil {
		l.invalidate.Invalidate(ctx, sessionID)
	}
	return rec, nil
}

// List returns the session's records newest first, the order the review and
// export surfaces consume.
func (l *Ledger) List(ctx context.Context, sessionID uuid.UUID) ([]Record, error) {
	records, err := l.records.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Outcome reports the classification stored on a record, for response
// rendering.
func (r Record) Outcome() Outcome {
	switch {
	case r.FlaggedForReview:
		return OutcomeUnlocated
	case r.IsVerified:
		return OutcomeVerified
	default:
		return OutcomeOutOfRange
	}
}
