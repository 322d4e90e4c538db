// Package analytics derives per-session and cross-session attendance
// statistics from the ledger. Aggregation is read-only and recomputed on
// demand; counts may be memoized behind an explicit invalidation.
package analytics

import (
	"context"

	"github.com/google/uuid"

	"github.com/harrysonduke/bsc-project/internal/session"
)

type SessionCounts struct {
	Total    int64 `json:"total"`
	Verified int64 `json:"verified"`
}

type SessionStat struct {
	SessionID     uuid.UUID `json:"sessionId"`
	CourseCode    string    `json:"courseCode"`
	CourseTitle   string    `json:"courseTitle"`
	ClassDate     string    `json:"classDate"`
	IsActive      bool      `json:"isActive"`
	Total         int64     `json:"total"`
	VerifiedCount int64     `json:"verifiedCount"`
}

type Report struct {
	Sessions          []SessionStat `json:"sessions"`
	TotalSessions     int           `json:"totalSessions"`
	ActiveSessions    int           `json:"activeSessions"`
	TotalAttendance   int64         `json:"totalAttendance"`
	AveragePerSession float64       `json:"averagePerSession"`
}

// Summarize folds per-session counts into a report. Zero sessions yield a
// zero report, never a division fault.
func Summarize(sessions []session.ClassSession, counts map[uuid.UUID]SessionCounts) Report {
	report := Report{Sessions: make([]SessionStat, 0, len(sessions))}
	for _, s := range sessions {
		c := counts[s.ID]
		report.Sessions = append(report.Sessions, SessionStat{
			SessionID:     s.ID,
			CourseCode:    s.CourseCode,
			CourseTitle:   s.CourseTitle,
			ClassDate:     s.ClassDate,
			IsActive:      s.IsActive,
			Total:         c.Total,
			VerifiedCount: c.Verified,
		})
		report.TotalSessions++
		if s.IsActive {
			report.ActiveSessions++
		}
		report.TotalAttendance += c.Total
	}
	if report.TotalSessions > 0 {
		report.AveragePerSession = float64(report.TotalAttendance) / float64(report.TotalSessions)
	}
	return report
}

// SessionLister provides the sessions a report covers.
type SessionLister interface {
	ListByLecturer(ctx context.Context, lecturerID uuid.UUID) ([]session.ClassSession, error)
}

// CountSource yields per-session ledger counts; the production wiring puts
// the Redis memo in front of the Postgres counts.
type CountSource interface {
	CountBySession(ctx context.Context, sessionID uuid.UUID) (SessionCounts, error)
}

type Service struct {
	sessions SessionLister
	counts   CountSource
}

func NewService(sessions SessionLister, counts CountSource) *Service {
	return &Service{sessions: sessions, counts: counts}
}

// Summary builds the lecturer's report across all their sessions.
func (s *Service) Summary(ctx context.Context, lecturerID uuid.UUID) (Report, error) {
	sessions, err := s.sessions.ListByLecturer(ctx, lecturerID)
	if err != nil {
		return Report{}, err
	}
	counts := make(map[uuid.UUID]SessionCounts, len(sessions))
	for _, sess := range sessions {
		c, err := s.counts.CountBySession(ctx, sess.ID)
		if err != nil {
			return Report{}, err
		}
		counts[sess.ID] = c
	}
	return Summarize(sessions, counts), nil
}
