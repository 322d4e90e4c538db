package analytics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrysonduke/bsc-project/internal/session"
)

func TestSummarizeZeroSessions(t *testing.T) {
	report := Summarize(nil, nil)
	assert.Equal(t, 0, report.TotalSessions)
	assert.Equal(t, 0, report.ActiveSessions)
	assert.Equal(t, int64(0), report.TotalAttendance)
	assert.Equal(t, float64(0), report.AveragePerSession)
	assert.Empty(t, report.Sessions)
}

func TestSummarizeMixedSessions(t *testing.T) {
	active := session.ClassSession{ID: uuid.New(), CourseCode: "CSC101", IsActive: true}
	closed := session.ClassSession{ID: uuid.New(), CourseCode: "MTH202", IsActive: false}
	empty := session.ClassSession{ID: uuid.New(), CourseCode: "PHY303", IsActive: true}

	counts := map[uuid.UUID]SessionCounts{
		active.ID: {Total: 30, Verified: 28},
		closed.ID: {Total: 12, Verified: 9},
	}

	report := Summarize([]session.ClassSession{active, closed, empty}, counts)

	assert.Equal(t, 3, report.TotalSessions)
	assert.Equal(t, 2, report.ActiveSessions)
	assert.Equal(t, int64(42), report.TotalAttendance)
	assert.InDelta(t, 14.0, report.AveragePerSession, 1e-9)

	require.Len(t, report.Sessions, 3)
	assert.Equal(t, int64(30), report.Sessions[0].Total)
	assert.Equal(t, int64(28), report.Sessions[0].VerifiedCount)
	assert.Equal(t, int64(0), report.Sessions[2].Total, "session without records counts zero")
}

type staticLister struct{ sessions []session.ClassSession }

func (s *staticLister) ListByLecturer(_ context.Context, _ uuid.UUID) ([]session.ClassSession, error) {
	return s.sessions, nil
}

type staticCounts struct{ counts map[uuid.UUID]SessionCounts }

func (s *staticCounts) CountBySession(_ context.Context, id uuid.UUID) (SessionCounts, error) {
	return s.counts[id], nil
}

func TestServiceSummary(t *testing.T) {
	owner := uuid.New()
	one := session.ClassSession{ID: uuid.New(), LecturerID: owner, CourseCode: "CSC101", IsActive: true}
	two := session.ClassSession{ID: uuid.New(), LecturerID: owner, CourseCode: "CSC102", IsActive: false}

	svc := NewService(
		&staticLister{sessions: []session.ClassSession{one, two}},
		&staticCounts{counts: map[uuid.UUID]SessionCounts{
			one.ID: {Total: 10, Verified: 10},
			two.ID: {Total: 4, Verified: 1},
		}},
	)

	report, err := svc.Summary(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalSessions)
	assert.Equal(t, 1, report.ActiveSessions)
	assert.Equal(t, int64(14), report.TotalAttendance)
	assert.InDelta(t, 7.0, report.AveragePerSession, 1e-9)
}
