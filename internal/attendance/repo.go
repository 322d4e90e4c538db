package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harrysonduke/bsc-project/internal/analytics"
	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/db"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) *Repository {
	return &Repository{db: dbtx}
}

// Insert writes a record. The unique index on (session_id, student_id) makes
// the duplicate check atomic with the insert; a violation surfaces as
// apperr.KindDuplicate.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO attendance_records (id, session_id, student_id, student_name,
			attendee_latitude, attendee_longitude, distance_from_session,
			is_verified, flagged_for_review, marked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.ID, rec.SessionID, rec.StudentID, rec.StudentName,
		rec.AttendeeLatitude, rec.AttendeeLongitude, rec.DistanceFromSession,
		rec.IsVerified, rec.FlaggedForReview, rec.MarkedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Duplicate("already_marked", "attendance already marked for this class")
		}
		return apperr.Store(err)
	}
	return nil
}

func (r *Repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, student_id, student_name,
			attendee_latitude, attendee_longitude, distance_from_session,
			is_verified, flagged_for_review, marked_at
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY marked_at DESC
	`, sessionID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.StudentName,
			&rec.AttendeeLatitude, &rec.AttendeeLongitude, &rec.DistanceFromSession,
			&rec.IsVerified, &rec.FlaggedForReview, &rec.MarkedAt); err != nil {
			return nil, apperr.Store(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return records, nil
}

// CountBySession returns the total and verified record counts for one
// session, the numbers the analytics report is built from.
func (r *Repository) CountBySession(ctx context.Context, sessionID uuid.UUID) (analytics.SessionCounts, error) {
	var counts analytics.SessionCounts
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_verified)
		FROM attendance_records
		WHERE session_id = $1
	`, sessionID)
	if err := row.Scan(&counts.Total, &counts.Verified); err != nil {
		return analytics.SessionCounts{}, apperr.Store(err)
	}
	return counts, nil
}
