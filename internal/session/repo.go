package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/db"
)

const sessionColumns = `id, lecturer_id, course_code, course_title, venue, latitude, longitude,
	class_date, start_time, end_time, session_token, is_active, note, created_at, updated_at`

// Repository persists class sessions in Postgres.
type Repository struct {
	store *db.Store
}

func NewRepository(store *db.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Insert(ctx context.Context, s ClassSession) error {
	_, err := r.store.Pool.Exec(ctx, `
		INSERT INTO class_sessions (id, lecturer_id, course_code, course_title, venue, latitude, longitude,
			class_date, start_time, end_time, session_token, is_active, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.ID, s.LecturerID, s.CourseCode, s.CourseTitle, s.Venue, s.Latitude, s.Longitude,
		s.ClassDate, s.StartTime, s.EndTime, s.SessionToken, s.IsActive, s.Note, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (ClassSession, error) {
	row := r.store.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM class_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetOwned resolves a session only when it belongs to the given lecturer.
// An existing session owned by someone else is indistinguishable from a
// missing one.
func (r *Repository) GetOwned(ctx context.Context, id, lecturerID uuid.UUID) (ClassSession, error) {
	row := r.store.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM class_sessions WHERE id = $1 AND lecturer_id = $2`, id, lecturerID)
	return scanSession(row)
}

func (r *Repository) Save(ctx context.Context, s ClassSession) error {
	tag, err := r.store.Pool.Exec(ctx, `
		UPDATE class_sessions
		SET course_code = $2, course_title = $3, venue = $4, latitude = $5, longitude = $6,
			class_date = $7, start_time = $8, end_time = $9, is_active = $10, note = $11, updated_at = $12
		WHERE id = $1
	`, s.ID, s.CourseCode, s.CourseTitle, s.Venue, s.Latitude, s.Longitude,
		s.ClassDate, s.StartTime, s.EndTime, s.IsActive, s.Note, s.UpdatedAt)
	if err != nil {
		return apperr.Store(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("class_not_found", "no class session with that id")
	}
	return nil
}

// DeleteCascade removes the session and its attendance records in one
// transaction so a partial failure cannot orphan records.
func (r *Repository) DeleteCascade(ctx context.Context, id, lecturerID uuid.UUID) error {
	err := r.store.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attendance_records WHERE session_id = $1`, id); err != nil {
			return apperr.Store(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM class_sessions WHERE id = $1 AND lecturer_id = $2`, id, lecturerID)
		if err != nil {
			return apperr.Store(err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("class_not_found", "no class session with that id")
		}
		return nil
	})
	if err != nil && apperr.KindOf(err) == apperr.KindUnknown {
		return apperr.Store(err)
	}
	return err
}

func (r *Repository) ListByLecturer(ctx context.Context, lecturerID uuid.UUID) ([]ClassSession, error) {
	rows, err := r.store.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM class_sessions WHERE lecturer_id = $1 ORDER BY created_at DESC`, lecturerID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()
	var sessions []ClassSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (ClassSession, error) {
	var s ClassSession
	err := row.Scan(&s.ID, &s.LecturerID, &s.CourseCode, &s.CourseTitle, &s.Venue, &s.Latitude, &s.Longitude,
		&s.ClassDate, &s.StartTime, &s.EndTime, &s.SessionToken, &s.IsActive, &s.Note, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClassSession{}, apperr.NotFound("class_not_found", "no class session with that id")
		}
		return ClassSession{}, apperr.Store(err)
	}
	return s, nil
}
