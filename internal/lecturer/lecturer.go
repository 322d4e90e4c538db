// Package lecturer holds the external identity consumed by the engine.
// Authentication screens live elsewhere; the engine only needs to resolve a
// lecturer id to a known row so sessions have a real owner.
package lecturer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harrysonduke/bsc-project/internal/apperr"
	"github.com/harrysonduke/bsc-project/internal/db"
)

type Lecturer struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db db.DBTX
}

func NewRepository(dbtx db.DBTX) *Repository {
	return &Repository{db: dbtx}
}

func (r *Repository) Insert(ctx context.Context, email, fullName string) (Lecturer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return Lecturer{}, apperr.Validation("missing_fields", "email and full name are required")
	}
	lect := Lecturer{ID: uuid.New(), Email: email, FullName: fullName}
	row := r.db.QueryRow(ctx, `
		INSERT INTO lecturers (id, email, full_name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, lect.ID, lect.Email, lect.FullName)
	if err := row.Scan(&lect.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lecturer{}, apperr.Duplicate("lecturer_exists", "a lecturer with that email already exists")
		}
		return Lecturer{}, apperr.Store(err)
	}
	return lect, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lecturer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, full_name, created_at
		FROM lecturers WHERE id = $1
	`, id)
	var lect Lecturer
	if err := row.Scan(&lect.ID, &lect.Email, &lect.FullName, &lect.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lecturer{}, apperr.NotFound("lecturer_not_found", "no lecturer with that id")
		}
		return Lecturer{}, apperr.Store(err)
	}
	return lect, nil
}

// Exists reports whether the id resolves to a known lecturer.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lecturers WHERE id = $1)`, id)
	if err := row.Scan(&found); err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}
