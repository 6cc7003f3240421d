package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// FacultyRepository handles faculty account data access.
type FacultyRepository struct {
	pool *pgxpool.Pool
}

// NewFacultyRepository creates a new FacultyRepository.
func NewFacultyRepository(pool *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{pool: pool}
}

// GetByID retrieves a faculty member by ID.
func (r *FacultyRepository) GetByID(ctx context.Context, id int) (*model.Faculty, error) {
	f := &model.Faculty{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM faculties WHERE id = $1`, id,
	).Scan(&f.ID, &f.Email, &f.Name, &f.PasswordHash, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return f, nil
}

// GetByEmail retrieves a faculty member by their unique email.
func (r *FacultyRepository) GetByEmail(ctx context.Context, email string) (*model.Faculty, error) {
	f := &model.Faculty{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM faculties WHERE lower(email) = lower($1)`, email,
	).Scan(&f.ID, &f.Email, &f.Name, &f.PasswordHash, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return f, nil
}

// Create inserts a new faculty account.
func (r *FacultyRepository) Create(ctx context.Context, f *model.Faculty) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO faculties (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		f.Email, f.Name, f.PasswordHash,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
