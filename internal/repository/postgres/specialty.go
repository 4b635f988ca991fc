package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/doctora/clinic-api/internal/model"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
)

func (r *specialtyRepository) Create(ctx context.Context, s *model.Specialty) error {
	query := `
		INSERT INTO specialties (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	err := r.db.ext(ctx).QueryRowxContext(ctx, query, s.Name, s.Description, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(fmt.Sprintf("specialty already exists: %s", s.Name))
		}
		return fmt.Errorf("failed to create specialty: %w", err)
	}
	return nil
}

func (r *specialtyRepository) Get(ctx context.Context, id int64) (*model.Specialty, error) {
	var s model.Specialty
	query := `SELECT id, name, description, created_at, updated_at FROM specialties WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &s, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("specialty", err)
		}
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return &s, nil
}

func (r *specialtyRepository) GetByName(ctx context.Context, name string) (*model.Specialty, error) {
	var s model.Specialty
	query := `SELECT id, name, description, created_at, updated_at FROM specialties WHERE name = $1`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &s, query, name); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("specialty", err)
		}
		return nil, fmt.Errorf("failed to get specialty by name: %w", err)
	}
	return &s, nil
}

func (r *specialtyRepository) SearchByName(ctx context.Context, name string) ([]*model.Specialty, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM specialties
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`
	var out []*model.Specialty
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, name); err != nil {
		return nil, fmt.Errorf("failed to search specialties: %w", err)
	}
	return out, nil
}

func (r *specialtyRepository) List(ctx context.Context) ([]*model.Specialty, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM specialties ORDER BY name ASC`
	var out []*model.Specialty
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return out, nil
}

func (r *specialtyRepository) ListWithDoctorCount(ctx context.Context) ([]*model.SpecialtyWithDoctorCount, error) {
	query := `
		SELECT s.id, s.name, s.description, s.created_at, s.updated_at,
		       COUNT(d.id) FILTER (WHERE d.is_active) AS doctor_count
		FROM specialties s
		LEFT JOIN doctors d ON d.specialty_id = s.id
		GROUP BY s.id
		ORDER BY s.name ASC
	`
	var out []*model.SpecialtyWithDoctorCount
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties with counts: %w", err)
	}
	return out, nil
}

func (r *specialtyRepository) Update(ctx context.Context, s *model.Specialty) error {
	query := `
		UPDATE specialties
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	s.UpdatedAt = time.Now()

	result, err := r.db.ext(ctx).ExecContext(ctx, query, s.Name, s.Description, s.UpdatedAt, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(fmt.Sprintf("specialty already exists: %s", s.Name))
		}
		return fmt.Errorf("failed to update specialty: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("specialty", nil)
	}
	return nil
}

func (r *specialtyRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM specialties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete specialty: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("specialty", nil)
	}
	return nil
}

func (r *specialtyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM specialties WHERE name = $1)`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists, query, name); err != nil {
		return false, fmt.Errorf("failed to check specialty name: %w", err)
	}
	return exists, nil
}
