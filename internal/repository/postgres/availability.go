package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/doctora/clinic-api/internal/model"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
)

func (r *availabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO availabilities (doctor_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	err := r.db.ext(ctx).QueryRowxContext(ctx, query,
		a.DoctorID,
		a.DayOfWeek,
		a.StartTime,
		a.EndTime,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id int64) (*model.Availability, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities
		WHERE id = $1
	`
	var a model.Availability
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &a, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("availability", err)
		}
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return &a, nil
}

func (r *availabilityRepository) GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Availability, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities
		WHERE id = $1 AND doctor_id = $2 AND is_active
	`
	var a model.Availability
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &a, query, id, doctorID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("availability", err)
		}
		return nil, fmt.Errorf("failed to get availability for doctor: %w", err)
	}
	return &a, nil
}

func (r *availabilityRepository) Update(ctx context.Context, a *model.Availability) error {
	query := `
		UPDATE availabilities
		SET day_of_week = $1, start_time = $2, end_time = $3, updated_at = $4
		WHERE id = $5
	`
	a.UpdatedAt = time.Now()

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		a.DayOfWeek,
		a.StartTime,
		a.EndTime,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("availability", nil)
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("availability", nil)
	}
	return nil
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Availability, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities
		WHERE doctor_id = $1 AND is_active
		ORDER BY day_of_week ASC, start_time ASC
	`
	var out []*model.Availability
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list availabilities: %w", err)
	}
	return out, nil
}

func (r *availabilityRepository) ListByDoctorAndDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*model.Availability, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM availabilities
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_active
		ORDER BY start_time ASC
	`
	var out []*model.Availability
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, doctorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("failed to list availabilities by day: %w", err)
	}
	return out, nil
}
