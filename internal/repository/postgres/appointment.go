package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/doctora/clinic-api/internal/model"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
)

const appointmentColumns = `
	a.id, a.doctor_id, a.patient_id, a.appointment_datetime,
	a.duration_minutes, a.status, a.notes, a.doctor_notes,
	a.created_at, a.updated_at,
	du.first_name || ' ' || du.last_name AS doctor_name,
	s.name AS specialty_name,
	pu.first_name || ' ' || pu.last_name AS patient_name
`

const appointmentJoins = `
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id
	JOIN specialties s ON s.id = d.specialty_id
	JOIN users pu ON pu.id = a.patient_id
`

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			doctor_id, patient_id, appointment_datetime, duration_minutes,
			status, notes, doctor_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	err := r.db.ext(ctx).QueryRowxContext(ctx, query,
		a.DoctorID,
		a.PatientID,
		a.AppointmentDatetime,
		a.DurationMinutes,
		a.Status,
		a.Notes,
		a.DoctorNotes,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + ` WHERE a.id = $1`
	var a model.Appointment
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &a, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ext(ctx).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + `
		WHERE a.patient_id = $1
		ORDER BY a.appointment_datetime DESC
	`
	var out []*model.Appointment
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return out, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + `
		WHERE a.doctor_id = $1
		ORDER BY a.appointment_datetime ASC
	`
	var out []*model.Appointment
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return out, nil
}

func (r *appointmentRepository) ListByDoctorBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + `
		WHERE a.doctor_id = $1
		AND a.appointment_datetime >= $2
		AND a.appointment_datetime <= $3
		AND a.status <> 'CANCELLED'
		ORDER BY a.appointment_datetime ASC
	`
	var out []*model.Appointment
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, doctorID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments in range: %w", err)
	}
	return out, nil
}

// FindConflicting applies the half-open interval intersection: an existing
// appointment [s, e) conflicts with the candidate [start, end) when
// s <= start < e, or s < end <= e, or the candidate fully contains [s, e).
func (r *appointmentRepository) FindConflicting(ctx context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentJoins + `
		WHERE a.doctor_id = $1
		AND a.status IN ('PENDING', 'CONFIRMED')
		AND (
			(a.appointment_datetime <= $2 AND a.appointment_datetime + make_interval(mins => a.duration_minutes) > $2)
			OR (a.appointment_datetime < $3 AND a.appointment_datetime + make_interval(mins => a.duration_minutes) >= $3)
			OR (a.appointment_datetime >= $2 AND a.appointment_datetime + make_interval(mins => a.duration_minutes) <= $3)
		)
	`
	var out []*model.Appointment
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, query, doctorID, start, end); err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	return out, nil
}
