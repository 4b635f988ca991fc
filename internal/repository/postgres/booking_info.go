package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/doctora/clinic-api/internal/model"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
)

func (r *bookingInfoRepository) Create(ctx context.Context, info *model.PatientBookingInfo) error {
	query := `
		INSERT INTO patient_booking_info (
			appointment_id, patient_prefix, patient_first_name, patient_last_name,
			patient_gender, patient_date_of_birth, patient_nationality,
			patient_citizen_id, patient_phone, patient_email, symptoms,
			booking_type, queue_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	info.CreatedAt = time.Now()
	info.UpdatedAt = info.CreatedAt

	err := r.db.ext(ctx).QueryRowxContext(ctx, query,
		info.AppointmentID,
		info.PatientPrefix,
		info.PatientFirstName,
		info.PatientLastName,
		info.PatientGender,
		info.PatientDateOfBirth,
		info.PatientNationality,
		info.PatientCitizenID,
		info.PatientPhone,
		info.PatientEmail,
		info.Symptoms,
		info.BookingType,
		info.QueueNumber,
		info.CreatedAt,
		info.UpdatedAt,
	).Scan(&info.ID)
	if err != nil {
		return fmt.Errorf("failed to create patient booking info: %w", err)
	}
	return nil
}

func (r *bookingInfoRepository) GetByAppointment(ctx context.Context, appointmentID int64) (*model.PatientBookingInfo, error) {
	query := `
		SELECT id, appointment_id, patient_prefix, patient_first_name, patient_last_name,
		       patient_gender, patient_date_of_birth, patient_nationality,
		       patient_citizen_id, patient_phone, patient_email, symptoms,
		       booking_type, queue_number, created_at, updated_at
		FROM patient_booking_info
		WHERE appointment_id = $1
	`
	var info model.PatientBookingInfo
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &info, query, appointmentID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("patient booking info", err)
		}
		return nil, fmt.Errorf("failed to get patient booking info: %w", err)
	}
	return &info, nil
}

func (r *bookingInfoRepository) MaxQueueNumber(ctx context.Context) (string, error) {
	var max sql.NullString
	query := `SELECT MAX(queue_number) FROM patient_booking_info WHERE queue_number IS NOT NULL`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &max, query); err != nil {
		return "", fmt.Errorf("failed to get max queue number: %w", err)
	}
	if !max.Valid {
		return "", nil
	}
	return max.String, nil
}
