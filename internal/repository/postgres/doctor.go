package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/doctora/clinic-api/internal/model"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
)

const doctorColumns = `
	d.id, d.user_id, d.specialty_id, d.license_number, d.bio,
	d.experience_years, d.consultation_fee, d.room_number, d.is_active,
	d.created_at, d.updated_at,
	u.first_name || ' ' || u.last_name AS doctor_name,
	u.email AS email,
	s.name AS specialty_name
`

const doctorJoins = `
	FROM doctors d
	JOIN users u ON u.id = d.user_id
	JOIN specialties s ON s.id = d.specialty_id
`

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			user_id, specialty_id, license_number, bio,
			experience_years, consultation_fee, room_number, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt

	err := r.db.ext(ctx).QueryRowxContext(ctx, query,
		d.UserID,
		d.SpecialtyID,
		d.LicenseNumber,
		d.Bio,
		d.ExperienceYears,
		d.ConsultationFee,
		d.RoomNumber,
		d.IsActive,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(fmt.Sprintf("license number already exists: %s", d.LicenseNumber))
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + doctorJoins + ` WHERE d.id = $1`
	var d model.Doctor
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &d, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &d, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + doctorJoins + ` WHERE d.user_id = $1`
	var d model.Doctor
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &d, query, userID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor by user: %w", err)
	}
	return &d, nil
}

func (r *doctorRepository) Update(ctx context.Context, d *model.Doctor) error {
	query := `
		UPDATE doctors
		SET specialty_id = $1, license_number = $2, bio = $3,
		    experience_years = $4, consultation_fee = $5, room_number = $6,
		    updated_at = $7
		WHERE id = $8
	`
	d.UpdatedAt = time.Now()

	result, err := r.db.ext(ctx).ExecContext(ctx, query,
		d.SpecialtyID,
		d.LicenseNumber,
		d.Bio,
		d.ExperienceYears,
		d.ConsultationFee,
		d.RoomNumber,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(fmt.Sprintf("license number already exists: %s", d.LicenseNumber))
		}
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, filters model.DoctorFilters) ([]*model.Doctor, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if !filters.IncludeInactive {
		where += " AND d.is_active"
	}
	if filters.Name != "" {
		where += fmt.Sprintf(" AND (u.first_name || ' ' || u.last_name) ILIKE '%%' || $%d || '%%'", argCount)
		args = append(args, filters.Name)
		argCount++
	}
	if filters.SpecialtyID != nil {
		where += fmt.Sprintf(" AND d.specialty_id = $%d", argCount)
		args = append(args, *filters.SpecialtyID)
		argCount++
	}
	if filters.MinFee != nil {
		where += fmt.Sprintf(" AND d.consultation_fee >= $%d", argCount)
		args = append(args, *filters.MinFee)
		argCount++
	}
	if filters.MaxFee != nil {
		where += fmt.Sprintf(" AND d.consultation_fee <= $%d", argCount)
		args = append(args, *filters.MaxFee)
		argCount++
	}

	var total int
	countQuery := `SELECT COUNT(*)` + doctorJoins + where
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	query := `SELECT ` + doctorColumns + doctorJoins + where +
		fmt.Sprintf(" ORDER BY u.first_name ASC, u.last_name ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, filters.Offset())

	var doctors []*model.Doctor
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepository) ListBySpecialtyName(ctx context.Context, name string) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + doctorJoins + `
		WHERE s.name = $1 AND d.is_active
		ORDER BY u.first_name ASC, u.last_name ASC
	`
	var doctors []*model.Doctor
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &doctors, query, name); err != nil {
		return nil, fmt.Errorf("failed to list doctors by specialty name: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) ListBySpecialtyID(ctx context.Context, specialtyID int64, p model.Pagination) ([]*model.Doctor, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM doctors WHERE specialty_id = $1 AND is_active`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &total, countQuery, specialtyID); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors by specialty: %w", err)
	}

	query := `SELECT ` + doctorColumns + doctorJoins + `
		WHERE d.specialty_id = $1 AND d.is_active
		ORDER BY u.first_name ASC, u.last_name ASC
		LIMIT $2 OFFSET $3
	`
	var doctors []*model.Doctor
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &doctors, query, specialtyID, p.PageSize, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors by specialty: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepository) ExistsByLicense(ctx context.Context, license string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM doctors WHERE license_number = $1)`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists, query, license); err != nil {
		return false, fmt.Errorf("failed to check license number: %w", err)
	}
	return exists, nil
}

func (r *doctorRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &count, `SELECT COUNT(*) FROM doctors WHERE is_active`); err != nil {
		return 0, fmt.Errorf("failed to count active doctors: %w", err)
	}
	return count, nil
}

func (r *doctorRepository) CountActiveBySpecialty(ctx context.Context, specialtyID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM doctors WHERE specialty_id = $1 AND is_active`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &count, query, specialtyID); err != nil {
		return 0, fmt.Errorf("failed to count doctors in specialty: %w", err)
	}
	return count, nil
}

func (r *doctorRepository) CountSpecialtiesWithActiveDoctors(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(DISTINCT specialty_id) FROM doctors WHERE is_active`
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &count, query); err != nil {
		return 0, fmt.Errorf("failed to count specialties with doctors: %w", err)
	}
	return count, nil
}

func (r *doctorRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE doctors SET is_active = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ext(ctx).ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update doctor status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}
