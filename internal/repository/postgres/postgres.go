package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/doctora/clinic-api/internal/repository"
)

type userRepository struct {
	db *DB
}

type specialtyRepository struct {
	db *DB
}

type doctorRepository struct {
	db *DB
}

type availabilityRepository struct {
	db *DB
}

type appointmentRepository struct {
	db *DB
}

type bookingInfoRepository struct {
	db *DB
}

type outboxRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewSpecialtyRepository(db *DB) repository.SpecialtyRepository {
	return &specialtyRepository{db: db}
}

func NewDoctorRepository(db *DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func NewAvailabilityRepository(db *DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func NewAppointmentRepository(db *DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewBookingInfoRepository(db *DB) repository.BookingInfoRepository {
	return &bookingInfoRepository{db: db}
}

func NewOutboxRepository(db *DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
