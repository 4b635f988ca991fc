package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/doctora/clinic-api/internal/model"
)

// TxRunner executes fn inside a single database transaction. Repository
// calls made with the ctx passed to fn run on that transaction, so a
// conflict-detection read and the subsequent write stay consistent against
// concurrent writers.
type TxRunner interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p model.Pagination) ([]*model.User, int, error)
}

type SpecialtyRepository interface {
	Create(ctx context.Context, s *model.Specialty) error
	Get(ctx context.Context, id int64) (*model.Specialty, error)
	GetByName(ctx context.Context, name string) (*model.Specialty, error)
	SearchByName(ctx context.Context, name string) ([]*model.Specialty, error)
	List(ctx context.Context) ([]*model.Specialty, error)
	ListWithDoctorCount(ctx context.Context) ([]*model.SpecialtyWithDoctorCount, error)
	Update(ctx context.Context, s *model.Specialty) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *model.Doctor) error
	Get(ctx context.Context, id int64) (*model.Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error)
	Update(ctx context.Context, d *model.Doctor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters model.DoctorFilters) ([]*model.Doctor, int, error)
	ListBySpecialtyName(ctx context.Context, name string) ([]*model.Doctor, error)
	ListBySpecialtyID(ctx context.Context, specialtyID int64, p model.Pagination) ([]*model.Doctor, int, error)
	ExistsByLicense(ctx context.Context, license string) (bool, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveBySpecialty(ctx context.Context, specialtyID int64) (int64, error)
	CountSpecialtiesWithActiveDoctors(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type AvailabilityRepository interface {
	Create(ctx context.Context, a *model.Availability) error
	Get(ctx context.Context, id int64) (*model.Availability, error)
	GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Availability, error)
	Update(ctx context.Context, a *model.Availability) error
	Delete(ctx context.Context, id int64) error
	ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Availability, error)
	ListByDoctorAndDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*model.Availability, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	Get(ctx context.Context, id int64) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
	ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Appointment, error)
	// ListByDoctorBetween returns the doctor's non-cancelled appointments with
	// appointment_datetime in [start, end], ordered ascending.
	ListByDoctorBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error)
	// FindConflicting returns PENDING/CONFIRMED appointments of the doctor
	// whose [datetime, datetime+duration) interval intersects [start, end).
	FindConflicting(ctx context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error)
}

type BookingInfoRepository interface {
	Create(ctx context.Context, info *model.PatientBookingInfo) error
	GetByAppointment(ctx context.Context, appointmentID int64) (*model.PatientBookingInfo, error)
	// MaxQueueNumber returns the lexicographically greatest queue number, or
	// "" when no booking info exists yet.
	MaxQueueNumber(ctx context.Context) (string, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	CleanupProcessed(ctx context.Context, before time.Time) (int64, error)
}
