package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// CanTransitionTo implements the appointment status machine:
// PENDING -> CONFIRMED | CANCELLED, CONFIRMED -> CANCELLED | COMPLETED |
// NO_SHOW. The remaining statuses are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCancelled ||
			next == AppointmentStatusCompleted ||
			next == AppointmentStatusNoShow
	}
	return false
}

const (
	DefaultAppointmentMinutes = 30
	MinAppointmentMinutes     = 15
)

type Appointment struct {
	ID                  int64             `db:"id" json:"id"`
	DoctorID            int64             `db:"doctor_id" json:"doctor_id"`
	PatientID           int64             `db:"patient_id" json:"patient_id"`
	AppointmentDatetime time.Time         `db:"appointment_datetime" json:"appointment_datetime"`
	DurationMinutes     int               `db:"duration_minutes" json:"duration_minutes"`
	Status              AppointmentStatus `db:"status" json:"status"`
	Notes               string            `db:"notes" json:"notes,omitempty"`
	DoctorNotes         string            `db:"doctor_notes" json:"doctor_notes,omitempty"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`

	// Joined read-only fields populated by list queries.
	DoctorName    string `db:"doctor_name" json:"doctor_name,omitempty"`
	SpecialtyName string `db:"specialty_name" json:"specialty_name,omitempty"`
	PatientName   string `db:"patient_name" json:"patient_name,omitempty"`
}

// End returns the exclusive end of the appointment interval.
func (a *Appointment) End() time.Time {
	return a.AppointmentDatetime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type CreateAppointmentRequest struct {
	DoctorID            int64     `json:"doctor_id" binding:"required"`
	AppointmentDatetime time.Time `json:"appointment_datetime" binding:"required"`
	DurationMinutes     *int      `json:"duration_minutes" binding:"omitempty,min=15"`
	Notes               string    `json:"notes" binding:"max=1000"`
}

// CreateAppointmentWithPatientInfoRequest books an appointment together with
// an immutable snapshot of the patient's details at booking time.
type CreateAppointmentWithPatientInfoRequest struct {
	CreateAppointmentRequest

	PatientPrefix      string `json:"patient_prefix"`
	PatientFirstName   string `json:"patient_first_name" binding:"required"`
	PatientLastName    string `json:"patient_last_name" binding:"required"`
	PatientGender      string `json:"patient_gender"`
	PatientDateOfBirth string `json:"patient_date_of_birth"`
	PatientNationality string `json:"patient_nationality"`
	PatientCitizenID   string `json:"patient_citizen_id"`
	PatientPhone       string `json:"patient_phone"`
	PatientEmail       string `json:"patient_email" binding:"omitempty,email"`
	Symptoms           string `json:"symptoms"`
	BookingType        string `json:"booking_type" binding:"omitempty,oneof=auto manual"`
	QueueNumber        string `json:"queue_number"`
}

// BookedSlot is the public shape of an occupied time slot.
type BookedSlot struct {
	AppointmentID   int64             `json:"appointment_id"`
	StartTime       time.Time         `json:"start_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
}
