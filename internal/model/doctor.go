package model

import "time"

type Doctor struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	SpecialtyID     int64     `db:"specialty_id" json:"specialty_id"`
	LicenseNumber   string    `db:"license_number" json:"license_number"`
	Bio             string    `db:"bio" json:"bio,omitempty"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	RoomNumber      string    `db:"room_number" json:"room_number,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	// Joined read-only fields populated by list/get queries.
	DoctorName    string `db:"doctor_name" json:"doctor_name,omitempty"`
	Email         string `db:"email" json:"email,omitempty"`
	SpecialtyName string `db:"specialty_name" json:"specialty_name,omitempty"`
}

// CreateDoctorRequest is the admin payload for promoting a user to doctor.
type CreateDoctorRequest struct {
	UserID          int64    `json:"user_id" binding:"required"`
	SpecialtyID     int64    `json:"specialty_id" binding:"required"`
	LicenseNumber   string   `json:"license_number" binding:"required"`
	Bio             string   `json:"bio"`
	ExperienceYears int      `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,min=0"`
	RoomNumber      string   `json:"room_number"`
}

// UpdateDoctorRequest is the admin payload; all fields optional.
type UpdateDoctorRequest struct {
	SpecialtyID     *int64   `json:"specialty_id"`
	LicenseNumber   *string  `json:"license_number"`
	Bio             *string  `json:"bio"`
	ExperienceYears *int     `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,min=0"`
	RoomNumber      *string  `json:"room_number"`
}

// UpdateDoctorProfileRequest is the self-service payload; doctors may only
// touch their bio, experience, fee and room.
type UpdateDoctorProfileRequest struct {
	Bio             *string  `json:"bio"`
	ExperienceYears *int     `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,min=0"`
	RoomNumber      *string  `json:"room_number"`
}

// DoctorFilters narrows doctor list/search queries.
type DoctorFilters struct {
	Name            string
	SpecialtyID     *int64
	MinFee          *float64
	MaxFee          *float64
	IncludeInactive bool
	Pagination
}

type DoctorStats struct {
	TotalDoctors     int64 `json:"total_doctors"`
	TotalSpecialties int64 `json:"total_specialties"`
}

// SmartSelection is the result of the least-busy doctor heuristic. Doctor is
// nil when no candidate matched; AvailableOnDate is set only when a date
// filter was applied and nobody had a window on it.
type SmartSelection struct {
	Message         string  `json:"message"`
	Doctor          *Doctor `json:"doctor"`
	TotalDoctors    int     `json:"total_doctors_in_specialty"`
	AvailableOnDate *int    `json:"doctors_available_on_date,omitempty"`
}
