package model

import "time"

// PatientBookingInfo is the per-booking snapshot of patient details. It is
// written once with its appointment and never updated afterwards, so the
// booking record stays intact even if the live user record changes.
type PatientBookingInfo struct {
	ID                 int64      `db:"id" json:"id"`
	AppointmentID      int64      `db:"appointment_id" json:"appointment_id"`
	PatientPrefix      string     `db:"patient_prefix" json:"patient_prefix,omitempty"`
	PatientFirstName   string     `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName    string     `db:"patient_last_name" json:"patient_last_name"`
	PatientGender      string     `db:"patient_gender" json:"patient_gender,omitempty"`
	PatientDateOfBirth *time.Time `db:"patient_date_of_birth" json:"patient_date_of_birth,omitempty"`
	PatientNationality string     `db:"patient_nationality" json:"patient_nationality,omitempty"`
	PatientCitizenID   string     `db:"patient_citizen_id" json:"patient_citizen_id,omitempty"`
	PatientPhone       string     `db:"patient_phone" json:"patient_phone,omitempty"`
	PatientEmail       string     `db:"patient_email" json:"patient_email,omitempty"`
	Symptoms           string     `db:"symptoms" json:"symptoms,omitempty"`
	BookingType        string     `db:"booking_type" json:"booking_type"`
	QueueNumber        string     `db:"queue_number" json:"queue_number"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the snapshot name parts for display.
func (p *PatientBookingInfo) FullName() string {
	name := p.PatientFirstName + " " + p.PatientLastName
	if p.PatientPrefix != "" {
		return p.PatientPrefix + " " + name
	}
	return name
}

// BookingResult bundles a freshly created appointment with its patient
// snapshot.
type BookingResult struct {
	Appointment *Appointment        `json:"appointment"`
	PatientInfo *PatientBookingInfo `json:"patient_info"`
}
