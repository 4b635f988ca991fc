package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAppointmentEnd(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	apt := &Appointment{AppointmentDatetime: start, DurationMinutes: 45}
	assert.Equal(t, start.Add(45*time.Minute), apt.End())
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ClockMinutes("9:30")
	assert.Error(t, err)

	_, err = ClockMinutes("24:00")
	assert.Error(t, err)
}

func TestISOWeekday(t *testing.T) {
	// 2026-09-06 is a Sunday, 2026-09-07 a Monday.
	assert.Equal(t, 7, ISOWeekday(time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, ISOWeekday(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)))
}
