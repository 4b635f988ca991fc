package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/doctora/clinic-api/internal/config"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/pkg/logger"
)

// Service sends booking lifecycle notifications. Callers treat delivery as
// best-effort: a failed send is logged, never surfaced to the patient.
type Service interface {
	SendBookingCreated(ctx context.Context, to string, apt *model.Appointment) error
	SendBookingConfirmed(ctx context.Context, to string, apt *model.Appointment) error
	SendBookingCancelled(ctx context.Context, to string, apt *model.Appointment) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingCreated(_ context.Context, to string, apt *model.Appointment) error {
	subject := "Your appointment request was received"
	body := fmt.Sprintf(
		"Your appointment with %s on %s is pending confirmation.",
		apt.DoctorName, apt.AppointmentDatetime.Format("Mon, 2 Jan 2006 15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendBookingConfirmed(_ context.Context, to string, apt *model.Appointment) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf(
		"Your appointment with %s on %s has been confirmed.",
		apt.DoctorName, apt.AppointmentDatetime.Format("Mon, 2 Jan 2006 15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendBookingCancelled(_ context.Context, to string, apt *model.Appointment) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf(
		"Your appointment with %s on %s has been cancelled.",
		apt.DoctorName, apt.AppointmentDatetime.Format("Mon, 2 Jan 2006 15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// noopService logs instead of sending, for environments without SMTP.
type noopService struct {
	logger *logger.Logger
}

func NewNoopService(logger *logger.Logger) Service {
	return &noopService{logger: logger}
}

func (s *noopService) SendBookingCreated(_ context.Context, to string, apt *model.Appointment) error {
	s.logger.Debug("email suppressed", "type", "booking_created", "to", to, "appointment_id", apt.ID)
	return nil
}

func (s *noopService) SendBookingConfirmed(_ context.Context, to string, apt *model.Appointment) error {
	s.logger.Debug("email suppressed", "type", "booking_confirmed", "to", to, "appointment_id", apt.ID)
	return nil
}

func (s *noopService) SendBookingCancelled(_ context.Context, to string, apt *model.Appointment) error {
	s.logger.Debug("email suppressed", "type", "booking_cancelled", "to", to, "appointment_id", apt.ID)
	return nil
}
