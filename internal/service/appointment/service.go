package appointment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doctora/clinic-api/internal/email"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	userRepo    repository.UserRepository
	bookingRepo repository.BookingInfoRepository
	outboxRepo  repository.OutboxRepository
	txr         repository.TxRunner
	emailSvc    email.Service
	logger      *logger.Logger

	// now is the injected clock; replaced in tests.
	now func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingInfoRepository,
	outboxRepo repository.OutboxRepository,
	txr repository.TxRunner,
	emailSvc email.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		txr:         txr,
		emailSvc:    emailSvc,
		logger:      logger,
		now:         time.Now,
	}
}

// Create books a PENDING appointment for the patient after validating the
// doctor, the patient, the time, and double-booking conflicts. The conflict
// read and the insert run on one transaction.
func (s *Service) Create(ctx context.Context, patientID int64, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	var apt *model.Appointment
	var patient *model.User

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		var err error
		apt, patient, err = s.createTx(ctx, patientID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, patient.Email, apt, s.emailSvc.SendBookingCreated)
	s.logger.Info("appointment created",
		"appointment_id", apt.ID, "doctor_id", apt.DoctorID, "patient_id", patientID)
	return apt, nil
}

// createTx holds the booking logic shared by Create and
// CreateWithPatientInfo; it must run inside a transaction.
func (s *Service) createTx(ctx context.Context, patientID int64, req *model.CreateAppointmentRequest) (*model.Appointment, *model.User, error) {
	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, nil, err
	}
	if !doctor.IsActive {
		return nil, nil, apperrors.Validation("doctor is not active")
	}

	patient, err := s.userRepo.Get(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}

	if !req.AppointmentDatetime.After(s.now()) {
		return nil, nil, apperrors.Validation("appointment time must be in the future")
	}

	duration := model.DefaultAppointmentMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if duration < model.MinAppointmentMinutes {
		return nil, nil, apperrors.Validation(fmt.Sprintf("appointment must last at least %d minutes", model.MinAppointmentMinutes))
	}

	end := req.AppointmentDatetime.Add(time.Duration(duration) * time.Minute)
	conflicts, err := s.repo.FindConflicting(ctx, req.DoctorID, req.AppointmentDatetime, end)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return nil, nil, apperrors.Conflict("this time slot is not available, please choose another time")
	}

	apt := &model.Appointment{
		DoctorID:            req.DoctorID,
		PatientID:           patientID,
		AppointmentDatetime: req.AppointmentDatetime,
		DurationMinutes:     duration,
		Status:              model.AppointmentStatusPending,
		Notes:               req.Notes,
		DoctorName:          doctor.DoctorName,
		SpecialtyName:       doctor.SpecialtyName,
		PatientName:         patient.FullName(),
	}
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, nil, err
	}

	if err := s.emit(ctx, model.EventAppointmentCreated, apt); err != nil {
		return nil, nil, err
	}
	return apt, patient, nil
}

// CreateWithPatientInfo books an appointment and attaches an immutable
// patient snapshot, generating the next queue number when none is supplied.
func (s *Service) CreateWithPatientInfo(ctx context.Context, patientID int64, req *model.CreateAppointmentWithPatientInfoRequest) (*model.BookingResult, error) {
	var result *model.BookingResult
	var patient *model.User

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		apt, booker, err := s.createTx(ctx, patientID, &req.CreateAppointmentRequest)
		if err != nil {
			return err
		}
		patient = booker

		queueNumber := strings.TrimSpace(req.QueueNumber)
		if queueNumber == "" {
			queueNumber, err = s.nextQueueNumber(ctx)
			if err != nil {
				return err
			}
		}

		var dob *time.Time
		if req.PatientDateOfBirth != "" {
			parsed, err := time.Parse("2006-01-02", req.PatientDateOfBirth)
			if err != nil {
				return apperrors.Validation("patient date of birth must use YYYY-MM-DD")
			}
			dob = &parsed
		}

		bookingType := req.BookingType
		if bookingType == "" {
			bookingType = "manual"
		}

		info := &model.PatientBookingInfo{
			AppointmentID:      apt.ID,
			PatientPrefix:      req.PatientPrefix,
			PatientFirstName:   req.PatientFirstName,
			PatientLastName:    req.PatientLastName,
			PatientGender:      req.PatientGender,
			PatientDateOfBirth: dob,
			PatientNationality: req.PatientNationality,
			PatientCitizenID:   req.PatientCitizenID,
			PatientPhone:       req.PatientPhone,
			PatientEmail:       req.PatientEmail,
			Symptoms:           req.Symptoms,
			BookingType:        bookingType,
			QueueNumber:        queueNumber,
		}
		if err := s.bookingRepo.Create(ctx, info); err != nil {
			return err
		}

		result = &model.BookingResult{Appointment: apt, PatientInfo: info}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, patient.Email, result.Appointment, s.emailSvc.SendBookingCreated)
	s.logger.Info("appointment created with patient info",
		"appointment_id", result.Appointment.ID,
		"patient_info_id", result.PatientInfo.ID,
		"queue_number", result.PatientInfo.QueueNumber)
	return result, nil
}

// nextQueueNumber reads the greatest stored queue number, parses it as a
// decimal (unparseable or absent reads as 0), increments and zero-pads to
// three digits. Values past "999" keep growing without truncation.
func (s *Service) nextQueueNumber(ctx context.Context) (string, error) {
	latest, err := s.bookingRepo.MaxQueueNumber(ctx)
	if err != nil {
		return "", err
	}

	n, err := strconv.Atoi(latest)
	if err != nil {
		if latest != "" {
			s.logger.Warn("invalid queue number, restarting from 001", "queue_number", latest)
		}
		n = 0
	}
	return fmt.Sprintf("%03d", n+1), nil
}

// Confirm transitions a PENDING appointment to CONFIRMED; only the owning
// doctor may confirm.
func (s *Service) Confirm(ctx context.Context, appointmentID, doctorID int64) (*model.Appointment, error) {
	var apt *model.Appointment
	var patient *model.User

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.Get(ctx, appointmentID)
		if err != nil {
			return err
		}

		if a.DoctorID != doctorID {
			return apperrors.Authorization("you can only confirm your own appointments")
		}
		if a.Status != model.AppointmentStatusPending {
			return apperrors.Validation("only pending appointments can be confirmed")
		}

		if err := s.repo.UpdateStatus(ctx, a.ID, model.AppointmentStatusConfirmed); err != nil {
			return err
		}
		a.Status = model.AppointmentStatusConfirmed
		apt = a

		patient, err = s.userRepo.Get(ctx, a.PatientID)
		if err != nil {
			return err
		}
		return s.emit(ctx, model.EventAppointmentConfirmed, a)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, patient.Email, apt, s.emailSvc.SendBookingConfirmed)
	s.logger.Info("appointment confirmed", "appointment_id", appointmentID, "doctor_id", doctorID)
	return apt, nil
}

// Cancel transitions a PENDING or CONFIRMED appointment to CANCELLED; only
// the booking patient or the user behind the assigned doctor may cancel.
func (s *Service) Cancel(ctx context.Context, appointmentID, userID int64) (*model.Appointment, error) {
	var apt *model.Appointment
	var patient *model.User

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.Get(ctx, appointmentID)
		if err != nil {
			return err
		}

		doctor, err := s.doctorRepo.Get(ctx, a.DoctorID)
		if err != nil {
			return err
		}
		if a.PatientID != userID && doctor.UserID != userID {
			return apperrors.Authorization("not authorized to cancel this appointment")
		}

		if a.Status != model.AppointmentStatusPending && a.Status != model.AppointmentStatusConfirmed {
			return apperrors.Validation(fmt.Sprintf("cannot cancel appointment with status: %s", a.Status))
		}

		if err := s.repo.UpdateStatus(ctx, a.ID, model.AppointmentStatusCancelled); err != nil {
			return err
		}
		a.Status = model.AppointmentStatusCancelled
		apt = a

		patient, err = s.userRepo.Get(ctx, a.PatientID)
		if err != nil {
			return err
		}
		return s.emit(ctx, model.EventAppointmentCancelled, a)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, patient.Email, apt, s.emailSvc.SendBookingCancelled)
	s.logger.Info("appointment cancelled", "appointment_id", appointmentID, "user_id", userID)
	return apt, nil
}

// ListByDoctorAndDate returns the doctor's non-cancelled appointments on the
// calendar date, ordered ascending.
func (s *Service) ListByDoctorAndDate(ctx context.Context, doctorID int64, date string) ([]*model.Appointment, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, apperrors.Validation("invalid date format, please use YYYY-MM-DD")
	}

	start := day
	end := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return s.repo.ListByDoctorBetween(ctx, doctorID, start, end)
}

// BookedSlots projects the doctor's appointments on a date into occupied
// slots for the booking UI.
func (s *Service) BookedSlots(ctx context.Context, doctorID int64, date string) ([]model.BookedSlot, error) {
	appointments, err := s.ListByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]model.BookedSlot, 0, len(appointments))
	for _, a := range appointments {
		slots = append(slots, model.BookedSlot{
			AppointmentID:   a.ID,
			StartTime:       a.AppointmentDatetime,
			DurationMinutes: a.DurationMinutes,
			Status:          a.Status,
		})
	}
	return slots, nil
}

// ListForPatient returns the patient's appointments, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListForDoctor returns all of the doctor's appointments, oldest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]*model.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// Get returns one appointment by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// GetBookingInfo returns the patient snapshot attached to an appointment.
func (s *Service) GetBookingInfo(ctx context.Context, appointmentID int64) (*model.PatientBookingInfo, error) {
	return s.bookingRepo.GetByAppointment(ctx, appointmentID)
}

func (s *Service) emit(ctx context.Context, eventType string, apt *model.Appointment) error {
	event, err := model.NewOutboxEvent(eventType, apt)
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, event)
}

func (s *Service) notify(ctx context.Context, to string, apt *model.Appointment, send func(context.Context, string, *model.Appointment) error) {
	if to == "" {
		return
	}
	if err := send(ctx, to, apt); err != nil {
		s.logger.Error(err, "failed to send booking notification", "appointment_id", apt.ID)
	}
}
