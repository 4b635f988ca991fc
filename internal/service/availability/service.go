package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

// Working hours bounds for availability windows, minutes since midnight.
const (
	openingMinutes = 6 * 60  // 06:00
	closingMinutes = 22 * 60 // 22:00
)

type Service struct {
	repo       repository.AvailabilityRepository
	doctorRepo repository.DoctorRepository
	outboxRepo repository.OutboxRepository
	txr        repository.TxRunner
	logger     *logger.Logger
}

func NewService(
	repo repository.AvailabilityRepository,
	doctorRepo repository.DoctorRepository,
	outboxRepo repository.OutboxRepository,
	txr repository.TxRunner,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		doctorRepo: doctorRepo,
		outboxRepo: outboxRepo,
		txr:        txr,
		logger:     logger,
	}
}

// Add validates and stores a new weekly recurring window for the doctor.
func (s *Service) Add(ctx context.Context, doctorID int64, req *model.AddAvailabilityRequest) (*model.Availability, error) {
	var created *model.Availability

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
			return err
		}

		start, end, err := validateWindow(req.DayOfWeek, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}

		if err := s.checkOverlap(ctx, doctorID, req.DayOfWeek, start, end, 0); err != nil {
			return err
		}

		a := &model.Availability{
			DoctorID:  doctorID,
			DayOfWeek: req.DayOfWeek,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			IsActive:  true,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		created = a

		return s.emitChanged(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability added",
		"doctor_id", doctorID, "day", created.DayOfWeek, "window", created.TimeRange())
	return created, nil
}

// Update edits an existing window; the overlap check excludes the record
// being edited.
func (s *Service) Update(ctx context.Context, doctorID, availabilityID int64, req *model.AddAvailabilityRequest) (*model.Availability, error) {
	var updated *model.Availability

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
			return err
		}

		a, err := s.repo.GetForDoctor(ctx, availabilityID, doctorID)
		if err != nil {
			return err
		}

		start, end, err := validateWindow(req.DayOfWeek, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}

		if err := s.checkOverlap(ctx, doctorID, req.DayOfWeek, start, end, availabilityID); err != nil {
			return err
		}

		a.DayOfWeek = req.DayOfWeek
		a.StartTime = req.StartTime
		a.EndTime = req.EndTime
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		updated = a

		return s.emitChanged(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability updated",
		"doctor_id", doctorID, "day", updated.DayOfWeek, "window", updated.TimeRange())
	return updated, nil
}

// Delete removes a window owned by the doctor.
func (s *Service) Delete(ctx context.Context, doctorID, availabilityID int64) error {
	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
			return err
		}

		a, err := s.repo.GetForDoctor(ctx, availabilityID, doctorID)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, a.ID); err != nil {
			return err
		}
		return s.emitChanged(ctx, a)
	})
	if err != nil {
		return err
	}

	s.logger.Info("availability deleted", "doctor_id", doctorID, "availability_id", availabilityID)
	return nil
}

// ListForDoctor returns the doctor's active windows ordered by day then
// start time.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]*model.Availability, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// ListForDoctorByDay returns the doctor's active windows on one weekday.
func (s *Service) ListForDoctorByDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*model.Availability, error) {
	return s.repo.ListByDoctorAndDay(ctx, doctorID, dayOfWeek)
}

// ListForDoctorOnDate maps the calendar date to its weekday and returns the
// windows on it. An unparseable date yields an empty list, not an error.
func (s *Service) ListForDoctorOnDate(ctx context.Context, doctorID int64, date string) ([]*model.Availability, error) {
	day, err := weekdayOf(date)
	if err != nil {
		return nil, nil
	}
	return s.repo.ListByDoctorAndDay(ctx, doctorID, day)
}

// HasAvailabilityOnDate reports whether the doctor has any active window on
// the weekday of the given ISO date. Fails open to false: any parse or
// lookup error reads as "no availability".
func (s *Service) HasAvailabilityOnDate(ctx context.Context, doctorID int64, date string) bool {
	day, err := weekdayOf(date)
	if err != nil {
		s.logger.Warn("availability date check failed", "doctor_id", doctorID, "date", date)
		return false
	}

	windows, err := s.repo.ListByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		s.logger.Warn("availability lookup failed", "doctor_id", doctorID, "date", date)
		return false
	}
	return len(windows) > 0
}

func (s *Service) checkOverlap(ctx context.Context, doctorID int64, dayOfWeek, start, end int, excludeID int64) error {
	windows, err := s.repo.ListByDoctorAndDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return err
	}

	for _, w := range windows {
		if w.ID == excludeID {
			continue
		}
		ws, err := model.ClockMinutes(w.StartTime)
		if err != nil {
			return err
		}
		we, err := model.ClockMinutes(w.EndTime)
		if err != nil {
			return err
		}
		if windowsOverlap(ws, we, start, end) {
			return apperrors.Conflict(fmt.Sprintf("time slot overlaps with existing availability: %s", w.TimeRange()))
		}
	}
	return nil
}

// windowsOverlap applies the half-open interval rule to an existing window
// [s1,e1) and a candidate [s2,e2): boundary-touching intervals where one
// ends exactly when the other starts do not overlap.
func windowsOverlap(s1, e1, s2, e2 int) bool {
	return (s1 <= s2 && s2 < e1) ||
		(s1 < e2 && e2 <= e1) ||
		(s2 <= s1 && e2 >= e1)
}

func validateWindow(dayOfWeek int, startTime, endTime string) (int, int, error) {
	if dayOfWeek < model.DayOfWeekMin || dayOfWeek > model.DayOfWeekMax {
		return 0, 0, apperrors.Validation("day of week must be between 1-7")
	}

	start, err := model.ClockMinutes(startTime)
	if err != nil {
		return 0, 0, apperrors.Validation("start time must be in HH:MM format")
	}
	end, err := model.ClockMinutes(endTime)
	if err != nil {
		return 0, 0, apperrors.Validation("end time must be in HH:MM format")
	}

	if start >= end {
		return 0, 0, apperrors.Validation("start time must be before end time")
	}
	if start < openingMinutes || end > closingMinutes {
		return 0, 0, apperrors.Validation("working hours must be between 06:00 - 22:00")
	}
	return start, end, nil
}

func weekdayOf(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("empty date")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return 0, err
	}
	return model.ISOWeekday(t), nil
}

func (s *Service) emitChanged(ctx context.Context, a *model.Availability) error {
	event, err := model.NewOutboxEvent(model.EventAvailabilityChanged, a)
	if err != nil {
		return err
	}
	return s.outboxRepo.Create(ctx, event)
}
