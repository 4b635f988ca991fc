package doctor

import (
	"context"
	"math/rand"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	"github.com/doctora/clinic-api/internal/service/appointment"
	"github.com/doctora/clinic-api/internal/service/availability"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

// DefaultConsultationFee applies when an admin creates a doctor without one.
const DefaultConsultationFee = 500.00

type Service struct {
	repo            repository.DoctorRepository
	specialtyRepo   repository.SpecialtyRepository
	userRepo        repository.UserRepository
	availabilitySvc *availability.Service
	appointmentSvc  *appointment.Service
	txr             repository.TxRunner
	logger          *logger.Logger

	// randIntn is the injected random source for selection tie-breaks;
	// replaced in tests.
	randIntn func(n int) int
}

func NewService(
	repo repository.DoctorRepository,
	specialtyRepo repository.SpecialtyRepository,
	userRepo repository.UserRepository,
	availabilitySvc *availability.Service,
	appointmentSvc *appointment.Service,
	txr repository.TxRunner,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:            repo,
		specialtyRepo:   specialtyRepo,
		userRepo:        userRepo,
		availabilitySvc: availabilitySvc,
		appointmentSvc:  appointmentSvc,
		txr:             txr,
		logger:          logger,
		randIntn:        rand.Intn,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

// GetByUserID resolves the doctor profile behind an authenticated user.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, filters model.DoctorFilters) ([]*model.Doctor, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) ListBySpecialtyID(ctx context.Context, specialtyID int64, p model.Pagination) ([]*model.Doctor, int, error) {
	p.Normalize()
	return s.repo.ListBySpecialtyID(ctx, specialtyID, p)
}

func (s *Service) ListBySpecialtyName(ctx context.Context, name string) ([]*model.Doctor, error) {
	return s.repo.ListBySpecialtyName(ctx, name)
}

// Create promotes a user to doctor with a fresh profile. Any role may be
// promoted; the user record is switched to the DOCTOR role as part of the
// same transaction.
func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	var created *model.Doctor

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.Get(ctx, req.UserID)
		if err != nil {
			return err
		}

		if _, err := s.repo.GetByUserID(ctx, req.UserID); err == nil {
			return apperrors.AlreadyExists("doctor profile already exists for this user")
		} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}

		if _, err := s.specialtyRepo.Get(ctx, req.SpecialtyID); err != nil {
			return err
		}

		exists, err := s.repo.ExistsByLicense(ctx, req.LicenseNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("license number already exists: " + req.LicenseNumber)
		}

		if user.Role != model.RoleDoctor {
			s.logger.Info("promoting user to doctor role", "user_id", user.ID, "from", user.Role)
			user.Role = model.RoleDoctor
			if err := s.userRepo.Update(ctx, user); err != nil {
				return err
			}
		}

		fee := DefaultConsultationFee
		if req.ConsultationFee != nil {
			fee = *req.ConsultationFee
		}

		d := &model.Doctor{
			UserID:          req.UserID,
			SpecialtyID:     req.SpecialtyID,
			LicenseNumber:   req.LicenseNumber,
			Bio:             req.Bio,
			ExperienceYears: req.ExperienceYears,
			ConsultationFee: fee,
			RoomNumber:      req.RoomNumber,
			IsActive:        true,
		}
		if err := s.repo.Create(ctx, d); err != nil {
			return err
		}

		created, err = s.repo.Get(ctx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("doctor created", "doctor_id", created.ID, "license", created.LicenseNumber)
	return created, nil
}

// Update is the admin edit: every profile field may change, license
// uniqueness is rechecked when it does.
func (s *Service) Update(ctx context.Context, doctorID int64, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	var updated *model.Doctor

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		d, err := s.repo.Get(ctx, doctorID)
		if err != nil {
			return err
		}

		if req.SpecialtyID != nil {
			if _, err := s.specialtyRepo.Get(ctx, *req.SpecialtyID); err != nil {
				return err
			}
			d.SpecialtyID = *req.SpecialtyID
		}

		if req.LicenseNumber != nil && *req.LicenseNumber != d.LicenseNumber {
			exists, err := s.repo.ExistsByLicense(ctx, *req.LicenseNumber)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.AlreadyExists("license number already exists: " + *req.LicenseNumber)
			}
			d.LicenseNumber = *req.LicenseNumber
		}

		applyProfileFields(d, req.Bio, req.ExperienceYears, req.ConsultationFee, req.RoomNumber)

		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("doctor updated", "doctor_id", doctorID)
	return updated, nil
}

// UpdateProfile is the doctor's self-service edit, restricted to bio,
// experience, fee and room.
func (s *Service) UpdateProfile(ctx context.Context, doctorID int64, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error) {
	var updated *model.Doctor

	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		d, err := s.repo.Get(ctx, doctorID)
		if err != nil {
			return err
		}

		applyProfileFields(d, req.Bio, req.ExperienceYears, req.ConsultationFee, req.RoomNumber)

		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("doctor profile updated", "doctor_id", doctorID)
	return updated, nil
}

// Delete removes the doctor profile together with its user account.
func (s *Service) Delete(ctx context.Context, doctorID int64) error {
	err := s.txr.Transact(ctx, func(ctx context.Context) error {
		d, err := s.repo.Get(ctx, doctorID)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, d.ID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, d.UserID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("doctor deleted", "doctor_id", doctorID)
	return nil
}

// SetActive toggles whether the doctor accepts bookings.
func (s *Service) SetActive(ctx context.Context, doctorID int64, active bool) (*model.Doctor, error) {
	if err := s.repo.SetActive(ctx, doctorID, active); err != nil {
		return nil, err
	}
	s.logger.Info("doctor status updated", "doctor_id", doctorID, "active", active)
	return s.repo.Get(ctx, doctorID)
}

// Stats reports active doctor and occupied specialty counts.
func (s *Service) Stats(ctx context.Context) (*model.DoctorStats, error) {
	doctors, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	specialties, err := s.repo.CountSpecialtiesWithActiveDoctors(ctx)
	if err != nil {
		return nil, err
	}
	return &model.DoctorStats{TotalDoctors: doctors, TotalSpecialties: specialties}, nil
}

// SmartSelect picks the least-busy active doctor for a specialty. With no
// date it picks uniformly at random. With a date it first drops doctors
// without an availability window on it, then selects among those with the
// fewest PENDING/CONFIRMED appointments that day, breaking ties at random.
// A failed queue lookup counts as zero rather than aborting the selection.
func (s *Service) SmartSelect(ctx context.Context, specialtyName, date string) (*model.SmartSelection, error) {
	doctors, err := s.repo.ListBySpecialtyName(ctx, specialtyName)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return &model.SmartSelection{
			Message: "no doctors found for this specialty",
		}, nil
	}

	if date == "" {
		selected := doctors[s.randIntn(len(doctors))]
		s.logger.Info("smart select without date", "specialty", specialtyName, "doctor_id", selected.ID)
		return &model.SmartSelection{
			Message:      "doctor selected successfully",
			Doctor:       selected,
			TotalDoctors: len(doctors),
		}, nil
	}

	var candidates []*model.Doctor
	for _, d := range doctors {
		if s.availabilitySvc.HasAvailabilityOnDate(ctx, d.ID, date) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		zero := 0
		return &model.SmartSelection{
			Message:         "no doctors have available time slots on this date, please select another date",
			TotalDoctors:    len(doctors),
			AvailableOnDate: &zero,
		}, nil
	}

	queues := make([]int, len(candidates))
	minQueue := -1
	for i, d := range candidates {
		queues[i] = s.queueCount(ctx, d.ID, date)
		if minQueue < 0 || queues[i] < minQueue {
			minQueue = queues[i]
		}
	}

	var leastBusy []*model.Doctor
	for i, d := range candidates {
		if queues[i] == minQueue {
			leastBusy = append(leastBusy, d)
		}
	}

	selected := leastBusy[s.randIntn(len(leastBusy))]
	s.logger.Info("smart select",
		"specialty", specialtyName, "date", date,
		"doctor_id", selected.ID, "queue", minQueue, "tied", len(leastBusy))

	return &model.SmartSelection{
		Message:      "doctor selected successfully",
		Doctor:       selected,
		TotalDoctors: len(candidates),
	}, nil
}

// queueCount counts the doctor's PENDING/CONFIRMED appointments on a date,
// failing open to zero.
func (s *Service) queueCount(ctx context.Context, doctorID int64, date string) int {
	appointments, err := s.appointmentSvc.ListByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		s.logger.Warn("queue lookup failed, assuming empty", "doctor_id", doctorID, "date", date)
		return 0
	}

	count := 0
	for _, a := range appointments {
		if a.Status == model.AppointmentStatusPending || a.Status == model.AppointmentStatusConfirmed {
			count++
		}
	}
	return count
}

func applyProfileFields(d *model.Doctor, bio *string, years *int, fee *float64, room *string) {
	if bio != nil {
		d.Bio = *bio
	}
	if years != nil {
		d.ExperienceYears = *years
	}
	if fee != nil {
		d.ConsultationFee = *fee
	}
	if room != nil {
		d.RoomNumber = *room
	}
}
