package specialty

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

const (
	cacheKeyList       = "specialties:list"
	cacheKeyWithCounts = "specialties:with_counts"

	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Service caches specialty listings in-process. The catalogue changes
// rarely and is read on every doctor search, so a short TTL plus
// invalidation on writes is enough.
type Service struct {
	repo       repository.SpecialtyRepository
	doctorRepo repository.DoctorRepository
	cache      *gocache.Cache
	logger     *logger.Logger
}

func NewService(repo repository.SpecialtyRepository, doctorRepo repository.DoctorRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		doctorRepo: doctorRepo,
		cache:      gocache.New(cacheTTL, cacheCleanup),
		logger:     logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Specialty, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Specialty, error) {
	if cached, ok := s.cache.Get(cacheKeyList); ok {
		return cached.([]*model.Specialty), nil
	}

	specialties, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyList, specialties, gocache.DefaultExpiration)
	return specialties, nil
}

func (s *Service) ListWithDoctorCount(ctx context.Context) ([]*model.SpecialtyWithDoctorCount, error) {
	if cached, ok := s.cache.Get(cacheKeyWithCounts); ok {
		return cached.([]*model.SpecialtyWithDoctorCount), nil
	}

	specialties, err := s.repo.ListWithDoctorCount(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyWithCounts, specialties, gocache.DefaultExpiration)
	return specialties, nil
}

func (s *Service) Search(ctx context.Context, name string) ([]*model.Specialty, error) {
	return s.repo.SearchByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, req *model.CreateSpecialtyRequest) (*model.Specialty, error) {
	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.AlreadyExists("specialty already exists: " + req.Name)
	}

	sp := &model.Specialty{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, err
	}

	s.invalidate()
	s.logger.Info("specialty created", "specialty_id", sp.ID, "name", sp.Name)
	return sp, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.CreateSpecialtyRequest) (*model.Specialty, error) {
	sp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != sp.Name {
		exists, err := s.repo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.AlreadyExists("specialty already exists: " + req.Name)
		}
	}

	sp.Name = req.Name
	sp.Description = req.Description
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}

	s.invalidate()
	s.logger.Info("specialty updated", "specialty_id", sp.ID)
	return sp, nil
}

// Delete refuses to remove a specialty that still has active doctors.
func (s *Service) Delete(ctx context.Context, id int64) error {
	sp, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.doctorRepo.CountActiveBySpecialty(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf("cannot delete specialty %q: %d active doctors assigned", sp.Name, count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate()
	s.logger.Info("specialty deleted", "specialty_id", id)
	return nil
}

func (s *Service) invalidate() {
	s.cache.Delete(cacheKeyList)
	s.cache.Delete(cacheKeyWithCounts)
}
