package user

import (
	"context"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	"github.com/doctora/clinic-api/pkg/logger"
)

type Service struct {
	repo   repository.UserRepository
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, p model.Pagination) ([]*model.User, int, error) {
	p.Normalize()
	return s.repo.List(ctx, p)
}

// UpdateProfile applies the fields the caller actually sent.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated", "user_id", u.ID)
	return u, nil
}
