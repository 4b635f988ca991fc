package auth

import (
	"context"
	"strings"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	"github.com/doctora/clinic-api/pkg/auth"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
	"github.com/doctora/clinic-api/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	jwt      auth.JWTService
	logger   *logger.Logger
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService, logger *logger.Logger) *Service {
	return &Service{userRepo: userRepo, hasher: hasher, jwt: jwt, logger: logger}
}

// Register creates a patient account. Doctor and admin accounts are
// provisioned by admins, never through self-registration.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RolePatient,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "email", u.Email)
	return &model.TokenResponse{AccessToken: token, User: u}, nil
}

// Login verifies credentials and issues a token. A missing account and a
// bad password produce the same error so callers cannot probe for emails.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Authorization("invalid email or password")
		}
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Authorization("invalid email or password")
	}

	token, err := s.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return &model.TokenResponse{AccessToken: token, User: u}, nil
}
