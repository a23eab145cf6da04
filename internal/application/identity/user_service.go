package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserService handles profile and administrative account operations
type UserService struct {
	userRepo identity.UserRepository
	audit    shared.AuditRecorder
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, audit shared.AuditRecorder, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    audit,
		logger:   logger,
	}
}

// GetProfile returns the caller's account
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile updates the caller's name and phone
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.UpdateProfile(req.Name, req.Phone); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword rotates the caller's password after verifying the old one
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.audit.Record(ctx, "user.password_changed", "customer:"+userID.String(), "user:"+userID.String(), nil)
	return nil
}

// List returns a page of accounts for the admin view
func (s *UserService) List(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	return s.userRepo.FindAll(ctx, filter)
}

// Disable blocks an account from authenticating
func (s *UserService) Disable(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.Disable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "user.disabled", "admin", "user:"+userID.String(), nil)
	return user, nil
}

// Enable restores a disabled account
func (s *UserService) Enable(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.Enable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "user.enabled", "admin", "user:"+userID.String(), nil)
	return user, nil
}
