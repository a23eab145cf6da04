package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// CartMerger folds a guest session's cart into the customer's cart when
// they authenticate
type CartMerger interface {
	MergeGuestCart(ctx context.Context, customerID uuid.UUID, guestSessionID string) error
}

// AuthService handles registration, login, and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	cartMerger CartMerger
	audit      shared.AuditRecorder
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	cartMerger CartMerger,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		cartMerger: cartMerger,
		audit:      audit,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Register creates a customer account and signs it in. A non-empty guest
// session id carries the visitor's cart over to the new account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, guestSessionID string) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := user.UpdateProfile(req.Name, req.Phone); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.mergeGuestCart(ctx, user, guestSessionID)
	s.publishEvents(ctx, user)
	s.audit.Record(ctx, "user.registered", "customer:"+user.ID.String(), "user:"+user.ID.String(),
		map[string]interface{}{"email": user.Email})

	s.logger.Info("customer registered",
		zap.String("user_id", user.ID.String()))

	return s.issueTokens(user)
}

// Login authenticates an account and returns a token pair. Repeated
// failures lock the account; the caller cannot distinguish a wrong
// password from an unknown email.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, guestSessionID string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("login attempt for unknown email")
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.CanLogin() {
		s.logger.Warn("login attempt for blocked account",
			zap.String("user_id", user.ID.String()),
			zap.String("status", string(user.Status)))
		s.audit.Record(ctx, "user.login_blocked", "customer:"+user.ID.String(), "user:"+user.ID.String(),
			map[string]interface{}{"status": string(user.Status)})
		if user.Status == identity.UserStatusLocked {
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Try again later")
		}
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}

	if !user.VerifyPassword(req.Password) {
		user.RecordLoginFailure()
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("failed to record login failure", zap.Error(err))
		}
		if user.Status == identity.UserStatusLocked {
			s.logger.Warn("account locked after repeated failures",
				zap.String("user_id", user.ID.String()))
			s.audit.Record(ctx, "user.locked_out", "customer:"+user.ID.String(), "user:"+user.ID.String(),
				map[string]interface{}{"failed_attempts": user.FailedAttempts})
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed attempts. Account is locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	user.RecordLoginSuccess()
	user.AddDomainEvent(identity.NewUserLoggedInEvent(user, guestSessionID))
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("failed to record login", zap.Error(err))
	}

	s.mergeGuestCart(ctx, user, guestSessionID)
	s.publishEvents(ctx, user)
	s.audit.Record(ctx, "user.logged_in", "customer:"+user.ID.String(), "user:"+user.ID.String(), nil)

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new pair. The profile
// claims are reloaded so role or status changes take effect.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		return nil, err
	}
	if invalidated {
		return nil, shared.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !user.CanLogin() {
		return nil, shared.ErrUnauthorized
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Email, string(user.Role))
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	return &AuthResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// Already invalid; nothing to revoke
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		return err
	}

	s.audit.Record(ctx, "user.logged_out", "customer:"+claims.UserID, "user:"+claims.UserID, nil)
	return nil
}

func (s *AuthService) issueTokens(user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &AuthResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}

// mergeGuestCart is best-effort: a failed merge leaves the guest cart in
// place and never blocks authentication
func (s *AuthService) mergeGuestCart(ctx context.Context, user *identity.User, guestSessionID string) {
	if s.cartMerger == nil || guestSessionID == "" {
		return
	}
	if err := s.cartMerger.MergeGuestCart(ctx, user.ID, guestSessionID); err != nil {
		s.logger.Warn("failed to merge guest cart",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

func (s *AuthService) publishEvents(ctx context.Context, user *identity.User) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, user.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish identity events", zap.Error(err))
	}
	user.ClearDomainEvents()
}
