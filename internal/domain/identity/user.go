package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/backend/internal/domain/shared"
)

// UserRole represents the role of a user
type UserRole string

const (
	RoleCustomer UserRole = "customer" // Shops the storefront
	RoleAdmin    UserRole = "admin"    // Operates the back office
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusLocked   UserStatus = "locked"   // Locked after repeated failed logins
	UserStatusDisabled UserStatus = "disabled" // Manually disabled
)

// Password cost for bcrypt
const bcryptCost = 12

// Login lockout policy
const (
	maxFailedAttempts = 5
	lockoutDuration   = 15 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a storefront account, either a customer or an
// administrator. It is the aggregate root for identity operations.
type User struct {
	shared.BaseAggregateRoot
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string     `gorm:"type:varchar(100);not null"`
	Name           string     `gorm:"type:varchar(200)"`
	Phone          string     `gorm:"type:varchar(50)"`
	Role           UserRole   `gorm:"type:varchar(20);not null;default:'customer'"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active customer account
func NewUser(email, password, name string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		Name:              strings.TrimSpace(name),
		Role:              RoleCustomer,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// NewAdmin creates a new administrator account
func NewAdmin(email, password, name string) (*User, error) {
	user, err := NewUser(email, password, name)
	if err != nil {
		return nil, err
	}
	user.Role = RoleAdmin
	return user, nil
}

// IsAdmin returns true for back-office accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ChangePassword changes the user's password after verifying the old one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// CanLogin reports whether the account may authenticate right now
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDisabled {
		return false
	}
	if u.Status == UserStatusLocked {
		return u.LockedUntil != nil && time.Now().After(*u.LockedUntil)
	}
	return true
}

// RecordLoginSuccess resets the failure counter and stamps the login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
	}
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure counts a failed attempt, locking the account once the
// threshold is reached
func (u *User) RecordLoginFailure() {
	u.FailedAttempts++
	if u.FailedAttempts >= maxFailedAttempts {
		until := time.Now().Add(lockoutDuration)
		u.LockedUntil = &until
		u.Status = UserStatusLocked
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// UpdateProfile updates the user's display name and phone
func (u *User) UpdateProfile(name, phone string) error {
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.Name = strings.TrimSpace(name)
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Disable blocks the account from logging in
func (u *User) Disable() error {
	if u.Status == UserStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "User is already disabled")
	}

	u.Status = UserStatusDisabled
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Enable re-activates a disabled or locked account
func (u *User) Enable() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// hashPassword hashes a password with bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// validateEmail validates an email address
func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 255 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

// validatePassword validates password strength
func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
