package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwellhq/inkwell/pkg/logger"
	"github.com/inkwellhq/inkwell/pkg/sanitizer"
	"github.com/inkwellhq/inkwell/pkg/token"
	"github.com/inkwellhq/inkwell/pkg/validator"
)

// PasswordAuthenticator defines password-based authentication operations.
type PasswordAuthenticator interface {
	Register(ctx context.Context, name, email, password string) (*Account, error)
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	ForgotPassword(ctx context.Context, email string) (*PasswordResetRequest, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*Account, error)
}

// PasswordResetRequest contains a freshly issued reset token. Token is the
// raw value destined for the account holder's inbox; only its hash is stored.
type PasswordResetRequest struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// passwordService provides password-based authentication with configurable
// security requirements.
type passwordService struct {
	storage          Storage
	bcryptCost       int
	logger           *slog.Logger
	resetTokenTTL    time.Duration
	passwordStrength validator.PasswordStrengthConfig

	// Hooks for extending authentication behavior
	afterRegister func(ctx context.Context, acct *Account) error
	afterLogin    func(ctx context.Context, acct *Account) error
}

type PasswordOption func(*passwordService)

// WithPasswordLogger sets a custom logger for the service.
func WithPasswordLogger(logger *slog.Logger) PasswordOption {
	return func(s *passwordService) {
		s.logger = logger
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(s *passwordService) {
		s.bcryptCost = cost
	}
}

// WithResetTokenTTL sets the TTL for password reset tokens.
func WithResetTokenTTL(ttl time.Duration) PasswordOption {
	return func(s *passwordService) {
		s.resetTokenTTL = ttl
	}
}

// WithPasswordStrength sets custom password strength requirements.
func WithPasswordStrength(config validator.PasswordStrengthConfig) PasswordOption {
	return func(s *passwordService) {
		s.passwordStrength = config
	}
}

// WithAfterRegister sets a hook that runs after successful registration (async).
func WithAfterRegister(fn func(context.Context, *Account) error) PasswordOption {
	return func(s *passwordService) {
		s.afterRegister = fn
	}
}

// WithAfterLogin sets a hook that runs after successful login (async).
func WithAfterLogin(fn func(context.Context, *Account) error) PasswordOption {
	return func(s *passwordService) {
		s.afterLogin = fn
	}
}

// NewPasswordService creates a new password authentication service.
func NewPasswordService(storage Storage, opts ...PasswordOption) PasswordAuthenticator {
	s := &passwordService{
		storage:          storage,
		bcryptCost:       bcrypt.DefaultCost,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		resetTokenTTL:    10 * time.Minute,
		passwordStrength: validator.DefaultPasswordStrength(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates a new local account.
// Duplicate emails surface as ErrEmailTaken whether caught by the lookup or
// by the store's uniqueness constraint on a concurrent write.
func (s *passwordService) Register(ctx context.Context, name, email, password string) (*Account, error) {
	name = sanitizer.CollapseSpaces(name)
	email = sanitizer.NormalizeEmail(email)

	if err := validator.Apply(
		validator.Required("name", name),
		validator.MinLen("name", name, 2),
		validator.MaxLen("name", name, 50),
		validator.PersonName("name", name),
		validator.ValidEmail("email", email),
		validator.StrongPassword("password", password, s.passwordStrength),
	); err != nil {
		return nil, err
	}

	_, err := s.storage.ByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	acct := &Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AuthProvider: ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := acct.validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.runHook(s.afterRegister, acct, "afterRegister")

	return acct, nil
}

// Authenticate verifies email and password, returning the account if valid.
// Any failure yields the generic ErrInvalidCredentials to prevent account
// enumeration; only logs may distinguish the cause.
func (s *passwordService) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = sanitizer.NormalizeEmail(email)

	acct, err := s.storage.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.logger.Debug("login attempt for unknown email", logger.Component("password"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !verifyPassword(acct, password) {
		return nil, ErrInvalidCredentials
	}

	s.runHook(s.afterLogin, acct, "afterLogin")

	return acct, nil
}

// ForgotPassword issues a reset token for the given email. Each call
// replaces any previously outstanding token wholesale.
//
// An unknown email returns ErrAccountNotFound so operators can log it; the
// HTTP boundary must still report success to the caller.
func (s *passwordService) ForgotPassword(ctx context.Context, email string) (*PasswordResetRequest, error) {
	email = sanitizer.NormalizeEmail(email)

	acct, err := s.storage.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	pair, err := token.New(token.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	acct.ResetTokenHash = pair.Hash
	acct.ResetTokenExpiry = expiresAt
	acct.UpdatedAt = time.Now()
	if err := acct.validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Update(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return &PasswordResetRequest{
		Email:     email,
		Token:     pair.Plain,
		ExpiresAt: expiresAt,
	}, nil
}

// ResetPassword consumes a reset token and replaces the account password.
// The token is single-use: the stored hash and expiry are cleared in the
// same write that sets the new password, so a repeat call fails with
// ErrInvalidOrExpiredToken.
func (s *passwordService) ResetPassword(ctx context.Context, resetToken, newPassword string) (*Account, error) {
	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.passwordStrength),
	); err != nil {
		return nil, err
	}

	acct, err := s.storage.ByResetTokenHash(ctx, token.Hash(resetToken))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if time.Now().After(acct.ResetTokenExpiry) {
		return nil, ErrInvalidOrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct.PasswordHash = hash
	acct.clearResetToken()
	acct.UpdatedAt = time.Now()
	if err := acct.validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Update(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return acct, nil
}

// verifyPassword checks a plaintext against the stored hash. Accounts
// without a password hash (federated-only) fail closed rather than erroring.
func verifyPassword(acct *Account, password string) bool {
	if !acct.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) == nil
}

// runHook executes an optional hook asynchronously with panic recovery.
func (s *passwordService) runHook(fn func(context.Context, *Account) error, acct *Account, name string) {
	if fn == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("hook panicked",
					slog.String("hook", name),
					logger.AccountID(acct.ID.String()),
					slog.Any("panic", r),
					logger.Component("password"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx, acct); err != nil {
			s.logger.Error("hook failed",
				slog.String("hook", name),
				logger.AccountID(acct.ID.String()),
				logger.Error(err),
				logger.Component("password"),
			)
		}
	}()
}

// Compile-time interface assertion
var _ PasswordAuthenticator = (*passwordService)(nil)
