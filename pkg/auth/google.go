package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/inkwellhq/inkwell/pkg/logger"
	"github.com/inkwellhq/inkwell/pkg/sanitizer"
)

// GoogleConfig holds the configuration for Google OAuth.
type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_CALLBACK_URL,required"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
	StateTTL     time.Duration `env:"GOOGLE_OAUTH_STATE_TTL" envDefault:"10m"`
}

// Profile is the normalized identity returned by the provider after a
// successful authorization-code exchange.
type Profile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// GoogleService authenticates accounts against Google's OAuth endpoints and
// maps provider profiles onto stored accounts.
type GoogleService struct {
	storage      Storage
	states       StateStore
	oauth2Config *oauth2.Config
	logger       *slog.Logger
	stateTTL     time.Duration
}

type GoogleOption func(*GoogleService)

// WithGoogleLogger sets a custom logger for the service.
func WithGoogleLogger(logger *slog.Logger) GoogleOption {
	return func(s *GoogleService) {
		s.logger = logger
	}
}

// NewGoogleService creates a new Google OAuth service.
func NewGoogleService(storage Storage, states StateStore, cfg GoogleConfig, opts ...GoogleOption) *GoogleService {
	s := &GoogleService{
		storage: storage,
		states:  states,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL: cfg.StateTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AuthURL generates an OAuth authorization URL with CSRF protection via a
// single-use state parameter.
func (s *GoogleService) AuthURL(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := s.states.Store(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return s.oauth2Config.AuthCodeURL(state), nil
}

// Auth handles the OAuth callback: it consumes the state token, exchanges
// the authorization code, fetches the provider profile, and resolves it to
// an account via Callback.
func (s *GoogleService) Auth(ctx context.Context, code, state string) (*Account, error) {
	// Consume state token (one-time use prevents replay attacks)
	if err := s.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to validate state: %w", err)
	}

	tok, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, ErrInvalidCode
	}

	profile, err := s.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}

	return s.Callback(ctx, profile)
}

// Callback maps a provider profile onto an account. Branches are tried in
// this exact order as a deliberate linking policy:
//
//  1. An account already linked to this provider id wins - repeat logins
//     are idempotent.
//  2. An account with the same email adopts the federated identity, so a
//     local signup does not end up with a second, disconnected account.
//     This trusts the provider's email verification.
//  3. Otherwise a brand-new federated account is created, with no password.
func (s *GoogleService) Callback(ctx context.Context, profile Profile) (*Account, error) {
	if profile.ProviderUserID == "" || profile.Email == "" {
		return nil, ErrIncompleteProfile
	}

	profile.Email = sanitizer.NormalizeEmail(profile.Email)

	acct, err := s.storage.ByGoogleID(ctx, profile.ProviderUserID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check provider link: %w", err)
	}

	acct, err = s.storage.ByEmail(ctx, profile.Email)
	if err == nil {
		return s.link(ctx, acct, profile)
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	return s.create(ctx, profile)
}

// link attaches the federated identity to an existing local account.
func (s *GoogleService) link(ctx context.Context, acct *Account, profile Profile) (*Account, error) {
	acct.GoogleID = profile.ProviderUserID
	acct.AuthProvider = ProviderGoogle
	if acct.Avatar == "" {
		acct.Avatar = profile.AvatarURL
	}
	acct.UpdatedAt = time.Now()
	if err := acct.validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Update(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to link google account: %w", err)
	}

	s.logger.Info("linked google identity to existing account",
		logger.AccountID(acct.ID.String()),
		logger.Provider(ProviderGoogle),
		logger.Component("oauth"),
	)

	return acct, nil
}

func (s *GoogleService) create(ctx context.Context, profile Profile) (*Account, error) {
	now := time.Now()
	acct := &Account{
		ID:           uuid.New(),
		Name:         profile.Name,
		Email:        profile.Email,
		GoogleID:     profile.ProviderUserID,
		AuthProvider: ProviderGoogle,
		Avatar:       profile.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := acct.validate(); err != nil {
		return nil, err
	}

	if err := s.storage.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acct, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *GoogleService) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, err
	}

	return Profile{
		ProviderUserID: info.ID,
		Email:          info.Email,
		EmailVerified:  info.VerifiedEmail,
		Name:           info.Name,
		AvatarURL:      info.Picture,
	}, nil
}
