package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell/pkg/jwt"
)

// TokenIssuerConfig holds bearer credential settings.
type TokenIssuerConfig struct {
	SigningKey string        `env:"JWT_SECRET,required"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"inkwell"`
}

// TokenIssuer mints and verifies the signed, time-bound bearer credentials
// attached to authenticated requests. Tokens carry no secret material
// beyond the signature; validity is signature plus expiry only.
type TokenIssuer struct {
	jwt    *jwt.Service
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a token issuer from configuration.
func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	svc, err := jwt.NewFromString(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{jwt: svc, ttl: cfg.TTL, issuer: cfg.Issuer}, nil
}

// Issue mints a bearer credential bound to the account id.
func (i *TokenIssuer) Issue(acct *Account) (string, error) {
	now := time.Now()
	return i.jwt.Generate(jwt.StandardClaims{
		Subject:   acct.ID.String(),
		Issuer:    i.issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	})
}

// Verify validates a bearer credential and returns the bound account id.
// All failure modes (malformed, bad signature, expired) collapse into the
// returned error; callers must not leak the distinction to clients.
func (i *TokenIssuer) Verify(tokenString string) (uuid.UUID, error) {
	var claims jwt.StandardClaims
	if err := i.jwt.Parse(tokenString, &claims); err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, jwt.ErrInvalidToken
	}
	return id, nil
}
