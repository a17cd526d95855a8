package backend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceClaims identifies the dashboard to the sales backend
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// TokenSigner mints short-lived HS256 service tokens
type TokenSigner struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenSigner creates a signer; it returns nil when signingKey is empty,
// which disables the Authorization header.
func NewTokenSigner(signingKey, issuer string, ttl time.Duration) *TokenSigner {
	if signingKey == "" {
		return nil
	}
	return &TokenSigner{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Sign creates a token valid for the configured lifetime
func (s *TokenSigner) Sign() (string, error) {
	if s == nil {
		return "", errors.New("token signer not configured")
	}

	now := s.now()
	claims := ServiceClaims{
		Service: s.issuer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}
