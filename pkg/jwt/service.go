package jwt

import (
	"time"
)

// Service signs and validates tokens with an injected secret and expiry,
// so handlers do not depend on process environment at request time.
type Service struct {
	secretKey string
	expiry    time.Duration
}

// NewService creates a token service. Empty secret or zero expiry fall
// back to the package defaults.
func NewService(secretKey string, expiry time.Duration) *Service {
	if secretKey == "" {
		secretKey = getSecretKey()
	}
	if expiry == 0 {
		expiry = defaultExpiry
	}

	return &Service{
		secretKey: secretKey,
		expiry:    expiry,
	}
}

// GenerateToken signs a token for the given account.
func (s *Service) GenerateToken(userID uint, email string) (string, error) {
	return sign(userID, email, s.secretKey, s.expiry)
}

// ValidateToken parses and verifies a token issued by this service.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	return parse(tokenString, s.secretKey)
}
