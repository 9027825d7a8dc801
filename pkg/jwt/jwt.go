package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// defaultSecret must match the config-layer default so tokens signed
// through either path validate without JWT_SECRET set in dev.
const defaultSecret = "default-jwt-secret-do-not-use-in-production"

const defaultExpiry = 24 * time.Hour

// JWTClaims carries the account identity inside a signed token.
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func sign(userID uint, email, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs a token with the environment secret and default expiry.
func GenerateToken(userID uint, email string) (string, error) {
	return sign(userID, email, getSecretKey(), defaultExpiry)
}

// ValidateToken parses and verifies a token signed with the environment secret.
func ValidateToken(tokenString string) (*JWTClaims, error) {
	return parse(tokenString, getSecretKey())
}

func getSecretKey() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return defaultSecret
}
