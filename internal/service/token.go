package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL is the lifetime register and login ask for.
	AccessTokenTTL = 30 * time.Minute
	// DefaultTokenTTL applies when Issue is called without a lifetime.
	DefaultTokenTTL = 15 * time.Minute
)

var (
	ErrInvalidToken = errors.New("invalid token")
	errEmptySecret  = errors.New("token signing secret is empty")
)

// TokenManager issues and verifies HS256 bearer tokens whose subject is a username.
// Tokens are signed, not encrypted: any holder can read the subject.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &TokenManager{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue returns a signed token for username that expires ttl from now.
// A non-positive ttl falls back to DefaultTokenTTL.
func (m *TokenManager) Issue(username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	return token.SignedString(m.secret)
}

// Verify returns the token subject. Every failure, including expiry at or
// after the encoded instant, is reported as ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
