package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Supported hasher kinds (config key auth.hasher).
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// bcryptMaxPasswordBytes is the longest input bcrypt accepts.
const bcryptMaxPasswordBytes = 72

// ErrPasswordTooLong is returned by hashers with an input length limit.
var ErrPasswordTooLong = errors.New("password is too long")

// PasswordHasher turns plaintext passwords into storable digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// NewPasswordHasher returns the hasher registered under kind; empty means sha256.
func NewPasswordHasher(kind string) (PasswordHasher, error) {
	switch kind {
	case "", HasherSHA256:
		return sha256Hasher{}, nil
	case HasherBcrypt:
		return bcryptHasher{cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}

// sha256Hasher produces unsalted hex SHA-256 digests. The same password always
// yields the same digest, which keeps stored hashes comparable across
// deployments but offers no protection against precomputed tables.
type sha256Hasher struct{}

func (sha256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h sha256Hasher) Verify(password, digest string) bool {
	got, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}

// bcryptHasher salts every digest; bcrypt handles salt generation.
type bcryptHasher struct {
	cost int
}

func (h bcryptHasher) Hash(password string) (string, error) {
	if len(password) > bcryptMaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (bcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
