// Package authutil holds credential helpers shared by the sign-up and
// sign-in paths.
package authutil

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost balances hash strength against sign-in latency.
const BcryptCost = 12

// Handle constraints. Handles are the public identifier users type to find
// each other, so the alphabet stays URL- and mention-safe.
const (
	MinHandleLen   = 3
	MaxHandleLen   = 30
	MinPasswordLen = 8
)

var (
	ErrHandleTooShort  = errors.New("handle must be at least 3 characters")
	ErrHandleTooLong   = errors.New("handle must be at most 30 characters")
	ErrHandleBadChar   = errors.New("handle may contain only letters, digits, underscores, and dots")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooWeak
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateHandle checks a (already normalized) handle against the allowed
// shape.
func ValidateHandle(handle string) error {
	if len(handle) < MinHandleLen {
		return ErrHandleTooShort
	}
	if len(handle) > MaxHandleLen {
		return ErrHandleTooLong
	}
	for i := 0; i < len(handle); i++ {
		c := handle[i]
		ok := (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '.'
		if !ok {
			return ErrHandleBadChar
		}
	}
	return nil
}
