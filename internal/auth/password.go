package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied to every stored credential.
const bcryptCost = 12

// HashPassword derives a salted one-way hash from the plaintext password.
// Callers are expected to have rejected blank input already.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash. Any mismatch or malformed hash yields ErrInvalidCredentials.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
