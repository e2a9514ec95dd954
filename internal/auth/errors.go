package auth

import "errors"

var (
	// ErrInvalidToken indicates a token that is expired, malformed, carries a
	// bad signature, or no longer matches the stored refresh value.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials indicates a password that does not verify against
	// the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates no account matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser indicates the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrValidation indicates missing or malformed registration input.
	ErrValidation = errors.New("validation failed")
)
