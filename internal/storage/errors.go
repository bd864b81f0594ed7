package storage

import "errors"

var (
	// ErrCredentialNotFound is returned when a credential is not in the store
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrUserNotFound is returned when a user is not in the directory
	ErrUserNotFound = errors.New("user not found")
)
