package credentials

import "errors"

var (
	// ErrNotFound means the credential is absent from cache,
	// environment, and store. Callers treat the dependent feature as
	// unavailable rather than failing.
	ErrNotFound = errors.New("credential not found")

	// ErrValidationFailed means the provider probe rejected a
	// credential value during rotation.
	ErrValidationFailed = errors.New("credential validation failed")
)
