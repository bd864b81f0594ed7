package models

import "time"

// CredentialSource records where a credential value was resolved from.
// It is derived at resolve time and never persisted.
type CredentialSource string

const (
	SourceCache       CredentialSource = "cache"
	SourceEnvironment CredentialSource = "environment"
	SourceStore       CredentialSource = "store"
)

// Credential is a named secret used to authenticate against a
// third-party provider. The Value field holds the plaintext secret;
// at rest the store keeps it AES-GCM encrypted.
type Credential struct {
	Name      string           `db:"name"`
	Value     string           `db:"-"`
	Source    CredentialSource `db:"-"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}
