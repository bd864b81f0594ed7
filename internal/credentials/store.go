package credentials

import (
	"context"

	"ai_metering/internal/models"
)

// Store is the durable credential backend. Satisfied by
// storage.CredentialRepository.
type Store interface {
	Get(ctx context.Context, name string) (*models.Credential, error)
	Upsert(ctx context.Context, name, value string) error
}
