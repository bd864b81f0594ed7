package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ai_metering/internal/models"
)

// CredentialRepository is the durable credential store. Values are
// AES-GCM encrypted before they reach Postgres and decrypted on read.
type CredentialRepository struct {
	db  *DB
	enc *Encryption
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB, enc *Encryption) *CredentialRepository {
	return &CredentialRepository{db: db, enc: enc}
}

// credentialRow is the raw table shape
type credentialRow struct {
	Name           string       `db:"name"`
	EncryptedValue string       `db:"encrypted_value"`
	CreatedAt      sql.NullTime `db:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
}

// Get retrieves a credential by name, decrypting its value.
// Returns ErrCredentialNotFound when no row exists.
func (r *CredentialRepository) Get(ctx context.Context, name string) (*models.Credential, error) {
	var row credentialRow
	query := `
		SELECT name, encrypted_value, created_at, updated_at
		FROM credentials
		WHERE name = $1
	`

	err := r.db.conn.GetContext(ctx, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	value, err := r.enc.DecryptString(row.EncryptedValue)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential %q: %w", name, err)
	}

	cred := &models.Credential{
		Name:   row.Name,
		Value:  value,
		Source: models.SourceStore,
	}
	if row.CreatedAt.Valid {
		cred.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		cred.UpdatedAt = row.UpdatedAt.Time
	}
	return cred, nil
}

// Upsert writes a credential value, encrypting it first. An existing
// row is replaced in a single statement so readers never observe a
// missing credential during rotation.
func (r *CredentialRepository) Upsert(ctx context.Context, name, value string) error {
	encrypted, err := r.enc.EncryptString(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential %q: %w", name, err)
	}

	query := `
		INSERT INTO credentials (name, encrypted_value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET encrypted_value = EXCLUDED.encrypted_value,
		    updated_at = now()
	`

	if _, err := r.db.conn.ExecContext(ctx, query, name, encrypted); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}
