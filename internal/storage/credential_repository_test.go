package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDb.Close() })

	return NewDBFromConn(sqlx.NewDb(mockDb, "sqlmock")), mock
}

func newTestEncryption(t *testing.T) *Encryption {
	t.Helper()

	enc, err := NewEncryption(make([]byte, 32))
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}
	return enc
}

func TestCredentialRepositoryGet(t *testing.T) {
	db, mock := newTestDB(t)
	enc := newTestEncryption(t)
	repo := NewCredentialRepository(db, enc)

	encrypted, err := enc.EncryptString("sk-stored-value")
	if err != nil {
		t.Fatalf("Failed to encrypt fixture: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT name, encrypted_value, created_at, updated_at").
		WithArgs("OPENAI_API_KEY").
		WillReturnRows(sqlmock.NewRows([]string{"name", "encrypted_value", "created_at", "updated_at"}).
			AddRow("OPENAI_API_KEY", encrypted, now, now))

	cred, err := repo.Get(context.Background(), "OPENAI_API_KEY")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if cred.Value != "sk-stored-value" {
		t.Errorf("Expected decrypted value sk-stored-value, got %s", cred.Value)
	}
	if cred.Source != "store" {
		t.Errorf("Expected source store, got %s", cred.Source)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestCredentialRepositoryGetNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCredentialRepository(db, newTestEncryption(t))

	mock.ExpectQuery("SELECT name, encrypted_value, created_at, updated_at").
		WithArgs("MISSING_KEY").
		WillReturnRows(sqlmock.NewRows([]string{"name", "encrypted_value", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), "MISSING_KEY")
	if !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("Expected ErrCredentialNotFound, got %v", err)
	}
}

func TestCredentialRepositoryGetCorruptCiphertext(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCredentialRepository(db, newTestEncryption(t))

	mock.ExpectQuery("SELECT name, encrypted_value, created_at, updated_at").
		WithArgs("BAD_KEY").
		WillReturnRows(sqlmock.NewRows([]string{"name", "encrypted_value", "created_at", "updated_at"}).
			AddRow("BAD_KEY", "not-valid-ciphertext", time.Now(), time.Now()))

	if _, err := repo.Get(context.Background(), "BAD_KEY"); err == nil {
		t.Error("Expected error for corrupt ciphertext")
	}
}

func TestCredentialRepositoryUpsert(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewCredentialRepository(db, newTestEncryption(t))

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("OPENAI_API_KEY", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), "OPENAI_API_KEY", "sk-new-value"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
