package storage

import (
	"encoding/base64"
	"testing"
)

func TestEncryptionRoundTrip(t *testing.T) {
	// 32-byte key (AES-256)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	enc, err := NewEncryption(key)
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}

	plaintext := "sk-my-secret-api-key-12345"
	ciphertext, err := enc.EncryptString(plaintext)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if ciphertext == plaintext {
		t.Error("Ciphertext should not equal plaintext")
	}

	decrypted, err := enc.DecryptString(ciphertext)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Decrypted text doesn't match original. Got %s, want %s", decrypted, plaintext)
	}
}

func TestEncryptionFromBase64(t *testing.T) {
	keyBase64, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	if _, err := base64.StdEncoding.DecodeString(keyBase64); err != nil {
		t.Fatalf("Generated key is not valid base64: %v", err)
	}

	enc, err := NewEncryptionFromBase64(keyBase64)
	if err != nil {
		t.Fatalf("Failed to create encryption from base64: %v", err)
	}

	ciphertext, err := enc.EncryptString("test-credential")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	decrypted, err := enc.DecryptString(ciphertext)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}

	if decrypted != "test-credential" {
		t.Errorf("Expected test-credential, got %s", decrypted)
	}
}

func TestEncryptionNonDeterministic(t *testing.T) {
	key := make([]byte, 32)
	enc, err := NewEncryption(key)
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}

	// Random nonces mean identical plaintexts never share ciphertext
	first, err := enc.EncryptString("same-value")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	second, err := enc.EncryptString("same-value")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if first == second {
		t.Error("Two encryptions of the same plaintext should differ")
	}
}

func TestEncryptionInvalidKey(t *testing.T) {
	if _, err := NewEncryption(make([]byte, 15)); err == nil {
		t.Error("Expected error for invalid key size")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	key := make([]byte, 32)
	enc, err := NewEncryption(key)
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}

	ciphertext, err := enc.EncryptString("payload")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("Failed to decode ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := enc.DecryptString(tampered); err == nil {
		t.Error("Expected error decrypting tampered ciphertext")
	}
}
