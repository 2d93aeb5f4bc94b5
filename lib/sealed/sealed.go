// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts institution credentials at rest. It wraps
// filippo.io/age with a passphrase-derived key (scrypt) for the one
// operation the CLI needs: keep the IdP username and password in an
// encrypted file that only the operator's passphrase can open.
//
// Passphrases and decrypted plaintext travel in [secret.Buffer] values
// backed by mmap memory outside the Go heap (locked against swap,
// excluded from core dumps, zeroed on Close).
package sealed

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	"github.com/ladok-go/ladok/lib/secret"
)

// Seal encrypts plaintext with a passphrase and returns the age
// ciphertext. The passphrase is borrowed and not closed.
func Seal(plaintext []byte, passphrase *secret.Buffer) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("deriving key from passphrase: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Unseal decrypts age ciphertext with a passphrase. The plaintext is
// returned in a secret.Buffer; the caller must Close it. The passphrase
// is borrowed and not closed.
func Unseal(ciphertext []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("deriving key from passphrase: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("sealed file is empty")
	}

	// NewFromBytes moves the plaintext into mmap-backed memory and
	// zeros the heap copy.
	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("protecting decrypted plaintext: %w", err)
	}
	return buffer, nil
}

// SealToFile encrypts plaintext with the passphrase and writes the
// ciphertext to path with owner-only permissions.
func SealToFile(path string, plaintext []byte, passphrase *secret.Buffer) error {
	ciphertext, err := Seal(plaintext, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, ciphertext, 0600); err != nil {
		return fmt.Errorf("writing sealed file: %w", err)
	}
	return nil
}

// UnsealFromFile reads the ciphertext at path and decrypts it with the
// passphrase. The caller must Close the returned buffer.
func UnsealFromFile(path string, passphrase *secret.Buffer) (*secret.Buffer, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sealed file: %w", err)
	}
	return Unseal(ciphertext, passphrase)
}
