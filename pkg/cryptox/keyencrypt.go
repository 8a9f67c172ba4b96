package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

// MasterKeyEnv is read when no master key file is configured.
const MasterKeyEnv = "EMULATOR_MASTER_KEY"

// sealInfo separates the sealing key from anything else derived from the
// same master material.
const sealInfo = "fedauth signing key seal v1"

var (
	ErrSealedTooShort   = errors.New("cryptox: sealed key too short")
	ErrNoMasterMaterial = errors.New("cryptox: empty master key material")
)

// KeySealer encrypts private keys at rest with AES-256-GCM. The kid is
// authenticated alongside, so a sealed key only opens under its own kid.
type KeySealer struct {
	aead      cipher.AEAD
	ephemeral bool
}

// NewKeySealer derives the AES key from material with HKDF-SHA256.
func NewKeySealer(material []byte) (*KeySealer, error) {
	if len(material) == 0 {
		return nil, ErrNoMasterMaterial
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("cryptox: derive seal key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: %w", err)
	}
	return &KeySealer{aead: aead}, nil
}

// LoadKeySealer takes master material from the file at path, else from
// MasterKeyEnv. With neither it makes up a random key, and Ephemeral
// reports true: nothing it sealed opens after a restart.
func LoadKeySealer(path string) (*KeySealer, error) {
	var material []byte
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cryptox: read master key: %w", err)
		}
		material = bytes.TrimSpace(data)
	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("cryptox: generate master key: %w", err)
		}
		s, err := NewKeySealer(material)
		if err != nil {
			return nil, err
		}
		s.ephemeral = true
		return s, nil
	}
	return NewKeySealer(material)
}

func (s *KeySealer) Ephemeral() bool { return s.ephemeral }

// Seal returns nonce || ciphertext || tag.
func (s *KeySealer) Seal(kid string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(kid)), nil
}

// Open fails for another kid, another master key or tampered data.
func (s *KeySealer) Open(kid string, sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], []byte(kid))
	if err != nil {
		return nil, fmt.Errorf("cryptox: open sealed key %q: %w", kid, err)
	}
	return plaintext, nil
}
