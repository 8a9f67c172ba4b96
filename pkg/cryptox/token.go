package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Random token sizes in bytes, before base64url encoding.
const (
	TokenSize128 = 16 // state and kid suffixes, 22 chars
	TokenSize256 = 32 // refresh tokens and verification ids, 43 chars
)

// NonceLength is the length of nonces produced by GenerateNonce.
const NonceLength = 32

// nonceCharset is the alphabet Apple accepts in a sign-in nonce.
const nonceCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVXYZabcdefghijklmnopqrstuvwxyz-._"

// GenerateToken returns size random bytes as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the unpadded base64url SHA-256 of token. Opaque
// secrets are stored and looked up by fingerprint only.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateNonce returns NonceLength characters drawn uniformly from the
// sign-in nonce alphabet.
func GenerateNonce() (string, error) {
	out := make([]byte, NonceLength)
	n := big.NewInt(int64(len(nonceCharset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("cryptox: read random: %w", err)
		}
		out[i] = nonceCharset[idx.Int64()]
	}
	return string(out), nil
}

// HashNonce is the lowercase hex SHA-256 of raw. Providers receive the
// hash; raw stays with the caller and goes to the token exchange.
func HashNonce(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
