package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrPasswordMismatch is returned by VerifyPassword for a well-formed hash
// that does not match.
var ErrPasswordMismatch = errors.New("password does not match")

// ErrMalformedHash is returned for stored hashes that are not argon2id PHC
// strings.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordParams are the argon2id cost settings recorded in every hash.
type PasswordParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  int
}

// DefaultPasswordParams follow the OWASP minimum for argon2id.
var DefaultPasswordParams = PasswordParams{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// passwordHash is the decoded form of
// $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<key>.
type passwordHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return passwordHash{}, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return passwordHash{}, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, fields[2])
	}

	var h passwordHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return passwordHash{}, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return passwordHash{}, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	h.params.SaltLength = len(h.salt)
	h.params.KeyLength = uint32(len(h.key)) // #nosec G115 -- decoded from a short stored string
	return h, nil
}

func derive(password string, salt []byte, p PasswordParams) ([]byte, error) {
	pep, err := currentPepper()
	if err != nil {
		return nil, err
	}
	return argon2.IDKey([]byte(password+pep), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength), nil
}

// HashPassword hashes password with DefaultPasswordParams, a fresh salt and
// the pepper.
func HashPassword(password string) (string, error) {
	return HashPasswordWith(password, DefaultPasswordParams)
}

func HashPasswordWith(password string, p PasswordParams) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key, err := derive(password, salt, p)
	if err != nil {
		return "", err
	}
	return passwordHash{params: p, salt: salt, key: key}.String(), nil
}

// VerifyPassword checks password against a hash from HashPassword. The
// comparison uses the parameters stored in the hash.
func VerifyPassword(password, encoded string) error {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return err
	}
	key, err := derive(password, h.salt, h.params)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(key, h.key) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encoded was made with parameters other than
// DefaultPasswordParams.
func NeedsRehash(encoded string) bool {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return true
	}
	return h.params != DefaultPasswordParams
}
