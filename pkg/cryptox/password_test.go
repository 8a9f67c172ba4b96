package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "fedauth-cryptox")
	if err != nil {
		panic(err)
	}
	if err := UsePepperFile(filepath.Join(dir, "pepper")); err != nil {
		panic(err)
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// cheap keeps the tests fast; the format is the same.
var cheap = PasswordParams{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	for _, pw := range []string{"password123", "P@ssw0rd!#$%^&*()", strings.Repeat("a", 100), "", "пароль🔒密码"} {
		hash, err := HashPasswordWith(pw, cheap)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"), hash)
		require.NoError(t, VerifyPassword(pw, hash))
	}
}

func TestHashPasswordDefaults(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.Equal(t, "m=19456,t=2,p=1", strings.Split(hash, "$")[3])
	require.False(t, NeedsRehash(hash))

	again, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "salts differ")
}

func TestVerifyPasswordMismatch(t *testing.T) {
	t.Parallel()

	hash, err := HashPasswordWith("correct-password", cheap)
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", strings.Repeat("x", 10000)} {
		require.ErrorIs(t, VerifyPassword(wrong, hash), ErrPasswordMismatch)
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":           "",
		"bcrypt":          "$2a$10$abcdefghijklmnopqrstuv",
		"wrong algorithm": "$argon2i$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"missing fields":  "$argon2id$v=19$m=19456",
		"bad parameters":  "$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"bad salt":        "$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
		"bad key":         "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$!!!",
		"empty key":       "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$",
		"old version":     "$argon2id$v=16$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"leading garbage": "x$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
	}
	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := VerifyPassword("pw", hash)
			require.ErrorIs(t, err, ErrMalformedHash)
			require.True(t, NeedsRehash(hash))
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	hash, err := HashPasswordWith("pw", cheap)
	require.NoError(t, err)
	require.True(t, NeedsRehash(hash))
	require.NoError(t, VerifyPassword("pw", hash), "old parameters still verify")
}

func TestLoadOrCreatePepper(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "nested", "pepper")
	first, err := loadOrCreatePepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := loadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, again)

	padded := filepath.Join(dir, "padded")
	require.NoError(t, os.WriteFile(padded, []byte("  s3cret\n"), 0o600))
	got, err := loadOrCreatePepper(padded)
	require.NoError(t, err)
	require.Equal(t, "s3cret", got)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = loadOrCreatePepper(empty)
	require.ErrorIs(t, err, ErrEmptyPepper)
}
