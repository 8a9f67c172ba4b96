package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadProfileMissingFile(t *testing.T) {
	t.Parallel()

	p, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultProfile(), *p)
}

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api-key: demo-key
backend: https://api.example.com/
timeout: 3s
oauth:
  google:
    client-id: g-client
    issuer: https://issuer.example.com
`), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, "demo-key", p.APIKey)
	require.Equal(t, 3*time.Second, p.Timeout)
	require.Equal(t, "g-client", p.OAuth.Google.ClientID)
	require.Equal(t, "https://issuer.example.com", p.OAuth.Google.Issuer)
	require.Equal(t, DefaultExchangePath, p.ExchangePath, "unset fields keep defaults")
	require.Equal(t, "https://api.example.com/api/auth/exchange", p.BackendURL(p.ExchangePath))
}

func TestLoadProfileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0o600))

	_, err := LoadProfile(path)
	require.ErrorContains(t, err, "failed to parse profile")
}

func TestSaveProfileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "profile.yaml")
	p := DefaultProfile()
	p.APIKey = "k"
	p.OAuth.Facebook.ClientID = "fb"
	require.NoError(t, SaveProfile(path, &p))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, p, *loaded)
}

func TestProfileApplyEnv(t *testing.T) {
	t.Setenv("FEDAUTH_API_KEY", "from-env")
	t.Setenv("FEDAUTH_BACKEND", "http://backend.test")
	t.Setenv("FEDAUTH_TIMEOUT", "42s")
	t.Setenv("FEDAUTH_GOOGLE_CLIENT_ID", "g")
	t.Setenv("FEDAUTH_OUTPUT", "")

	p := DefaultProfile()
	p.ApplyEnv()
	require.Equal(t, "from-env", p.APIKey)
	require.Equal(t, "http://backend.test", p.Backend)
	require.Equal(t, 42*time.Second, p.Timeout)
	require.Equal(t, "g", p.OAuth.Google.ClientID)
	require.Equal(t, "json", p.Output)
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	t.Parallel()

	require.ErrorContains(t, writeOutput(os.Stdout, "xml", struct{}{}), "unknown output format")
}
