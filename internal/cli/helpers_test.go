package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/app"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const emulatorIssuer = "https://securetoken.google.com/demo-project"

type cliEnv struct {
	srv     *httptest.Server
	profile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	emulator, err := app.NewWithLogger(app.Config{
		ProjectID:            "demo-project",
		Issuer:               emulatorIssuer,
		BackendAudience:      "demo-backend",
		NumKeys:              1,
		KeyStorageMode:       app.KeyStorageEphemeral,
		DatabaseFile:         filepath.Join(dir, "emulator.db"),
		IDTokenTTL:           jwtx.DefaultIDTokenTTL,
		AccessTokenTTL:       jwtx.DefaultAccessTokenTTL,
		RefreshTokenTTL:      jwtx.DefaultRefreshTokenTTL,
		CodeTTL:              time.Minute,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}, slogx.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = emulator.Close() })

	srv := httptest.NewServer(emulator.Handler())
	t.Cleanup(srv.Close)

	p := DefaultProfile()
	p.Federation = srv.URL
	p.Backend = srv.URL
	p.Timeout = 5 * time.Second
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, SaveProfile(path, &p))

	return &cliEnv{srv: srv, profile: path}
}

// run executes args against the env's profile and returns stdout.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommand(Options{
		ProfilePath: e.profile,
		Out:         &out,
		Err:         &errOut,
		OpenURL:     func(string) error { return nil },
	})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) runJSON(t *testing.T, out any, args ...string) {
	t.Helper()
	stdout, err := e.run(t, "", args...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), out))
}

// latestCode reads the newest outstanding SMS code for phone.
func (e *cliEnv) latestCode(t *testing.T, phone string) string {
	t.Helper()

	resp, err := http.Get(e.srv.URL + "/emulator/v1/verificationCodes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		VerificationCodes []struct {
			PhoneNumber string `json:"phoneNumber"`
			Code        string `json:"code"`
		} `json:"verificationCodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for _, c := range body.VerificationCodes {
		if c.PhoneNumber == phone {
			return c.Code
		}
	}
	t.Fatalf("no code for %s", phone)
	return ""
}
