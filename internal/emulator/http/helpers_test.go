package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store/drivers/sqlite"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://emulator.test"
	testProject  = "demo-project"
	testAudience = "demo-backend"
)

type testEnv struct {
	srv    *httptest.Server
	store  *sqlite.Store
	keys   *jwtx.KeyManager
	phone  *service.PhoneService
	router *Router
}

func newTestEnv(t *testing.T, apiKey string, configure ...func(*Router)) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: 2})
	require.NoError(t, err)

	logger := slogx.Discard()
	tokens := &service.TokenService{
		KeyManager:      km,
		Store:           st,
		Issuer:          testIssuer,
		ProjectID:       testProject,
		BackendAudience: testAudience,
		IDTokenTTL:      jwtx.DefaultIDTokenTTL,
		AccessTTL:       jwtx.DefaultAccessTokenTTL,
		RefreshTTL:      jwtx.DefaultRefreshTokenTTL,
	}
	phone := &service.PhoneService{Store: st, Logger: logger}
	accounts := &service.AccountService{Store: st, Tokens: tokens, Phone: phone}

	router := NewRouter(km.KeySet, km.Verifier, "test", st, logger)
	router.APIKey = apiKey
	router.AccountService = accounts
	router.TokenService = tokens
	router.PhoneService = phone
	router.ExchangeService = &service.ExchangeService{Tokens: tokens, Accounts: accounts, Phone: phone}
	router.KeyRotationService = &service.KeyRotationService{KeyManager: km}
	for _, fn := range configure {
		fn(router)
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, keys: km, phone: phone, router: router}
}

// do sends body as JSON (or as-is for url.Values) and decodes the answer
// into out when out is not nil.
func (e *testEnv) do(t *testing.T, method, path, bearer string, body, out any) int {
	t.Helper()

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) post(t *testing.T, path string, body, out any) int {
	t.Helper()
	return e.do(t, http.MethodPost, path, "", body, out)
}

// postError posts body and returns the status and error message.
func (e *testEnv) postError(t *testing.T, path string, body any) (int, string) {
	t.Helper()
	var env httpx.ErrorBody
	status := e.post(t, path, body, &env)
	require.Equal(t, status, env.Error.Code)
	return status, env.Error.Message
}

func (e *testEnv) latestCode(t *testing.T, phone string) string {
	t.Helper()
	var resp VerificationCodesResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/emulator/v1/verificationCodes", "", nil, &resp))
	for _, c := range resp.VerificationCodes {
		if c.PhoneNumber == phone {
			return c.Code
		}
	}
	t.Fatalf("no code issued for %s", phone)
	return ""
}
