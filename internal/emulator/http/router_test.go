package http

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestPasswordEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var created identitytoolkit.AuthResponse
	status := env.post(t, "/v1/accounts:signUp?key=any", identitytoolkit.PasswordRequest{
		Email:       "ada@example.com",
		Password:    "hunter22",
		DisplayName: "Ada",
	}, &created)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, created.LocalID)
	require.NotEmpty(t, created.IDToken)
	require.NotEmpty(t, created.RefreshToken)
	require.Equal(t, "3600", created.ExpiresIn)
	require.Equal(t, "password", created.ProviderID)
	require.True(t, created.IsNewUser)

	var signedIn identitytoolkit.AuthResponse
	status = env.post(t, "/v1/accounts:signInWithPassword", identitytoolkit.PasswordRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
	}, &signedIn)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, created.LocalID, signedIn.LocalID)
	require.True(t, signedIn.Registered)
	require.False(t, signedIn.IsNewUser)

	tests := []struct {
		name    string
		path    string
		body    identitytoolkit.PasswordRequest
		message string
	}{
		{"duplicate email", "/v1/accounts:signUp", identitytoolkit.PasswordRequest{Email: "ada@example.com", Password: "hunter22"}, "EMAIL_EXISTS"},
		{"weak password", "/v1/accounts:signUp", identitytoolkit.PasswordRequest{Email: "bob@example.com", Password: "123"}, "WEAK_PASSWORD : Password should be at least 6 characters"},
		{"missing email", "/v1/accounts:signUp", identitytoolkit.PasswordRequest{Password: "hunter22"}, "MISSING_EMAIL"},
		{"unknown email", "/v1/accounts:signInWithPassword", identitytoolkit.PasswordRequest{Email: "bob@example.com", Password: "hunter22"}, "EMAIL_NOT_FOUND"},
		{"wrong password", "/v1/accounts:signInWithPassword", identitytoolkit.PasswordRequest{Email: "ada@example.com", Password: "nope-nope"}, "INVALID_PASSWORD"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, message := env.postError(t, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.Equal(t, tc.message, message)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(env.srv.URL+"/v1/accounts:signUp", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPIKey(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "project-key")
	body := identitytoolkit.PasswordRequest{Email: "ada@example.com", Password: "hunter22"}

	status, message := env.postError(t, "/v1/accounts:signUp", body)
	require.Equal(t, http.StatusBadRequest, status)
	require.True(t, strings.HasPrefix(message, "API_KEY_INVALID"))

	status, _ = env.postError(t, "/v1/accounts:signUp?key=wrong", body)
	require.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signUp?key=project-key", body, nil))
}

func TestSecureToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var created identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signUp", identitytoolkit.PasswordRequest{
		Email: "ada@example.com", Password: "hunter22",
	}, &created))

	var refreshed identitytoolkit.RefreshResponse
	status := env.post(t, "/v1/token", identitytoolkit.RefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: created.RefreshToken,
	}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, created.LocalID, refreshed.UserID)
	require.Equal(t, testProject, refreshed.ProjectID)
	require.Equal(t, "Bearer", refreshed.TokenType)
	require.NotEqual(t, created.RefreshToken, refreshed.RefreshToken)

	// Form bodies work too.
	var again identitytoolkit.RefreshResponse
	status = env.post(t, "/v1/token", url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshed.RefreshToken},
	}, &again)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, again.IDToken)

	tests := []struct {
		name    string
		body    identitytoolkit.RefreshRequest
		message string
	}{
		{"rotated token", identitytoolkit.RefreshRequest{GrantType: "refresh_token", RefreshToken: created.RefreshToken}, "INVALID_REFRESH_TOKEN"},
		{"wrong grant", identitytoolkit.RefreshRequest{GrantType: "password", RefreshToken: again.RefreshToken}, "INVALID_GRANT_TYPE"},
		{"missing token", identitytoolkit.RefreshRequest{GrantType: "refresh_token"}, "INVALID_REFRESH_TOKEN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, message := env.postError(t, "/v1/token", tc.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.Equal(t, tc.message, message)
		})
	}
}

func TestSignInWithIdpEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	postBody := url.Values{
		"providerId":   {"facebook.com"},
		"access_token": {"EAAB-opaque"},
	}.Encode()

	var first identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signInWithIdp", identitytoolkit.IdpRequest{
		PostBody:   postBody,
		RequestURI: "http://localhost",
	}, &first))
	require.True(t, first.IsNewUser)
	require.Equal(t, "facebook.com", first.ProviderID)
	require.NotEmpty(t, first.FederatedID)

	var second identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signInWithIdp", identitytoolkit.IdpRequest{
		PostBody: postBody,
	}, &second))
	require.False(t, second.IsNewUser)
	require.Equal(t, first.LocalID, second.LocalID)

	status, message := env.postError(t, "/v1/accounts:signInWithIdp", identitytoolkit.IdpRequest{
		PostBody: url.Values{"providerId": {"vk.com"}, "access_token": {"x"}}.Encode(),
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "OPERATION_NOT_ALLOWED", message)

	status, message = env.postError(t, "/v1/accounts:signInWithIdp", identitytoolkit.IdpRequest{
		PostBody: url.Values{"providerId": {"twitter.com"}, "access_token": {"x"}}.Encode(),
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_IDP_RESPONSE", message)
}

func TestPhoneFederationEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var sent identitytoolkit.SendCodeResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:sendVerificationCode", identitytoolkit.SendCodeRequest{
		PhoneNumber: "+61 400 000 000",
	}, &sent))
	require.NotEmpty(t, sent.SessionInfo)

	status, message := env.postError(t, "/v1/accounts:signInWithPhoneNumber", identitytoolkit.PhoneRequest{
		SessionInfo: sent.SessionInfo,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "MISSING_CODE", message)

	var signedIn identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signInWithPhoneNumber", identitytoolkit.PhoneRequest{
		SessionInfo: sent.SessionInfo,
		Code:        env.latestCode(t, "+61400000000"),
	}, &signedIn))
	require.Equal(t, "+61400000000", signedIn.PhoneNumber)
	require.True(t, signedIn.IsNewUser)

	status, message = env.postError(t, "/v1/accounts:sendVerificationCode", identitytoolkit.SendCodeRequest{
		PhoneNumber: "12",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_PHONE_NUMBER", message)
}

func TestBackendEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var created identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signUp", identitytoolkit.PasswordRequest{
		Email: "ada@example.com", Password: "hunter22", DisplayName: "Ada",
	}, &created))

	var pair BackendTokenResponse
	require.Equal(t, http.StatusOK, env.post(t, "/api/auth/exchange", ExchangeRequest{FirebaseToken: created.IDToken}, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.EqualValues(t, jwtx.DefaultAccessTokenTTL.Seconds(), pair.ExpiresIn)

	var me MeResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/auth/me", pair.AccessToken, nil, &me))
	require.Equal(t, created.LocalID, me.LocalID)
	require.Equal(t, "Ada", me.DisplayName)
	require.Equal(t, "password", me.Provider)

	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", created.IDToken, nil, nil),
		"federation ID tokens are not backend access tokens")
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", "", nil, nil))

	status, message := env.postError(t, "/api/auth/exchange", ExchangeRequest{FirebaseToken: pair.AccessToken})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "INVALID_ID_TOKEN", message)

	var key PhoneVerifyResponse
	require.Equal(t, http.StatusOK, env.post(t, "/api/auth/phone/verify", PhoneVerifyRequest{Phone: "61400000001"}, &key))
	require.NotEmpty(t, key.Key)

	var phonePair BackendTokenResponse
	require.Equal(t, http.StatusOK, env.post(t, "/api/auth/phone/confirm", PhoneConfirmRequest{
		Key:  key.Key,
		Code: env.latestCode(t, "+61400000001"),
	}, &phonePair))
	require.NotEmpty(t, phonePair.AccessToken)

	status, message = env.postError(t, "/api/auth/phone/confirm", PhoneConfirmRequest{Key: key.Key, Code: "123456"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_SESSION_INFO", message)
}

func TestEmulatorEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var created identitytoolkit.AuthResponse
	require.Equal(t, http.StatusOK, env.post(t, "/v1/accounts:signUp", identitytoolkit.PasswordRequest{
		Email: "ada@example.com", Password: "hunter22",
	}, &created))

	var keys []SigningKeyInfo
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/emulator/v1/keys", "", nil, &keys))
	require.Len(t, keys, 2)

	var rotated RotateKeyResponse
	require.Equal(t, http.StatusOK, env.post(t, "/emulator/v1/keys:rotate", RotateKeyRequest{RetireExisting: true}, &rotated))
	require.Equal(t, 1, rotated.ActiveKeys)
	require.Len(t, rotated.RetiredKeys, 2)

	require.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/emulator/v1/keys/"+rotated.NewKey.Kid+"/retire", "", nil, nil),
		"the last key cannot be retired")

	require.Equal(t, http.StatusOK, env.post(t, "/emulator/v1/keys:rotate", nil, &rotated))
	require.Equal(t, http.StatusNoContent,
		env.do(t, http.MethodPost, "/emulator/v1/keys/"+rotated.NewKey.Kid+"/retire", "", nil, nil))

	var jwks JWKSResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil, &jwks))
	require.Len(t, jwks.Keys, 4, "retired keys stay published")

	// Tokens signed before the rotation still exchange.
	require.Equal(t, http.StatusOK, env.post(t, "/api/auth/exchange", ExchangeRequest{FirebaseToken: created.IDToken}, nil))

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/emulator/v1/accounts", "", nil, nil))
	status, message := env.postError(t, "/v1/accounts:signInWithPassword", identitytoolkit.PasswordRequest{
		Email: "ada@example.com", Password: "hunter22",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "EMAIL_NOT_FOUND", message)
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	var live HealthResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/livez", "", nil, &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	var ready HealthResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", "", nil, &ready))
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
	require.Equal(t, 2, ready.Checks.Keys)

	jwks, err := http.Get(env.srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	jwks.Body.Close()
	require.Equal(t, "public, max-age=300", jwks.Header.Get("Cache-Control"))
	require.Empty(t, jwks.Header.Get("Pragma"))

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `fedauth_emulator_http_requests_total{code="200",route="GET /livez"} 1`)

	doc, err := http.Get(env.srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer doc.Body.Close()
	require.Equal(t, http.StatusOK, doc.StatusCode)
}

func TestRateLimitedRequests(t *testing.T) {
	t.Parallel()

	strict := func(disabled bool) func(*Router) {
		return func(r *Router) {
			r.Limits.Strict = httpx.Limit{Requests: 1, Window: time.Hour}
			r.Limits.Disabled = disabled
		}
	}
	signIn := identitytoolkit.PasswordRequest{Email: "grace@example.com", Password: "hunter22"}

	t.Run("rejects and counts", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, "", strict(false))

		status, _ := env.postError(t, "/v1/accounts:signInWithPassword", signIn)
		require.Equal(t, http.StatusBadRequest, status)
		status, message := env.postError(t, "/v1/accounts:signInWithPassword", signIn)
		require.Equal(t, http.StatusTooManyRequests, status)
		require.Equal(t, "TOO_MANY_ATTEMPTS_TRY_LATER", message)

		resp, err := http.Get(env.srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(raw), `fedauth_emulator_rate_limited_total{route="POST /v1/accounts:signInWithPassword"} 1`)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, "", strict(true))

		for range 3 {
			status, _ := env.postError(t, "/v1/accounts:signInWithPassword", signIn)
			require.Equal(t, http.StatusBadRequest, status)
		}
	})
}

func TestReadyzDegraded(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	require.NoError(t, env.store.Close())

	var ready HealthResponse
	require.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/readyz", "", nil, &ready))
	require.Equal(t, "degraded", ready.Status)
	require.Contains(t, ready.Checks.Database, "error")
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	resp, err := http.Get(env.srv.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
