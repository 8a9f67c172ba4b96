package identitytoolkit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

const apiKey = "test-api-key"

// fakeToolkit is a minimal Identity Toolkit. It records the last body per
// path and answers password sign-ins for ada@example.com only.
type fakeToolkit struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]map[string]any
	refresh  atomic.Int32
	tokenSeq atomic.Int32
}

func newFakeToolkit(t *testing.T) *fakeToolkit {
	t.Helper()
	f := &fakeToolkit{bodies: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	handle := func(path string, h func(w http.ResponseWriter, body map[string]any)) {
		mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != apiKey {
				httpx.WriteError(w, http.StatusBadRequest, "API_KEY_INVALID")
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.bodies[path] = body
			f.mu.Unlock()
			h(w, body)
		})
	}

	handle(identitytoolkit.PathSignInWithPassword, func(w http.ResponseWriter, body map[string]any) {
		if body["email"] != "ada@example.com" {
			httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeEmailNotFound)
			return
		}
		f.writeAuth(w, "uid-ada", "ada@example.com", "")
	})
	handle(identitytoolkit.PathSignUp, func(w http.ResponseWriter, body map[string]any) {
		f.writeAuth(w, "uid-new", body["email"].(string), "")
	})
	handle(identitytoolkit.PathSignInWithIdp, func(w http.ResponseWriter, body map[string]any) {
		f.writeAuth(w, "uid-idp", "", "")
	})
	handle(identitytoolkit.PathSendVerificationCode, func(w http.ResponseWriter, body map[string]any) {
		httpx.WriteJSON(w, http.StatusOK, identitytoolkit.SendCodeResponse{SessionInfo: "session-for-" + body["phoneNumber"].(string)})
	})
	handle(identitytoolkit.PathSignInWithPhoneNumber, func(w http.ResponseWriter, body map[string]any) {
		if body["code"] != "123456" {
			httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidCode)
			return
		}
		f.writeAuth(w, "uid-phone", "", "+61400000000")
	})
	handle(identitytoolkit.PathToken, func(w http.ResponseWriter, body map[string]any) {
		f.refresh.Add(1)
		if body["grant_type"] != identitytoolkit.GrantTypeRefreshToken || body["refresh_token"] == "" {
			httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidRefreshToken)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, identitytoolkit.RefreshResponse{
			ExpiresIn:    "3600",
			TokenType:    "Bearer",
			RefreshToken: "refresh-2",
			IDToken:      f.nextToken(),
			UserID:       "uid-ada",
		})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeToolkit) nextToken() string {
	return "id-token-" + string(rune('0'+f.tokenSeq.Add(1)))
}

func (f *fakeToolkit) writeAuth(w http.ResponseWriter, uid, email, phone string) {
	httpx.WriteJSON(w, http.StatusOK, identitytoolkit.AuthResponse{
		LocalID:      uid,
		Email:        email,
		PhoneNumber:  phone,
		IDToken:      f.nextToken(),
		RefreshToken: "refresh-1",
		ExpiresIn:    "3600",
	})
}

func (f *fakeToolkit) body(path string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClient(t *testing.T, f *fakeToolkit, clock *fakeClock) *identitytoolkit.Client {
	t.Helper()
	opts := []identitytoolkit.Option{identitytoolkit.WithEmulator(f.URL + "/")}
	if clock != nil {
		opts = append(opts, identitytoolkit.WithClock(clock.Now))
	}
	return identitytoolkit.New(apiKey, opts...)
}

func TestSignInWithPassword(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)
	ctx := context.Background()

	identity, err := c.SignIn(ctx, fedauth.Credential{
		Provider: fedauth.ProviderPassword,
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, "uid-ada", identity.UID)
	require.Equal(t, fedauth.ProviderPassword, identity.ProviderID)
	require.Same(t, identity, c.CurrentUser())
	require.Equal(t, map[string]any{
		"email":             "ada@example.com",
		"password":          "hunter2",
		"returnSecureToken": true,
	}, f.body(identitytoolkit.PathSignInWithPassword))

	tok, err := c.IDToken(ctx, identity)
	require.NoError(t, err)
	require.Equal(t, "id-token-1", tok)

	require.NoError(t, c.SignOut())
	require.Nil(t, c.CurrentUser())
}

func TestSignInAPIError(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)

	_, err := c.SignIn(context.Background(), fedauth.Credential{
		Provider: fedauth.ProviderPassword,
		Email:    "nobody@example.com",
		Password: "x",
	})
	require.ErrorIs(t, err, fedauth.ErrInvalidHTTPStatusCode)

	var apiErr *identitytoolkit.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, identitytoolkit.CodeEmailNotFound, apiErr.Code())
	require.True(t, identitytoolkit.IsCode(err, identitytoolkit.CodeEmailNotFound))
	require.Nil(t, c.CurrentUser())
}

func TestSignInWithIdpPostBody(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)

	_, err := c.SignIn(context.Background(), fedauth.Credential{
		Provider: fedauth.ProviderApple,
		IDToken:  "apple-id-token",
		RawNonce: "raw-nonce",
	})
	require.NoError(t, err)

	body := f.body(identitytoolkit.PathSignInWithIdp)
	require.Equal(t, identitytoolkit.DefaultRequestURI, body["requestUri"])
	require.Equal(t, true, body["returnSecureToken"])

	form, err := url.ParseQuery(body["postBody"].(string))
	require.NoError(t, err)
	require.Equal(t, "apple.com", form.Get("providerId"))
	require.Equal(t, "apple-id-token", form.Get("id_token"))
	require.Equal(t, "raw-nonce", form.Get("nonce"))
	require.False(t, form.Has("access_token"))
}

func TestIdpPostBodyTwitter(t *testing.T) {
	t.Parallel()

	form, err := url.ParseQuery(identitytoolkit.IdpPostBody(fedauth.Credential{
		Provider:    fedauth.ProviderTwitter,
		AccessToken: "tok",
		Secret:      "sec",
	}))
	require.NoError(t, err)
	require.Equal(t, "tok", form.Get("access_token"))
	require.Equal(t, "sec", form.Get("oauth_token_secret"))
	require.Equal(t, "twitter.com", form.Get("providerId"))
}

func TestPhoneSignIn(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)
	ctx := context.Background()

	id, err := c.SendVerificationCode(ctx, "61400000000")
	require.NoError(t, err)
	require.Equal(t, "session-for-+61400000000", id)

	_, err = c.SignIn(ctx, fedauth.Credential{Provider: fedauth.ProviderPhone, VerificationID: id, Code: "000000"})
	require.True(t, identitytoolkit.IsCode(err, identitytoolkit.CodeInvalidCode))

	identity, err := c.SignIn(ctx, fedauth.Credential{Provider: fedauth.ProviderPhone, VerificationID: id, Code: "123456"})
	require.NoError(t, err)
	require.Equal(t, "+61400000000", identity.PhoneNumber)
	require.Equal(t, id, f.body(identitytoolkit.PathSignInWithPhoneNumber)["sessionInfo"])
}

func TestIDTokenRefresh(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newClient(t, f, clock)
	ctx := context.Background()

	identity, err := c.SignIn(ctx, fedauth.Credential{
		Provider: fedauth.ProviderPassword,
		Email:    "ada@example.com",
		Password: "x",
	})
	require.NoError(t, err)

	// Fresh token is served from cache.
	clock.Advance(50 * time.Minute)
	tok, err := c.IDToken(ctx, identity)
	require.NoError(t, err)
	require.Equal(t, "id-token-1", tok)
	require.Zero(t, f.refresh.Load())

	// Within the refresh window.
	clock.Advance(6 * time.Minute)
	tok, err = c.IDToken(ctx, identity)
	require.NoError(t, err)
	require.Equal(t, "id-token-2", tok)
	require.Equal(t, int32(1), f.refresh.Load())
	require.Equal(t, "refresh-1", f.body(identitytoolkit.PathToken)["refresh_token"])

	session := identity.Session.(*identitytoolkit.Session)
	require.Equal(t, "refresh-2", session.RefreshToken())
	require.Equal(t, clock.Now().Add(time.Hour), session.ExpiresAt())
}

func TestIDTokenWithoutSession(t *testing.T) {
	t.Parallel()

	c := identitytoolkit.New(apiKey)
	_, err := c.IDToken(context.Background(), nil)
	require.ErrorIs(t, err, identitytoolkit.ErrNoSession)
	_, err = c.IDToken(context.Background(), &fedauth.Identity{UID: "x"})
	require.ErrorIs(t, err, identitytoolkit.ErrNoSession)
}

func TestSignInUnsupportedProvider(t *testing.T) {
	t.Parallel()

	c := identitytoolkit.New(apiKey)
	_, err := c.SignIn(context.Background(), fedauth.Credential{Provider: "vk.com"})
	require.ErrorIs(t, err, identitytoolkit.ErrUnsupportedProvider)
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)

	identity, err := c.SignUp(context.Background(), "new@example.com", "pw", "New")
	require.NoError(t, err)
	require.Equal(t, "uid-new", identity.UID)
	require.Equal(t, "New", f.body(identitytoolkit.PathSignUp)["displayName"])
}

func TestExchangerOverToolkit(t *testing.T) {
	t.Parallel()

	f := newFakeToolkit(t)
	c := newClient(t, f, nil)

	var gotToken atomic.Value
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotToken.Store(body[fedauth.DefaultTokenKey])
		httpx.WriteJSON(w, http.StatusOK, fedauth.BackendToken{AccessToken: "a", RefreshToken: "r"})
	}))
	t.Cleanup(backend.Close)

	auth := fedauth.NewServerAuthenticator(nil)
	auth.Queue = fedauth.Inline
	x := fedauth.NewRemoteAuthExchanger(fedauth.Endpoint(backend.URL), c, auth)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tok, err := fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
		x.Auth(ctx, fedauth.NewPasswordProvider("ada@example.com", "x"), h)
	})
	require.NoError(t, err)
	require.Equal(t, "a", tok.AccessToken)
	require.Equal(t, "id-token-1", gotToken.Load())
}
