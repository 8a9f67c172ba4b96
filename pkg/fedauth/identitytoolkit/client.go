// Package identitytoolkit is a fedauth.FederationBackend and
// fedauth.PhoneVerifier speaking the Identity Toolkit REST dialect. Requests
// go through the fedauth pipeline, so they share its timeout, metrics and
// error envelope.
package identitytoolkit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
)

const (
	DefaultBaseURL  = "https://identitytoolkit.googleapis.com"
	DefaultTokenURL = "https://securetoken.googleapis.com"

	// DefaultRequestURI is sent as requestUri with IdP sign-ins. Credentials
	// obtained natively have no real redirect.
	DefaultRequestURI = "http://localhost"

	// RefreshWindow is how close to expiry a cached ID token may get before
	// IDToken refreshes it.
	RefreshWindow = 5 * time.Minute
)

// API paths, relative to BaseURL and TokenURL.
const (
	PathSignUp                = "/v1/accounts:signUp"
	PathSignInWithPassword    = "/v1/accounts:signInWithPassword"
	PathSignInWithIdp         = "/v1/accounts:signInWithIdp"
	PathSendVerificationCode  = "/v1/accounts:sendVerificationCode"
	PathSignInWithPhoneNumber = "/v1/accounts:signInWithPhoneNumber"
	PathToken                 = "/v1/token"
)

// Client talks to one project. It remembers the identity of its last
// successful sign-in until SignOut.
type Client struct {
	APIKey     string
	BaseURL    string
	TokenURL   string
	RequestURI string

	Executor *fedauth.Executor
	Logger   *slog.Logger

	clock func() time.Time

	mu      sync.Mutex
	current *fedauth.Identity
}

var (
	_ fedauth.FederationBackend = (*Client)(nil)
	_ fedauth.PhoneVerifier     = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points account calls at base.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimSuffix(base, "/") }
}

// WithTokenURL points refresh calls at base.
func WithTokenURL(base string) Option {
	return func(c *Client) { c.TokenURL = strings.TrimSuffix(base, "/") }
}

// WithEmulator points both APIs at a local emulator.
func WithEmulator(base string) Option {
	return func(c *Client) {
		WithBaseURL(base)(c)
		WithTokenURL(base)(c)
	}
}

// WithExecutor replaces the default executor.
func WithExecutor(e *fedauth.Executor) Option {
	return func(c *Client) {
		if e != nil {
			c.Executor = e
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithClock overrides time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.clock = now
		}
	}
}

// New returns a Client for apiKey against the production endpoints.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		TokenURL:   DefaultTokenURL,
		RequestURI: DefaultRequestURI,
		Logger:     slog.Default(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Executor == nil {
		c.Executor = fedauth.NewExecutor(fedauth.WithLogger(c.Logger))
	}
	return c
}

func (c *Client) now() time.Time { return c.clock() }

// endpoint builds the EndpointSpec for base+path with the API key as query
// parameter. Invalid bases surface as fedauth.ErrInvalidURL at build time.
func (c *Client) endpoint(base, path string) fedauth.EndpointSpec {
	u, err := url.Parse(base + path)
	if err != nil {
		return fedauth.EndpointSpec{}
	}
	if c.APIKey != "" {
		q := u.Query()
		q.Set("key", c.APIKey)
		u.RawQuery = q.Encode()
	}
	return fedauth.EndpointSpec{Address: fedauth.AddressURL(u)}
}

// post sends body and decodes a T from the answer.
func post[T any](ctx context.Context, c *Client, spec fedauth.EndpointSpec, body any) (*T, error) {
	req, err := fedauth.RequestBuilder{Spec: spec, Method: http.MethodPost, Body: body}.Build()
	if err != nil {
		return nil, err
	}

	model, resp, err := fedauth.Do[T](ctx, c.Executor, req)
	if err != nil {
		return nil, parseError(resp, err)
	}
	if model == nil {
		return nil, fedauth.ErrUndefined
	}
	return model, nil
}

// ============================================================================
// FederationBackend
// ============================================================================

// SignIn exchanges a provider credential for a federated identity.
func (c *Client) SignIn(ctx context.Context, cred fedauth.Credential) (*fedauth.Identity, error) {
	var (
		resp *AuthResponse
		err  error
	)

	switch cred.Provider {
	case fedauth.ProviderPassword:
		resp, err = post[AuthResponse](ctx, c, c.endpoint(c.BaseURL, PathSignInWithPassword), PasswordRequest{
			Email:             cred.Email,
			Password:          cred.Password,
			ReturnSecureToken: true,
		})
	case fedauth.ProviderPhone:
		resp, err = post[AuthResponse](ctx, c, c.endpoint(c.BaseURL, PathSignInWithPhoneNumber), PhoneRequest{
			SessionInfo: cred.VerificationID,
			Code:        cred.Code,
		})
	case fedauth.ProviderApple, fedauth.ProviderGoogle, fedauth.ProviderFacebook, fedauth.ProviderTwitter:
		resp, err = post[AuthResponse](ctx, c, c.endpoint(c.BaseURL, PathSignInWithIdp), IdpRequest{
			PostBody:            IdpPostBody(cred),
			RequestURI:          c.RequestURI,
			ReturnIdpCredential: true,
			ReturnSecureToken:   true,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cred.Provider)
	}
	if err != nil {
		c.Logger.Debug("identitytoolkit sign in failed", "provider", cred.Provider, "err", err)
		return nil, err
	}

	identity, err := c.identity(cred.Provider, resp)
	if err != nil {
		return nil, err
	}
	c.setCurrent(identity)
	return identity, nil
}

// SignUp creates a password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*fedauth.Identity, error) {
	resp, err := post[AuthResponse](ctx, c, c.endpoint(c.BaseURL, PathSignUp), PasswordRequest{
		Email:             email,
		Password:          password,
		DisplayName:       displayName,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	identity, err := c.identity(fedauth.ProviderPassword, resp)
	if err != nil {
		return nil, err
	}
	c.setCurrent(identity)
	return identity, nil
}

// IDToken returns a bearer ID token for identity, refreshing it first when it
// expires within RefreshWindow.
func (c *Client) IDToken(ctx context.Context, identity *fedauth.Identity) (string, error) {
	if identity == nil {
		return "", ErrNoSession
	}
	s, ok := identity.Session.(*Session)
	if !ok || s == nil {
		return "", ErrNoSession
	}
	return s.idTokenFor(ctx, c)
}

// SignOut forgets the current identity. Issued tokens stay valid until they
// expire.
func (c *Client) SignOut() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	return nil
}

// CurrentUser returns the identity of the last successful sign-in, or nil.
func (c *Client) CurrentUser() *fedauth.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) setCurrent(identity *fedauth.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = identity
}

// ============================================================================
// PhoneVerifier
// ============================================================================

// SendVerificationCode asks the backend to text a code to phoneNumber and
// returns the verification id. Numbers without a leading plus get one.
func (c *Client) SendVerificationCode(ctx context.Context, phoneNumber string) (string, error) {
	if !strings.HasPrefix(phoneNumber, "+") {
		phoneNumber = "+" + phoneNumber
	}

	resp, err := post[SendCodeResponse](ctx, c, c.endpoint(c.BaseURL, PathSendVerificationCode), SendCodeRequest{
		PhoneNumber: phoneNumber,
	})
	if err != nil {
		return "", err
	}
	if resp.SessionInfo == "" {
		return "", fedauth.ErrNilRequestKey
	}
	return resp.SessionInfo, nil
}

// ============================================================================
// Helpers
// ============================================================================

// IdpPostBody form-encodes a provider credential the way signInWithIdp
// expects it.
func IdpPostBody(cred fedauth.Credential) string {
	v := url.Values{}
	v.Set("providerId", string(cred.Provider))
	if cred.IDToken != "" {
		v.Set("id_token", cred.IDToken)
	}
	if cred.AccessToken != "" {
		v.Set("access_token", cred.AccessToken)
	}
	if cred.Secret != "" {
		v.Set("oauth_token_secret", cred.Secret)
	}
	if cred.RawNonce != "" {
		v.Set("nonce", cred.RawNonce)
	}
	return v.Encode()
}

func (c *Client) identity(provider fedauth.ProviderKind, resp *AuthResponse) (*fedauth.Identity, error) {
	if resp.IDToken == "" || resp.LocalID == "" {
		return nil, ErrMissingToken
	}

	session := &Session{UID: resp.LocalID}
	session.update(resp.IDToken, resp.RefreshToken, resp.ExpiresIn, c.now())

	return &fedauth.Identity{
		UID:         resp.LocalID,
		ProviderID:  provider,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhoneNumber: resp.PhoneNumber,
		IsNewUser:   resp.IsNewUser,
		Session:     session,
	}, nil
}
