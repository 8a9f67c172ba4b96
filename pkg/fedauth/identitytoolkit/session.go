package identitytoolkit

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// defaultExpiresIn applies when the server omits or garbles expiresIn.
const defaultExpiresIn = time.Hour

// GrantTypeRefreshToken is the only grant the secure token endpoint takes.
const GrantTypeRefreshToken = "refresh_token"

// Session holds the tokens of one signed-in identity. It is stored in
// fedauth.Identity.Session.
type Session struct {
	UID string

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// ExpiresAt returns when the cached ID token expires.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) update(idToken, refreshToken, expiresIn string, now time.Time) {
	ttl := defaultExpiresIn
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	s.idToken = idToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.expiresAt = now.Add(ttl)
}

// idTokenFor returns the cached token or refreshes it. The lock is held
// across the refresh so concurrent callers share one request.
func (s *Session) idTokenFor(ctx context.Context, c *Client) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := c.now()
	if s.idToken != "" && now.Add(RefreshWindow).Before(s.expiresAt) {
		return s.idToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrNoSession
	}

	c.Logger.Debug("refreshing id token", "uid", s.UID)
	resp, err := post[RefreshResponse](ctx, c, c.endpoint(c.TokenURL, PathToken), RefreshRequest{
		GrantType:    GrantTypeRefreshToken,
		RefreshToken: s.refreshToken,
	})
	if err != nil {
		return "", err
	}
	if resp.IDToken == "" {
		return "", ErrMissingToken
	}

	s.update(resp.IDToken, resp.RefreshToken, resp.ExpiresIn, now)
	return s.idToken, nil
}
