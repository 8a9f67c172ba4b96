package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRefreshIDTokenRotates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	signed, err := h.accounts.SignUp(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	refreshed, err := h.tokens.RefreshIDToken(ctx, signed.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, signed.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, signed.Account.ID, refreshed.Account.ID)
	require.Equal(t, "password", refreshed.Provider)

	claims, err := h.tokens.VerifyIDToken(refreshed.IDToken)
	require.NoError(t, err)
	require.Equal(t, signed.Account.ID, claims.Subject)

	_, err = h.tokens.RefreshIDToken(ctx, signed.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh, "rotated tokens are revoked")

	_, err = h.tokens.RefreshIDToken(ctx, "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshIDTokenRejectsBackendTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	signed, err := h.accounts.SignUp(ctx, "ada@example.com", "hunter22", "")
	require.NoError(t, err)

	pair, err := h.exchange.Exchange(ctx, signed.IDToken)
	require.NoError(t, err)

	_, err = h.tokens.RefreshIDToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshIDTokenExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	signed, err := h.accounts.SignUp(ctx, "ada@example.com", "hunter22", "")
	require.NoError(t, err)

	h.tokens.Now = func() time.Time { return time.Now().Add(jwtx.DefaultRefreshTokenTTL + time.Minute) }
	_, err = h.tokens.RefreshIDToken(ctx, signed.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyIDToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	account := domain.Account{ID: "local-1", Email: "ada@example.com"}
	require.NoError(t, h.store.Accounts().CreateAccount(ctx, account))

	access, err := h.tokens.IssueBackendToken(ctx, account.ID, "password", "")
	require.NoError(t, err)

	h.tokens.Now = func() time.Time { return time.Now().Add(-2 * jwtx.DefaultIDTokenTTL) }
	stale, err := h.tokens.IssueIDToken(ctx, account, "password")
	require.NoError(t, err)
	h.tokens.Now = nil

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"access token is not an id token", access.AccessToken, ErrInvalidIDToken},
		{"garbage", "not.a.jwt", ErrInvalidIDToken},
		{"foreign signature", providerToken(t, "local-1", "", ""), ErrInvalidIDToken},
		{"expired", stale.IDToken, ErrTokenExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.tokens.VerifyIDToken(tc.token)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestIssueIDTokenDisabledAccount(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.tokens.IssueIDToken(context.Background(), domain.Account{ID: "x", Disabled: true}, "password")
	require.ErrorIs(t, err, ErrUserDisabled)
}
