package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestExchange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	signed, err := h.accounts.SignUp(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	pair, err := h.exchange.Exchange(ctx, signed.IDToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, pair.ExpiresIn)

	claims, err := h.keys.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, signed.Account.ID, claims.Subject)
	require.Equal(t, jwtx.TokenUseAccess, claims.TokenUse)
	require.NoError(t, claims.ValidateAudience([]string{testAudience}))
	require.Error(t, claims.ValidateAudience([]string{testProject}))

	_, err = h.exchange.Exchange(ctx, "  ")
	require.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = h.exchange.Exchange(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidIDToken, "backend tokens cannot be exchanged again")
}

func TestExchangeDeletedAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	signed, err := h.accounts.SignUp(ctx, "ada@example.com", "hunter22", "")
	require.NoError(t, err)
	require.NoError(t, h.accounts.Reset(ctx))

	_, err = h.exchange.Exchange(ctx, signed.IDToken)
	require.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestExchangePhone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	key, err := h.exchange.SendPhoneCode(ctx, "+61 400 123 456")
	require.NoError(t, err)

	_, err = h.accounts.SignInWithPhoneNumber(ctx, key, h.latestCode(t, "+61400123456"))
	require.ErrorIs(t, err, ErrInvalidSessionInfo, "backend keys are not federation sessions")

	pair, err := h.exchange.ConfirmPhone(ctx, key, h.latestCode(t, "+61400123456"))
	require.NoError(t, err)

	claims, err := h.keys.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "phone", claims.Provider)

	account, err := h.store.Accounts().GetAccountByPhone(ctx, "+61400123456")
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)

	_, err = h.exchange.ConfirmPhone(ctx, key, "123456")
	require.ErrorIs(t, err, ErrInvalidSessionInfo)

	_, err = h.exchange.SendPhoneCode(ctx, "12")
	require.ErrorIs(t, err, ErrInvalidPhoneNumber)
}
