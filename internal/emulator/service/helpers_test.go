package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/store/drivers/sqlite"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://emulator.test"
	testProject  = "demo-project"
	testAudience = "demo-backend"
)

type harness struct {
	store    *sqlite.Store
	keys     *jwtx.KeyManager
	tokens   *TokenService
	phone    *PhoneService
	accounts *AccountService
	exchange *ExchangeService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: 1})
	require.NoError(t, err)

	h := &harness{store: st, keys: km}
	h.tokens = &TokenService{
		KeyManager:      km,
		Store:           st,
		Issuer:          testIssuer,
		ProjectID:       testProject,
		BackendAudience: testAudience,
		IDTokenTTL:      jwtx.DefaultIDTokenTTL,
		AccessTTL:       jwtx.DefaultAccessTokenTTL,
		RefreshTTL:      jwtx.DefaultRefreshTokenTTL,
	}
	h.phone = &PhoneService{Store: st, Logger: slogx.Discard()}
	h.accounts = &AccountService{Store: st, Tokens: h.tokens, Phone: h.phone}
	h.exchange = &ExchangeService{Tokens: h.tokens, Accounts: h.accounts, Phone: h.phone}
	return h
}

// latestCode returns the newest outstanding code for phone.
func (h *harness) latestCode(t *testing.T, phone string) string {
	t.Helper()

	codes, err := h.phone.ListCodes(context.Background())
	require.NoError(t, err)
	for _, c := range codes {
		if c.PhoneNumber == phone {
			return c.Code
		}
	}
	t.Fatalf("no code issued for %s", phone)
	return ""
}

// providerToken builds an unsigned-looking provider JWT; the emulator never
// verifies provider signatures.
func providerToken(t *testing.T, sub, email, nonce string) string {
	t.Helper()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Nonce: nonce,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
	require.NoError(t, err)
	return tok
}
