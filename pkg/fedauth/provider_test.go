package fedauth_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// ============================================================================
// Apple
// ============================================================================

type appleFunc func(ctx context.Context, req fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error)

func (f appleFunc) Authorize(ctx context.Context, req fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
	return f(ctx, req)
}

// echoApple returns a credential that echoes the request nonce.
func echoApple(token string) appleFunc {
	return func(_ context.Context, req fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
		return fedauth.AppleAuthorization{Credential: &fedauth.AppleIDCredential{
			User:          "apple-user",
			IdentityToken: token,
			Nonce:         req.Nonce,
			GivenName:     "Ada",
			Email:         "ada@example.com",
		}}, nil
	}
}

func unsignedClaims(t *testing.T, c jwtx.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return tok
}

var hexSHA256 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestAppleProvider(t *testing.T) {
	t.Parallel()

	t.Run("success carries raw nonce", func(t *testing.T) {
		t.Parallel()

		var seen fedauth.AppleIDRequest
		svc := appleFunc(func(ctx context.Context, req fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
			seen = req
			return echoApple("identity-token")(ctx, req)
		})

		cred, err := awaitCredential(t, &fedauth.AppleProvider{Service: svc, Queue: fedauth.Inline})
		require.NoError(t, err)
		require.Equal(t, fedauth.ProviderApple, cred.Provider)
		require.Equal(t, "identity-token", cred.IDToken)
		require.Len(t, cred.RawNonce, 32)
		require.Regexp(t, hexSHA256, seen.Nonce)
		require.NotEqual(t, cred.RawNonce, seen.Nonce, "only the digest leaves the provider")
		require.Equal(t, []string{fedauth.AppleScopeFullName, fedauth.AppleScopeEmail}, seen.Scopes)
		require.Equal(t, "Ada", cred.GivenName)
	})

	t.Run("fresh nonce per attempt", func(t *testing.T) {
		t.Parallel()

		var (
			mu     sync.Mutex
			nonces []string
		)
		svc := appleFunc(func(ctx context.Context, req fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
			mu.Lock()
			nonces = append(nonces, req.Nonce)
			mu.Unlock()
			return echoApple("t")(ctx, req)
		})
		p := &fedauth.AppleProvider{Service: svc, Queue: fedauth.Inline}

		_, err := awaitCredential(t, p)
		require.NoError(t, err)
		_, err = awaitCredential(t, p)
		require.NoError(t, err)
		require.Len(t, nonces, 2)
		require.NotEqual(t, nonces[0], nonces[1])
	})

	tests := []struct {
		name string
		svc  func(t *testing.T) appleFunc
		want error
	}{
		{
			name: "empty nonce",
			svc: func(*testing.T) appleFunc {
				return func(context.Context, fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
					return fedauth.AppleAuthorization{Credential: &fedauth.AppleIDCredential{IdentityToken: "t"}}, nil
				}
			},
			want: fedauth.ErrInvalidNonce,
		},
		{
			name: "mismatched nonce",
			svc: func(*testing.T) appleFunc {
				return func(context.Context, fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
					return fedauth.AppleAuthorization{Credential: &fedauth.AppleIDCredential{IdentityToken: "t", Nonce: "other"}}, nil
				}
			},
			want: fedauth.ErrInvalidNonce,
		},
		{
			name: "nonce claim mismatch",
			svc: func(t *testing.T) appleFunc {
				token := unsignedClaims(t, jwtx.Claims{Nonce: "not-our-digest"})
				return echoApple(token)
			},
			want: fedauth.ErrInvalidNonce,
		},
		{
			name: "missing identity token",
			svc: func(*testing.T) appleFunc {
				return echoApple("")
			},
			want: fedauth.ErrNilAuthorizationToken,
		},
		{
			name: "wrong credential type",
			svc: func(*testing.T) appleFunc {
				return func(context.Context, fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
					return fedauth.AppleAuthorization{Credential: "password credential"}, nil
				}
			},
			want: fedauth.ErrNilAppleIDCredential,
		},
		{
			name: "platform error",
			svc: func(*testing.T) appleFunc {
				return func(context.Context, fedauth.AppleIDRequest) (fedauth.AppleAuthorization, error) {
					return fedauth.AppleAuthorization{}, errors.New("user cancelled")
				}
			},
			want: fedauth.ErrAppleAuthorization,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := awaitCredential(t, &fedauth.AppleProvider{Service: tt.svc(t), Queue: fedauth.Inline})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// ============================================================================
// OAuth providers
// ============================================================================

type tokenFlow struct {
	tok *oauth2.Token
	err error
}

func (f tokenFlow) Token(context.Context) (*oauth2.Token, error) { return f.tok, f.err }

type credentialFlow struct {
	cred *fedauth.Credential
	err  error
}

func (f credentialFlow) Credential(context.Context, fedauth.ProviderKind) (*fedauth.Credential, error) {
	return f.cred, f.err
}

func TestFacebookProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		flow tokenFlow
		want error
	}{
		{"success", tokenFlow{tok: &oauth2.Token{AccessToken: "fb"}}, nil},
		{"flow error", tokenFlow{err: errors.New("denied")}, fedauth.ErrFacebookLogIn},
		{"nil token", tokenFlow{}, fedauth.ErrNilAccessToken},
		{"empty access token", tokenFlow{tok: &oauth2.Token{}}, fedauth.ErrNilAccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cred, err := awaitCredential(t, &fedauth.FacebookProvider{Flow: tt.flow, Queue: fedauth.Inline})
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, fedauth.ProviderFacebook, cred.Provider)
			require.Equal(t, "fb", cred.AccessToken)
		})
	}
}

func TestGoogleProvider(t *testing.T) {
	t.Parallel()

	withID := (&oauth2.Token{AccessToken: "at"}).WithExtra(map[string]any{"id_token": "google-id"})

	tests := []struct {
		name string
		flow tokenFlow
		want error
	}{
		{"success", tokenFlow{tok: withID}, nil},
		{"flow error", tokenFlow{err: errors.New("denied")}, fedauth.ErrGoogleSignIn},
		{"nil token", tokenFlow{}, fedauth.ErrNilAuthenticationObject},
		{"no id token", tokenFlow{tok: &oauth2.Token{AccessToken: "at"}}, fedauth.ErrNilAuthenticationObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cred, err := awaitCredential(t, &fedauth.GoogleProvider{Flow: tt.flow, Queue: fedauth.Inline})
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "google-id", cred.IDToken)
			require.Equal(t, "at", cred.AccessToken)
		})
	}
}

func TestTwitterProvider(t *testing.T) {
	t.Parallel()

	cred, err := awaitCredential(t, &fedauth.TwitterProvider{
		Flow:  credentialFlow{cred: &fedauth.Credential{AccessToken: "tw", Secret: "s"}},
		Queue: fedauth.Inline,
	})
	require.NoError(t, err)
	require.Equal(t, fedauth.ProviderTwitter, cred.Provider)
	require.Equal(t, "s", cred.Secret)

	cause := errors.New("popup closed")
	_, err = awaitCredential(t, &fedauth.TwitterProvider{Flow: credentialFlow{err: cause}, Queue: fedauth.Inline})
	require.ErrorIs(t, err, fedauth.ErrNilCredential)
	require.ErrorIs(t, err, cause)
}

// ============================================================================
// Password
// ============================================================================

func TestPasswordProvider(t *testing.T) {
	t.Parallel()

	t.Run("success clears profile", func(t *testing.T) {
		t.Parallel()
		p := fedauth.NewPasswordProvider("ada@example.com", "hunter2")
		p.Queue = fedauth.Inline
		require.True(t, p.HasProfile())

		cred, err := awaitCredential(t, p)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", cred.Email)
		require.Equal(t, "hunter2", cred.Password)
		require.False(t, p.HasProfile())

		_, err = awaitCredential(t, p)
		require.ErrorIs(t, err, fedauth.ErrInvalidEmail)
	})

	t.Run("failure clears profile", func(t *testing.T) {
		t.Parallel()
		p := fedauth.NewPasswordProvider("ada@example.com", "")
		p.Queue = fedauth.Inline

		_, err := awaitCredential(t, p)
		require.ErrorIs(t, err, fedauth.ErrInvalidPassword)

		p.SetProfile("", "pw")
		_, err = awaitCredential(t, p)
		require.ErrorIs(t, err, fedauth.ErrInvalidEmail)
		require.False(t, p.HasProfile())
	})

	t.Run("no format validation", func(t *testing.T) {
		t.Parallel()
		p := fedauth.NewPasswordProvider("not-an-email", "x")
		p.Queue = fedauth.Inline
		_, err := awaitCredential(t, p)
		require.NoError(t, err)
	})
}

// ============================================================================
// Phone
// ============================================================================

type fakeVerifier struct {
	mu      sync.Mutex
	numbers []string
	id      string
	err     error
}

func (v *fakeVerifier) SendVerificationCode(_ context.Context, number string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.numbers = append(v.numbers, number)
	return v.id, v.err
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	require.Equal(t, "61400000000", fedauth.FormatPhone("+61 (400) 000-000"))
	require.Equal(t, "+61400000000", fedauth.FormatPhone("+61 400 000 000", " "))
	require.Equal(t, "abc", fedauth.FormatPhone("abc", ""))
}

func TestPhoneProvider(t *testing.T) {
	t.Parallel()

	t.Run("verify phone formats number", func(t *testing.T) {
		t.Parallel()
		v := &fakeVerifier{id: "vid-1"}
		p := &fedauth.PhoneProvider{Verifier: v, Queue: fedauth.Inline}

		ctx := testContext(t)
		key, err := fedauth.Await(ctx, func(h func(*fedauth.RequestKey, error)) {
			p.VerifyPhone(ctx, "+61 400-000-000", h)
		})
		require.NoError(t, err)
		require.Equal(t, "vid-1", key.VerificationID())
		require.False(t, key.Consumed())
		require.Equal(t, []string{"61400000000"}, v.numbers)
	})

	t.Run("verify phone failure", func(t *testing.T) {
		t.Parallel()
		p := &fedauth.PhoneProvider{Verifier: &fakeVerifier{err: errors.New("quota")}, Queue: fedauth.Inline}

		ctx := testContext(t)
		_, err := fedauth.Await(ctx, func(h func(*fedauth.RequestKey, error)) {
			p.VerifyPhone(ctx, "1", h)
		})
		require.ErrorIs(t, err, fedauth.ErrUndefined)
	})

	t.Run("code and key checks", func(t *testing.T) {
		t.Parallel()
		p := &fedauth.PhoneProvider{Queue: fedauth.Inline}
		key := fedauth.NewRequestKey("vid")

		_, err := awaitCredential(t, p.WithCode(key, ""))
		require.ErrorIs(t, err, fedauth.ErrSpecifiedCodeIsEmpty)

		_, err = awaitCredential(t, p.WithCode(nil, "123456"))
		require.ErrorIs(t, err, fedauth.ErrNilRequestKey)

		_, err = awaitCredential(t, p.WithCode(fedauth.NewRequestKey(""), "123456"))
		require.ErrorIs(t, err, fedauth.ErrNilRequestKey)

		cred, err := awaitCredential(t, p.WithCode(key, "123456"))
		require.NoError(t, err)
		require.Equal(t, "vid", cred.VerificationID)
		require.Equal(t, "123456", cred.Code)
		require.False(t, key.Consumed(), "login alone does not consume the key")
	})
}
