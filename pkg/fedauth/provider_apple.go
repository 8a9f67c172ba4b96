package fedauth

import (
	"context"

	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// Apple scopes.
const (
	AppleScopeFullName = "name"
	AppleScopeEmail    = "email"
)

// AppleIDRequest is what the platform sign-in receives. Nonce is the hex
// SHA-256 digest of the raw nonce the provider keeps.
type AppleIDRequest struct {
	Scopes []string
	Nonce  string
}

// AppleIDCredential is the credential the platform returns on success.
type AppleIDCredential struct {
	User          string
	IdentityToken string
	// Nonce echoes the digest from the request.
	Nonce      string
	GivenName  string
	FamilyName string
	Email      string
}

// AppleAuthorization wraps whatever credential the platform produced. Only
// *AppleIDCredential is accepted.
type AppleAuthorization struct {
	Credential any
}

// AppleSignIn is the platform identity collaborator.
type AppleSignIn interface {
	Authorize(ctx context.Context, req AppleIDRequest) (AppleAuthorization, error)
}

// AppleProvider logs in with the platform ID service using a fresh nonce per
// attempt.
type AppleProvider struct {
	Service AppleSignIn
	Scopes  []string
	Queue   Dispatcher
}

func (*AppleProvider) isProvider()        {}
func (*AppleProvider) Kind() ProviderKind { return ProviderApple }

// LogIn generates a nonce, asks the platform to authorize with its digest
// and validates the returned credential.
func (p *AppleProvider) LogIn(ctx context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)

	raw, err := cryptox.GenerateNonce()
	if err != nil {
		deliver(q, handler, Credential{}, ErrAppleAuthorization.WithCause(err))
		return
	}
	hashed := cryptox.HashNonce(raw)

	scopes := p.Scopes
	if scopes == nil {
		scopes = []string{AppleScopeFullName, AppleScopeEmail}
	}

	go func() {
		auth, err := p.Service.Authorize(ctx, AppleIDRequest{Scopes: scopes, Nonce: hashed})
		cred, err := appleCredential(auth, err, raw, hashed)
		deliver(q, handler, cred, err)
	}()
}

func appleCredential(auth AppleAuthorization, err error, raw, hashed string) (Credential, error) {
	if err != nil {
		return Credential{}, providerError(err, PhaseApple, ErrAppleAuthorization)
	}

	c, ok := auth.Credential.(*AppleIDCredential)
	if !ok || c == nil {
		return Credential{}, ErrNilAppleIDCredential
	}
	if c.IdentityToken == "" {
		return Credential{}, ErrNilAuthorizationToken
	}
	if c.Nonce == "" || c.Nonce != hashed {
		return Credential{}, ErrInvalidNonce
	}

	// Identity tokens carry the digest as a claim; reject a mismatch early
	// instead of letting the federation backend do it.
	if claims, err := jwtx.ParseUnverified(c.IdentityToken); err == nil &&
		claims.Nonce != "" && claims.Nonce != hashed {
		return Credential{}, ErrInvalidNonce
	}

	return Credential{
		Provider:   ProviderApple,
		IDToken:    c.IdentityToken,
		RawNonce:   raw,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		Email:      c.Email,
	}, nil
}
