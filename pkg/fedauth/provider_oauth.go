package fedauth

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthFlow is a popup/browser OAuth login returning the provider's token.
// loopback.Flow implements it.
type OAuthFlow interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// CredentialFlow is a federation-native OAuth login: the federation SDK runs
// the provider dance itself and hands back a ready credential.
type CredentialFlow interface {
	Credential(ctx context.Context, provider ProviderKind) (*Credential, error)
}

// ============================================================================
// Facebook
// ============================================================================

// FacebookProvider logs in through an OAuth popup and forwards the access
// token.
type FacebookProvider struct {
	Flow  OAuthFlow
	Queue Dispatcher
}

func (*FacebookProvider) isProvider()        {}
func (*FacebookProvider) Kind() ProviderKind { return ProviderFacebook }

func (p *FacebookProvider) LogIn(ctx context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)
	go func() {
		tok, err := p.Flow.Token(ctx)
		switch {
		case err != nil:
			deliver(q, handler, Credential{}, providerError(err, PhaseFacebook, ErrFacebookLogIn))
		case tok == nil || tok.AccessToken == "":
			deliver(q, handler, Credential{}, ErrNilAccessToken)
		default:
			deliver(q, handler, Credential{Provider: ProviderFacebook, AccessToken: tok.AccessToken}, nil)
		}
	}()
}

// ============================================================================
// Google
// ============================================================================

// GoogleProvider logs in through an OIDC flow and forwards the ID token.
type GoogleProvider struct {
	Flow  OAuthFlow
	Queue Dispatcher
}

func (*GoogleProvider) isProvider()        {}
func (*GoogleProvider) Kind() ProviderKind { return ProviderGoogle }

func (p *GoogleProvider) LogIn(ctx context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)
	go func() {
		tok, err := p.Flow.Token(ctx)
		if err != nil {
			deliver(q, handler, Credential{}, providerError(err, PhaseGoogle, ErrGoogleSignIn))
			return
		}
		if tok == nil {
			deliver(q, handler, Credential{}, ErrNilAuthenticationObject)
			return
		}
		idToken, _ := tok.Extra("id_token").(string)
		if idToken == "" {
			deliver(q, handler, Credential{}, ErrNilAuthenticationObject)
			return
		}
		deliver(q, handler, Credential{
			Provider:    ProviderGoogle,
			IDToken:     idToken,
			AccessToken: tok.AccessToken,
		}, nil)
	}()
}

// ============================================================================
// Twitter
// ============================================================================

// TwitterProvider obtains its credential from the federation SDK's own OAuth
// flow.
type TwitterProvider struct {
	Flow  CredentialFlow
	Queue Dispatcher
}

func (*TwitterProvider) isProvider()        {}
func (*TwitterProvider) Kind() ProviderKind { return ProviderTwitter }

func (p *TwitterProvider) LogIn(ctx context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)
	go func() {
		cred, err := p.Flow.Credential(ctx, ProviderTwitter)
		if cred == nil {
			deliver(q, handler, Credential{}, ErrNilCredential.WithCause(err))
			return
		}
		out := *cred
		out.Provider = ProviderTwitter
		deliver(q, handler, out, nil)
	}()
}
