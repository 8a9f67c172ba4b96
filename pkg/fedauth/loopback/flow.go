// Package loopback runs a browser based OAuth authorization-code login with a
// redirect listener on 127.0.0.1. A Flow satisfies fedauth.OAuthFlow and so
// backs the Facebook and Google providers outside of a mobile platform.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DefaultCallbackPath is where the provider redirects back to.
const DefaultCallbackPath = "/callback"

var (
	ErrStateMismatch   = errors.New("loopback: invalid state in callback")
	ErrMissingCode     = errors.New("loopback: missing code in callback")
	ErrDenied          = errors.New("loopback: authorization denied")
	ErrMissingIDToken  = errors.New("loopback: token response has no id_token")
	ErrNonceMismatch   = errors.New("loopback: id_token nonce mismatch")
	ErrExchangeFailure = errors.New("loopback: token exchange failed")
)

// Flow is one provider's authorization-code login. RedirectURL in Config is
// replaced on every run with the listener's address.
type Flow struct {
	Config oauth2.Config

	// Verifier, when set, verifies the id_token of the response and binds
	// it to a per-run nonce.
	Verifier *oidc.IDTokenVerifier

	// AuthParams are extra authorization URL parameters.
	AuthParams map[string]string

	// ListenAddr defaults to 127.0.0.1:0.
	ListenAddr   string
	CallbackPath string

	// HTTPClient is used for the code exchange.
	HTTPClient *http.Client

	// OpenURL presents the authorization URL. Defaults to printing it to
	// Prompt and starting the system browser.
	OpenURL func(authURL string) error
	Prompt  io.Writer

	Logger *slog.Logger
}

var _ fedauth.OAuthFlow = (*Flow)(nil)

type callbackResult struct {
	tok *oauth2.Token
	err error
}

// Token runs the login and blocks until the provider redirects back, the
// callback fails or ctx is done.
func (f *Flow) Token(ctx context.Context) (*oauth2.Token, error) {
	log := f.logger()

	listenAddr := f.ListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	path := f.CallbackPath
	if path == "" {
		path = DefaultCallbackPath
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("loopback: failed to start callback listener: %w", err)
	}
	defer func() {
		_ = listener.Close()
	}()

	cfg := f.Config
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), path)

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	var nonce string
	if f.Verifier != nil {
		if nonce, err = cryptox.GenerateNonce(); err != nil {
			return nil, err
		}
		opts = append(opts, oidc.Nonce(nonce))
	}
	for k, v := range f.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	authURL := cfg.AuthCodeURL(state, opts...)

	exchangeCtx := ctx
	if f.HTTPClient != nil {
		exchangeCtx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}

	resultCh := make(chan callbackResult, 1)
	finish := func(r callbackResult) {
		select {
		case resultCh <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			finish(callbackResult{err: ErrStateMismatch})
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			finish(callbackResult{err: fmt.Errorf("%w: %s %s", ErrDenied, e, q.Get("error_description"))})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			finish(callbackResult{err: ErrMissingCode})
			return
		}

		tok, err := cfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			finish(callbackResult{err: fmt.Errorf("%w: %w", ErrExchangeFailure, err)})
			return
		}
		if err := f.verify(exchangeCtx, tok, nonce); err != nil {
			http.Error(w, "id token rejected", http.StatusUnauthorized)
			finish(callbackResult{err: err})
			return
		}

		_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
		finish(callbackResult{tok: tok})
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		_ = server.Close()
	}()

	log.Debug("loopback login started", "redirect_url", cfg.RedirectURL)
	if err := f.open(authURL); err != nil {
		log.Warn("failed to open browser", "err", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		return r.tok, r.err
	}
}

func (f *Flow) verify(ctx context.Context, tok *oauth2.Token, nonce string) error {
	if f.Verifier == nil {
		return nil
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return ErrMissingIDToken
	}
	idt, err := f.Verifier.Verify(ctx, raw)
	if err != nil {
		return fmt.Errorf("loopback: verify id_token: %w", err)
	}
	if idt.Nonce != nonce {
		return ErrNonceMismatch
	}
	return nil
}

func (f *Flow) open(authURL string) error {
	if f.OpenURL != nil {
		return f.OpenURL(authURL)
	}
	prompt := f.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	_, _ = fmt.Fprintf(prompt, "Open the following URL in your browser:\n%s\n", authURL)
	return openBrowser(authURL)
}

func (f *Flow) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
