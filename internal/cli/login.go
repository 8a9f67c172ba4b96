package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/loopback"
	"github.com/spf13/cobra"
)

// tokenOutput is what every successful login prints.
type tokenOutput struct {
	AccessToken  string     `json:"accessToken" yaml:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
	Subject      string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Provider     string     `json:"provider,omitempty" yaml:"provider,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

func newTokenOutput(tok fedauth.BackendToken) tokenOutput {
	out := tokenOutput{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if claims, err := tok.AccessClaims(); err == nil {
		out.Subject = claims.Subject
		out.Provider = claims.Provider
	}
	if exp, ok := tok.ExpiresAt(); ok {
		out.ExpiresAt = &exp
	}
	return out
}

func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a provider and exchange for a backend token",
	}
	cmd.AddCommand(newLoginPasswordCommand(), newLoginOAuthCommand())
	return cmd
}

func newLoginPasswordCommand() *cobra.Command {
	var (
		email       string
		password    string
		signUp      bool
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("FEDAUTH_PASSWORD")
			}

			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			federation := rt.federation()
			x := rt.exchanger(federation)

			var tok fedauth.BackendToken
			if signUp {
				identity, err := federation.SignUp(ctx, email, password, displayName)
				if err != nil {
					return fmt.Errorf("sign up failed: %w", err)
				}
				tok, err = fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
					x.AuthIdentity(ctx, identity, h)
				})
				if err != nil {
					return err
				}
			} else {
				tok, err = fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
					x.Auth(ctx, fedauth.NewPasswordProvider(email, password), h)
				})
				if err != nil {
					return err
				}
			}
			return rt.print(newTokenOutput(tok))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or FEDAUTH_PASSWORD)")
	cmd.Flags().BoolVar(&signUp, "sign-up", false, "Create the account first")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name for --sign-up")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginOAuthCommand() *cobra.Command {
	var (
		provider   string
		listenAddr string
	)

	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Sign in through a browser OAuth flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := rt.interactiveContext(cmd)
			defer cancel()

			p, err := rt.oauthProvider(ctx, provider, listenAddr)
			if err != nil {
				return err
			}

			x := rt.exchanger(rt.federation())
			tok, err := fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
				x.Auth(ctx, p, h)
			})
			if err != nil {
				return err
			}
			return rt.print(newTokenOutput(tok))
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "OAuth provider: facebook or google")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "Callback listen address (default: random loopback port)")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

// interactiveContext waits for the user rather than the request timeout.
func (rt *runtimeState) interactiveContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 5*time.Minute)
}

func (rt *runtimeState) oauthProvider(ctx context.Context, name, listenAddr string) (fedauth.Provider, error) {
	var (
		flow *loopback.Flow
		p    fedauth.Provider
	)

	switch strings.ToLower(name) {
	case "facebook", string(fedauth.ProviderFacebook):
		c := rt.profile.OAuth.Facebook
		if c.ClientID == "" {
			return nil, errors.New("facebook client-id is not configured")
		}
		flow = loopback.Facebook(c.ClientID, c.ClientSecret)
		p = &fedauth.FacebookProvider{Flow: flow, Queue: fedauth.Inline}

	case "google", string(fedauth.ProviderGoogle):
		c := rt.profile.OAuth.Google
		if c.ClientID == "" {
			return nil, errors.New("google client-id is not configured")
		}
		issuer := c.Issuer
		if issuer == "" {
			issuer = loopback.GoogleIssuer
		}
		var err error
		flow, err = loopback.OIDC(ctx, issuer, c.ClientID, c.ClientSecret)
		if err != nil {
			return nil, err
		}
		p = &fedauth.GoogleProvider{Flow: flow, Queue: fedauth.Inline}

	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}

	flow.ListenAddr = listenAddr
	flow.Logger = rt.logger
	flow.Prompt = rt.errWriter()
	flow.OpenURL = rt.opts.OpenURL
	return p, nil
}
