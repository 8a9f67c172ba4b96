package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/spf13/cobra"
)

// DefaultJWKSPath is where the emulator publishes its signing keys.
const DefaultJWKSPath = "/.well-known/jwks.json"

type inspectOutput struct {
	Verified  bool       `json:"verified" yaml:"verified"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Audience  []string   `json:"audience,omitempty" yaml:"audience,omitempty"`
	TokenUse  string     `json:"tokenUse,omitempty" yaml:"tokenUse,omitempty"`
	Provider  string     `json:"provider,omitempty" yaml:"provider,omitempty"`
	Email     string     `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string     `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
}

func newInspectOutput(c *jwtx.Claims, verified bool) inspectOutput {
	out := inspectOutput{
		Verified: verified,
		Subject:  c.Subject,
		Issuer:   c.Issuer,
		Audience: c.Audience,
		TokenUse: c.TokenUse,
		Provider: c.Provider,
		Email:    c.Email,
		Phone:    c.PhoneNumber,
	}
	if c.IssuedAt != nil {
		t := c.IssuedAt.Time
		out.IssuedAt = &t
	}
	if c.ExpiresAt != nil {
		t := c.ExpiresAt.Time
		out.ExpiresAt = &t
		out.Expired = time.Now().After(t)
	}
	return out
}

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with issued tokens",
	}
	cmd.AddCommand(newTokenInspectCommand())
	return cmd
}

func newTokenInspectCommand() *cobra.Command {
	var (
		verify  bool
		jwksURL string
		issuer  string
	)

	cmd := &cobra.Command{
		Use:   "inspect [token|-]",
		Short: "Decode a JWT, optionally checking its signature",
		Long: "Decodes an ID or access token. With --verify the signature is checked " +
			"against the backend's JWKS. Reads the token from stdin when it is omitted or \"-\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			raw := "-"
			if len(args) == 1 {
				raw = args[0]
			}
			token, err := readToken(raw, cmd.InOrStdin())
			if err != nil {
				return err
			}

			claims, err := jwtx.ParseUnverified(token)
			if err != nil {
				return fmt.Errorf("not a JWT: %w", err)
			}
			if !verify && jwksURL == "" {
				return rt.print(newInspectOutput(claims, false))
			}

			if jwksURL == "" {
				jwksURL = rt.profile.BackendURL(DefaultJWKSPath)
			}
			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			req, err := fedauth.BuildRequest(fedauth.Endpoint(jwksURL), http.MethodGet, nil, nil)
			if err != nil {
				return err
			}
			jwks, _, err := fedauth.Do[jwtx.JWKS](ctx, rt.executor(), req)
			if err != nil {
				return fmt.Errorf("fetch jwks: %w", err)
			}
			if jwks == nil {
				return errors.New("fetch jwks: empty response")
			}

			keys := jwtx.NewKeySet()
			if err := keys.ResetFromJWKS(*jwks); err != nil {
				return fmt.Errorf("parse jwks: %w", err)
			}
			verified, err := jwtx.NewVerifierEdDSA(keys, issuer, nil).Verify(token)
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			return rt.print(newInspectOutput(&verified, true))
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the signature against the backend JWKS")
	cmd.Flags().StringVar(&jwksURL, "jwks", "", "JWKS URL (implies --verify)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Required issuer when verifying")
	return cmd
}

func readToken(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("no token given")
	}
	return token, nil
}
