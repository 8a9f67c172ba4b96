package loopback

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleIssuer is Google's OIDC issuer.
const GoogleIssuer = "https://accounts.google.com"

// Facebook returns a plain OAuth flow against Facebook's endpoints. The
// resulting access token is what FacebookProvider forwards.
func Facebook(clientID, clientSecret string) *Flow {
	return &Flow{
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.Facebook,
			Scopes:       []string{"public_profile", "email"},
		},
	}
}

// OIDC discovers issuer and returns a flow verifying the id_token. Scopes
// default to openid, email and profile.
func OIDC(ctx context.Context, issuer, clientID, clientSecret string, scopes ...string) (*Flow, error) {
	if issuer == "" || clientID == "" {
		return nil, fmt.Errorf("loopback: issuer and client id are required")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("loopback: failed to discover OIDC provider: %w", err)
	}

	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	return &Flow{
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		Verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Google is OIDC against GoogleIssuer.
func Google(ctx context.Context, clientID, clientSecret string) (*Flow, error) {
	return OIDC(ctx, GoogleIssuer, clientID, clientSecret)
}
