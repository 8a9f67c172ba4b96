package fedauth

import "context"

// ProviderKind names an identity provider. Values match the provider ids
// federation backends use.
type ProviderKind string

const (
	ProviderApple    ProviderKind = "apple.com"
	ProviderFacebook ProviderKind = "facebook.com"
	ProviderGoogle   ProviderKind = "google.com"
	ProviderTwitter  ProviderKind = "twitter.com"
	ProviderPhone    ProviderKind = "phone"
	ProviderPassword ProviderKind = "password"
)

// Credential is the provider-specific payload a login produces. It is
// consumed once by the federation sign-in and never cached.
type Credential struct {
	Provider ProviderKind

	// IDToken is the provider-issued identity token (Apple, Google).
	IDToken string
	// AccessToken is the OAuth access token (Facebook, Google, Twitter).
	AccessToken string
	// Secret is the OAuth 1.0a token secret (Twitter).
	Secret string
	// RawNonce is the unhashed nonce whose digest was sent to the provider.
	RawNonce string

	GivenName  string
	FamilyName string
	Email      string

	// Password is only set for ProviderPassword.
	Password string

	// VerificationID and Code are only set for ProviderPhone.
	VerificationID string
	Code           string
}

// Provider is the closed set of login variants: Apple, Facebook, Google,
// Twitter, phone and password. Each normalizes its collaborator's outcome
// into a Credential or an *AuthError delivered on the provider's queue.
type Provider interface {
	Kind() ProviderKind
	LogIn(ctx context.Context, handler func(Credential, error))

	isProvider()
}

// attemptObserver is implemented by providers whose state depends on the
// outcome of the federation sign-in that consumed their credential.
// attemptStarted runs before the sign-in and may refuse it; attemptFinished
// runs after every sign-in attemptStarted allowed.
type attemptObserver interface {
	attemptStarted() error
	attemptFinished(err error)
}

// deliver hands a provider result to handler on q.
func deliver(q Dispatcher, handler func(Credential, error), cred Credential, err error) {
	q.Dispatch(func() {
		if err != nil {
			handler(Credential{}, err)
			return
		}
		handler(cred, nil)
	})
}

// providerError keeps errors the collaborator already attributed to phase
// and wraps everything else with wrap.
func providerError(err error, phase Phase, wrap *AuthError) *AuthError {
	if ae, ok := AsAuthError(err); ok && ae.Phase == phase {
		return ae
	}
	return wrap.WithCause(err)
}
