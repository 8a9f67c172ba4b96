package fedauth

import (
	"context"
	"log/slog"
)

// Identity is the federation backend's sign-in result. Session is opaque to
// the core; backends keep whatever they need there to mint ID tokens.
type Identity struct {
	UID         string
	ProviderID  ProviderKind
	Email       string
	DisplayName string
	PhoneNumber string
	IsNewUser   bool

	Session any
}

// FederationBackend is the intermediary identity service credentials are
// exchanged with.
type FederationBackend interface {
	SignIn(ctx context.Context, cred Credential) (*Identity, error)
	IDToken(ctx context.Context, identity *Identity) (string, error)
	SignOut() error
}

// FederatedAuthPerformer pairs a Provider with a FederationBackend: provider
// login first, federation sign-in second.
type FederatedAuthPerformer struct {
	Provider Provider
	Backend  FederationBackend
	Queue    Dispatcher
	Logger   *slog.Logger
}

// WithProvider returns a copy of the performer using p.
func (f *FederatedAuthPerformer) WithProvider(p Provider) *FederatedAuthPerformer {
	cp := *f
	cp.Provider = p
	return &cp
}

func (f *FederatedAuthPerformer) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// LogIn runs the provider login and, when it succeeds, the federation
// sign-in. Provider errors are passed through untouched; sign-in errors are
// reported as ErrFederationSignIn.
func (f *FederatedAuthPerformer) LogIn(ctx context.Context, handler func(*Identity, error)) {
	q := queueOrMain(f.Queue)
	if f.Provider == nil || f.Backend == nil {
		q.Dispatch(func() { handler(nil, ErrUndefined) })
		return
	}
	f.logIn(ctx, q, func(ExchangeState) bool { return true }, handler)
}

// logIn reports phase changes through onPhase, which the exchanger uses to
// drive its state machine. A false return stops the login.
func (f *FederatedAuthPerformer) logIn(
	ctx context.Context,
	q Dispatcher,
	onPhase func(ExchangeState) bool,
	handler func(*Identity, error),
) {
	log := f.logger().With("provider", f.Provider.Kind())
	if !onPhase(StateProviderLogin) {
		return
	}

	f.Provider.LogIn(ctx, func(cred Credential, err error) {
		if err != nil {
			log.Debug("provider login failed", "err", err)
			q.Dispatch(func() { handler(nil, envelope(err)) })
			return
		}

		if !onPhase(StateFederationSignIn) {
			return
		}
		observer, observed := f.Provider.(attemptObserver)
		if observed {
			if err := observer.attemptStarted(); err != nil {
				log.Debug("sign in attempt refused", "err", err)
				q.Dispatch(func() { handler(nil, envelope(err)) })
				return
			}
		}
		go func() {
			identity, err := f.Backend.SignIn(ctx, cred)
			if observed {
				observer.attemptFinished(signInResult(identity, err))
			}
			q.Dispatch(func() {
				if err != nil || identity == nil {
					log.Debug("federation sign in failed", "err", err)
					handler(nil, ErrFederationSignIn.WithCause(err))
					return
				}
				handler(identity, nil)
			})
		}()
	})
}

func signInResult(identity *Identity, err error) error {
	if err != nil {
		return err
	}
	if identity == nil {
		return ErrFederationSignIn
	}
	return nil
}
