package fedauth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

// DefaultTokenKey is the body field the federation ID token is sent in.
const DefaultTokenKey = "firebaseToken"

// ExchangeState is a step of the three-phase exchange.
type ExchangeState int

const (
	StateIdle ExchangeState = iota
	StateProviderLogin
	StateFederationSignIn
	StateBackendExchange
	StateSuccess
	StateFailed
)

func (s ExchangeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProviderLogin:
		return "provider_login"
	case StateFederationSignIn:
		return "federation_sign_in"
	case StateBackendExchange:
		return "backend_exchange"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s ExchangeState) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// RemoteAuthExchanger runs provider login, federation sign-in and the
// backend token exchange, delivering the backend's model on the
// authenticator's completion context.
type RemoteAuthExchanger struct {
	// Endpoint is the backend exchange endpoint.
	Endpoint EndpointSpec

	// TokenKey is the body field carrying the federation ID token. Defaults
	// to DefaultTokenKey.
	TokenKey string

	Federation    FederationBackend
	Authenticator *ServerAuthenticator
	Logger        *slog.Logger
	Metrics       *Metrics

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to ExchangeState)
}

// NewRemoteAuthExchanger returns an exchanger posting to endpoint.
func NewRemoteAuthExchanger(
	endpoint EndpointSpec,
	federation FederationBackend,
	authenticator *ServerAuthenticator,
) *RemoteAuthExchanger {
	if authenticator == nil {
		authenticator = NewServerAuthenticator(nil)
	}
	return &RemoteAuthExchanger{
		Endpoint:      endpoint,
		TokenKey:      DefaultTokenKey,
		Federation:    federation,
		Authenticator: authenticator,
	}
}

func (x *RemoteAuthExchanger) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.Default()
	}
	return x.Logger
}

// defaultAuthenticator serves exchangers built without one.
var defaultAuthenticator = sync.OnceValue(func() *ServerAuthenticator {
	return NewServerAuthenticator(nil)
})

// authenticator never writes to x, so a struct-literal exchanger can be
// shared between goroutines.
func (x *RemoteAuthExchanger) authenticator() *ServerAuthenticator {
	if x.Authenticator == nil {
		return defaultAuthenticator()
	}
	return x.Authenticator
}

// BuildExchangeRequest builds the POST carrying the federation ID token.
// The token field wins over any extra body field of the same name.
func (x *RemoteAuthExchanger) BuildExchangeRequest(idToken string) (*OutboundRequest, error) {
	key := x.TokenKey
	if key == "" {
		key = DefaultTokenKey
	}
	return BuildRequest(x.Endpoint, http.MethodPost, nil, map[string]any{key: idToken})
}

// Auth logs in with p against the exchanger's federation backend and
// exchanges the result for a BackendToken.
func (x *RemoteAuthExchanger) Auth(ctx context.Context, p Provider, handler func(BackendToken, error)) {
	AuthAs(ctx, x, p, handler)
}

// AuthWith is Auth driven by a caller-configured performer.
func (x *RemoteAuthExchanger) AuthWith(
	ctx context.Context,
	performer *FederatedAuthPerformer,
	handler func(BackendToken, error),
) {
	AuthWithAs(ctx, x, performer, handler)
}

// AuthIdentity skips the login phases and exchanges an identity that is
// already signed in with the exchanger's federation backend.
func (x *RemoteAuthExchanger) AuthIdentity(ctx context.Context, identity *Identity, handler func(BackendToken, error)) {
	AuthIdentityAs(ctx, x, identity, handler)
}

// AuthAs is Auth with a caller-chosen response model.
func AuthAs[T any](ctx context.Context, x *RemoteAuthExchanger, p Provider, handler func(T, error)) {
	performer := &FederatedAuthPerformer{Provider: p, Backend: x.Federation, Logger: x.Logger}
	AuthWithAs(ctx, x, performer, handler)
}

// AuthWithAs is AuthWith with a caller-chosen response model.
func AuthWithAs[T any](
	ctx context.Context,
	x *RemoteAuthExchanger,
	performer *FederatedAuthPerformer,
	handler func(T, error),
) {
	var kind ProviderKind
	if performer.Provider != nil {
		kind = performer.Provider.Kind()
	}
	ex := newExchange(x, kind, handler)

	if performer.Provider == nil || performer.Backend == nil {
		ex.q.Dispatch(func() { ex.fail(ErrUndefined) })
		return
	}

	performer.logIn(ctx, ex.q, ex.advance, func(identity *Identity, err error) {
		if err != nil {
			ex.fail(err)
			return
		}
		ex.exchange(ctx, performer.Backend, identity)
	})
}

// AuthIdentityAs is AuthIdentity with a caller-chosen response model.
func AuthIdentityAs[T any](ctx context.Context, x *RemoteAuthExchanger, identity *Identity, handler func(T, error)) {
	ex := newExchange(x, "", handler)
	ex.q.Dispatch(func() {
		if identity == nil || x.Federation == nil {
			ex.fail(ErrNilFederationIDToken)
			return
		}
		ex.exchange(ctx, x.Federation, identity)
	})
}

// ============================================================================
// exchange - one run of the state machine
// ============================================================================

type exchange[T any] struct {
	x        *RemoteAuthExchanger
	auth     *ServerAuthenticator
	q        Dispatcher
	log      *slog.Logger
	provider ProviderKind
	handler  func(T, error)

	mu    sync.Mutex
	state ExchangeState
}

func newExchange[T any](x *RemoteAuthExchanger, provider ProviderKind, handler func(T, error)) *exchange[T] {
	log := x.logger()
	if provider != "" {
		log = log.With("provider", provider)
	}
	auth := x.authenticator()
	return &exchange[T]{
		x:        x,
		auth:     auth,
		q:        auth.queue(),
		log:      log,
		provider: provider,
		handler:  handler,
	}
}

// advance moves to the next state. It reports false once the exchange is
// terminal, which discards any late continuation.
func (e *exchange[T]) advance(to ExchangeState) bool {
	e.mu.Lock()
	from := e.state
	if from.Terminal() {
		e.mu.Unlock()
		return false
	}
	e.state = to
	e.mu.Unlock()

	e.log.Debug("exchange transition", "from", from, "to", to)
	if e.x.OnTransition != nil {
		e.x.OnTransition(from, to)
	}
	return true
}

// fail and succeed must run on e.q.
func (e *exchange[T]) fail(err error) {
	if !e.advance(StateFailed) {
		return
	}
	err = envelope(err)
	e.log.Warn("exchange failed", "err", err)
	e.x.Metrics.exchangeFinished(e.provider, err)

	var zero T
	e.handler(zero, err)
}

func (e *exchange[T]) succeed(v T) {
	if !e.advance(StateSuccess) {
		return
	}
	e.x.Metrics.exchangeFinished(e.provider, nil)
	e.handler(v, nil)
}

func (e *exchange[T]) exchange(ctx context.Context, backend FederationBackend, identity *Identity) {
	if !e.advance(StateBackendExchange) {
		return
	}

	go func() {
		idToken, err := backend.IDToken(ctx, identity)
		if err != nil || idToken == "" {
			e.q.Dispatch(func() { e.fail(ErrNilFederationIDToken.WithCause(err)) })
			return
		}

		req, err := e.x.BuildExchangeRequest(idToken)
		if err != nil {
			e.q.Dispatch(func() { e.fail(err) })
			return
		}

		Execute(ctx, e.auth, req, func(v T, err error) {
			if err != nil {
				e.fail(err)
				return
			}
			e.succeed(v)
		})
	}()
}
