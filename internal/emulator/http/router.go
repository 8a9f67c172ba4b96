package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"

	_ "github.com/aussiebroadwan/fedauth/api/emulator" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *Metrics

	// APIKey, when set, must be passed as ?key= to the federation
	// endpoints. Empty accepts any key.
	APIKey string

	// Limits must be set before ApplyRoutes.
	Limits httpx.Limits

	AccountService     *service.AccountService
	TokenService       *service.TokenService
	PhoneService       *service.PhoneService
	ExchangeService    *service.ExchangeService
	KeyRotationService *service.KeyRotationService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		metrics:      NewMetrics(),
		Limits:       httpx.DefaultLimits(),
	}

	// The metrics middleware must wrap the mux directly to see r.Pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFederation()
	r.registerSecureToken()
	r.registerBackend()
	r.registerEmulator()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			fedauth Emulator API
//	@version		0.1.0
//	@description	Local stand-in for the two remote services the fedauth SDK talks to: an Identity Toolkit style
//	@description	federation backend (/v1/...) and an application backend that exchanges federation ID tokens for
//	@description	its own token pair (/api/auth/...).
//	@description
//	@description				Every token is an EdDSA (Ed25519) JWT and can be verified with the JWKS endpoint.
//	@description				SMS codes are never sent: they are logged and listed at /emulator/v1/verificationCodes.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/fedauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:9099
//	@BasePath					/
//
//	@schemes					http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Backend access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// requireAPIKey rejects federation calls whose ?key= does not match APIKey.
func (r *Router) requireAPIKey() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.APIKey != "" && req.URL.Query().Get("key") != r.APIKey {
				httpx.WriteError(w, http.StatusBadRequest, "API_KEY_INVALID : API key not valid. Please pass a valid API key.")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// limiter returns a middleware with its own buckets. Disabled limits pass
// everything.
func (r *Router) limiter(limit httpx.Limit, key httpx.KeyExtractor) httpx.Middleware {
	if r.Limits.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	l := httpx.NewLimiter(limit)
	l.OnReject = func(req *http.Request, _ string) {
		r.metrics.RateLimited.WithLabelValues(routeLabel(req)).Inc()
	}
	return l.Middleware(key)
}

func (r *Router) byIP(limit httpx.Limit) httpx.Middleware {
	return r.limiter(limit, httpx.IPKeyExtractor)
}

func (r *Router) byIPAndField(limit httpx.Limit, field string) httpx.Middleware {
	return r.limiter(limit, httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.JSONFieldKeyExtractor(field)))
}

func (r *Router) byUser(limit httpx.Limit) httpx.Middleware {
	return r.limiter(limit, httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor))
}

func (r *Router) registerFederation() {
	h := &AccountsHandler{
		AccountService: r.AccountService,
		PhoneService:   r.PhoneService,
	}
	apiKey := r.requireAPIKey()

	// Account creation - lenient, by IP
	r.Mux.Handle("POST /v1/accounts:signUp",
		httpx.Chain(http.HandlerFunc(h.HandleSignUp),
			apiKey,
			r.byIP(r.Limits.Lenient),
		),
	)

	// Password sign-in - strict, by IP + email to slow down guessing
	r.Mux.Handle("POST /v1/accounts:signInWithPassword",
		httpx.Chain(http.HandlerFunc(h.HandleSignInWithPassword),
			apiKey,
			r.byIPAndField(r.Limits.Strict, "email"),
		),
	)

	r.Mux.Handle("POST /v1/accounts:signInWithIdp",
		httpx.Chain(http.HandlerFunc(h.HandleSignInWithIdp),
			apiKey,
			r.byIP(r.Limits.Moderate),
		),
	)

	// SMS - strict, by IP + number
	r.Mux.Handle("POST /v1/accounts:sendVerificationCode",
		httpx.Chain(http.HandlerFunc(h.HandleSendVerificationCode),
			apiKey,
			r.byIPAndField(r.Limits.Strict, "phoneNumber"),
		),
	)
	r.Mux.Handle("POST /v1/accounts:signInWithPhoneNumber",
		httpx.Chain(http.HandlerFunc(h.HandleSignInWithPhoneNumber),
			apiKey,
			r.byIPAndField(r.Limits.Strict, "sessionInfo"),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			r.byIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerSecureToken() {
	h := &SecureTokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/token",
		httpx.Chain(h,
			r.requireAPIKey(),
			r.byIP(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerBackend() {
	h := &ExchangeHandler{
		ExchangeService: r.ExchangeService,
		AccountService:  r.AccountService,
	}

	r.Mux.Handle("POST /api/auth/exchange",
		httpx.Chain(http.HandlerFunc(h.HandleExchange),
			r.byIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /api/auth/phone/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyPhone),
			r.byIPAndField(r.Limits.Strict, "phone"),
		),
	)
	r.Mux.Handle("POST /api/auth/phone/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirmPhone),
			r.byIPAndField(r.Limits.Strict, "key"),
		),
	)

	// Authenticated endpoint - backend access tokens only
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier, jwtx.TokenUseAccess),
			r.byUser(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerEmulator() {
	e := &EmulatorHandler{
		PhoneService:   r.PhoneService,
		AccountService: r.AccountService,
	}
	k := &KeyRotationHandler{KeyRotationService: r.KeyRotationService}

	// Developer endpoints - lenient, by IP
	limit := r.byIP(r.Limits.Lenient)

	r.Mux.Handle("GET /emulator/v1/verificationCodes", httpx.Chain(http.HandlerFunc(e.HandleListCodes), limit))
	r.Mux.Handle("DELETE /emulator/v1/accounts", httpx.Chain(http.HandlerFunc(e.HandleReset), limit))
	r.Mux.Handle("POST /emulator/v1/keys:rotate", httpx.Chain(http.HandlerFunc(k.HandleRotate), limit))
	r.Mux.Handle("GET /emulator/v1/keys", httpx.Chain(http.HandlerFunc(k.HandleListKeys), limit))
	r.Mux.Handle("POST /emulator/v1/keys/{kid}/retire", httpx.Chain(http.HandlerFunc(k.HandleRetireKey), limit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.byIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			r.byIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
