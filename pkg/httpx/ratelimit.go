package httpx

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a token bucket: Requests per Window, with up to Burst spent at
// once. A zero Burst means Requests.
type Limit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

func (l Limit) String() string {
	s := strconv.Itoa(l.Requests) + "/" + l.Window.String()
	if l.Burst > 0 && l.Burst != l.Requests {
		s += "+" + strconv.Itoa(l.Burst)
	}
	return s
}

func (l Limit) burst() int {
	if l.Burst > 0 {
		return l.Burst
	}
	return l.Requests
}

func (l Limit) valid() bool {
	return l.Requests > 0 && l.Window > 0
}

// ParseLimit reads "requests/window" with an optional "+burst", for
// example "5/1m" or "20/30s+40".
func ParseLimit(s string) (Limit, error) {
	reqs, rest, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Limit{}, fmt.Errorf("rate limit %q: want requests/window", s)
	}
	window, burst, hasBurst := strings.Cut(rest, "+")

	var (
		l   Limit
		err error
	)
	if l.Requests, err = strconv.Atoi(reqs); err != nil {
		return Limit{}, fmt.Errorf("rate limit %q: requests: %w", s, err)
	}
	if l.Window, err = time.ParseDuration(window); err != nil {
		return Limit{}, fmt.Errorf("rate limit %q: window: %w", s, err)
	}
	if hasBurst {
		if l.Burst, err = strconv.Atoi(burst); err != nil {
			return Limit{}, fmt.Errorf("rate limit %q: burst: %w", s, err)
		}
	}
	if !l.valid() || l.Burst < 0 {
		return Limit{}, fmt.Errorf("rate limit %q: requests and window must be positive", s)
	}
	return l, nil
}

// Limits are the per-class budgets the emulator applies to its routes.
type Limits struct {
	// Strict covers password sign-in and SMS, where guessing is the threat.
	Strict Limit
	// Moderate covers token exchange and refresh.
	Moderate Limit
	// Lenient covers account creation, developer and health endpoints.
	Lenient Limit
	// Public covers cacheable reads such as the JWKS.
	Public Limit

	// Disabled turns every limiter into a pass-through.
	Disabled bool
}

func DefaultLimits() Limits {
	return Limits{
		Strict:   Limit{Requests: 5, Window: time.Minute},
		Moderate: Limit{Requests: 20, Window: time.Minute},
		Lenient:  Limit{Requests: 100, Window: time.Minute},
		Public:   Limit{Requests: 300, Window: time.Minute},
	}
}

// LimitsFromEnv overlays prefix+STRICT, MODERATE, LENIENT and PUBLIC (in
// ParseLimit form) and prefix+DISABLED on base. Values that do not parse
// are reported and leave the base value in place.
func LimitsFromEnv(prefix string, base Limits) (Limits, []error) {
	var errs []error
	for _, f := range []struct {
		name string
		dst  *Limit
	}{
		{"STRICT", &base.Strict},
		{"MODERATE", &base.Moderate},
		{"LENIENT", &base.Lenient},
		{"PUBLIC", &base.Public},
	} {
		v := os.Getenv(prefix + f.name)
		if v == "" {
			continue
		}
		l, err := ParseLimit(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", prefix, f.name, err))
			continue
		}
		*f.dst = l
	}

	if v := os.Getenv(prefix + "DISABLED"); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDISABLED: %w", prefix, err))
		} else {
			base.Disabled = disabled
		}
	}
	return base, errs
}

// Limiter keeps one token bucket per key. Buckets idle for longer than
// the limit's window are dropped on the next sweep; a bucket idle that
// long has refilled anyway.
type Limiter struct {
	limit Limit
	every rate.Limit

	// OnReject, when set, is called for every request turned away.
	OnReject func(r *http.Request, key string)

	// now defaults to time.Now.
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// NewLimiter panics on a limit with no requests or no window.
func NewLimiter(limit Limit) *Limiter {
	if !limit.valid() {
		panic(fmt.Sprintf("httpx: invalid rate limit %v", limit))
	}
	return &Limiter{
		limit:   limit,
		every:   rate.Limit(float64(limit.Requests) / limit.Window.Seconds()),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow spends one token for key. When there is none it reports how long
// until there will be.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweepAt) {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.every, l.limit.burst())}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.tokens.ReserveN(now, 1)
	if !res.OK() {
		return false, l.limit.Window
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Len is the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.limit.Window {
			delete(l.buckets, key)
		}
	}
	l.sweepAt = now.Add(l.limit.Window)
}

// Middleware limits requests grouped by key. Requests without a key pass.
func (l *Limiter) Middleware(key KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Debug("rate limit: no key, not limiting", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			w.Header().Set("X-RateLimit-Limit", l.limit.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			if l.OnReject != nil {
				l.OnReject(r, k)
			}
			WriteError(w, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS_TRY_LATER")
		})
	}
}
