package fedauth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/idx"
)

// Completion receives the outcome of one transport call. Exactly one of err
// or resp is meaningful; body is the fully read response payload.
type Completion func(body []byte, resp *http.Response, err error)

// Worker executes outbound requests. Transport is the production
// implementation; tests substitute their own.
type Worker interface {
	Execute(ctx context.Context, req *OutboundRequest, completion Completion) idx.ID
}

// Transport executes requests on net/http, one attempt per call, tracking
// each in-flight task by a ULID until its completion fires.
type Transport struct {
	client  *http.Client
	log     *slog.Logger
	metrics *Metrics

	mu     sync.Mutex
	active map[idx.ID]context.CancelFunc
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the transport logger.
func WithLogger(l *slog.Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *Metrics) TransportOption {
	return func(t *Transport) { t.metrics = m }
}

// NewTransport returns a Transport with an empty tracking table.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		client: &http.Client{},
		log:    slog.Default(),
		active: make(map[idx.ID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Execute starts req and returns its task id. completion is invoked exactly
// once, after the task has been removed from the tracking table.
func (t *Transport) Execute(ctx context.Context, req *OutboundRequest, completion Completion) idx.ID {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	id := t.track(cancel)
	t.metrics.transportStarted()

	t.log.Debug("transport task started", "task_id", id, "method", req.Method, "url", req.URL)
	go t.run(taskCtx, id, req, completion, time.Now())
	return id
}

// Cancel aborts an in-flight task. The task's completion still fires once,
// with a transport error. Reports false when id is not live.
func (t *Transport) Cancel(id idx.ID) bool {
	t.mu.Lock()
	cancel, ok := t.active[id]
	t.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// InFlight returns the number of live tasks.
func (t *Transport) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *Transport) track(cancel context.CancelFunc) idx.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		id := idx.New()
		if _, exists := t.active[id]; !exists {
			t.active[id] = cancel
			return id
		}
	}
}

// finish drops the tracking entry and cancels the task context. Safe to call
// more than once.
func (t *Transport) finish(id idx.ID) {
	t.mu.Lock()
	cancel, ok := t.active[id]
	delete(t.active, id)
	t.mu.Unlock()
	if ok {
		cancel()
	}
}

func (t *Transport) run(
	ctx context.Context,
	id idx.ID,
	req *OutboundRequest,
	completion Completion,
	started time.Time,
) {
	var (
		body []byte
		resp *http.Response
	)

	httpReq, err := req.HTTPRequest(ctx)
	if err == nil {
		resp, err = t.client.Do(httpReq)
		if err == nil {
			body, err = io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(body))
		}
	}

	t.finish(id)

	outcome := transportOutcome(resp, err)
	t.metrics.transportFinished(outcome, time.Since(started))
	t.log.Debug("transport task finished",
		"task_id", id,
		"outcome", outcome,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	completion(body, resp, err)
}

func transportOutcome(resp *http.Response, err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case err != nil:
		return "transport_error"
	case resp == nil:
		return "no_response"
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "http_error"
	default:
		return "ok"
	}
}
