package fedauth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// fakeFederation records sign-ins and hands out a fixed ID token. With a
// gate, SignIn announces itself on entered and blocks until gate closes.
type fakeFederation struct {
	mu      sync.Mutex
	signIns []fedauth.Credential

	gate    chan struct{}
	entered chan struct{}

	signInErr  error
	idToken    string
	idTokenErr error
}

func (f *fakeFederation) SignIn(ctx context.Context, cred fedauth.Credential) (*fedauth.Identity, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, cred)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &fedauth.Identity{UID: "uid-1", ProviderID: cred.Provider, Email: cred.Email}, nil
}

func (f *fakeFederation) IDToken(context.Context, *fedauth.Identity) (string, error) {
	return f.idToken, f.idTokenErr
}

func (f *fakeFederation) SignOut() error { return nil }

func (f *fakeFederation) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signIns)
}

// recordingServer answers every request with status and body and keeps the
// decoded JSON bodies it received.
type recordingServer struct {
	*httptest.Server

	mu     sync.Mutex
	bodies []map[string]any
}

func newRecordingServer(t *testing.T, status int, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)

		rs.mu.Lock()
		rs.bodies = append(rs.bodies, decoded)
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) hits() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.bodies)
}

func (rs *recordingServer) lastBody(t *testing.T) map[string]any {
	t.Helper()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	require.NotEmpty(t, rs.bodies)
	return rs.bodies[len(rs.bodies)-1]
}

// inlineAuthenticator delivers on the calling goroutine.
func inlineAuthenticator(opts ...fedauth.TransportOption) *fedauth.ServerAuthenticator {
	a := fedauth.NewServerAuthenticator(fedauth.NewExecutor(opts...))
	a.Queue = fedauth.Inline
	return a
}

func awaitCredential(t *testing.T, p fedauth.Provider) (fedauth.Credential, error) {
	t.Helper()
	ctx := testContext(t)
	return fedauth.Await(ctx, func(h func(fedauth.Credential, error)) {
		p.LogIn(ctx, h)
	})
}
