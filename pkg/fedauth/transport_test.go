package fedauth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/idx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTransportConcurrentRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	metrics := fedauth.NewMetrics(reg)
	tr := fedauth.NewTransport(fedauth.WithMetrics(metrics))

	req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodPost, nil, nil)
	require.NoError(t, err)

	const n = 25
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ids   = make(map[idx.ID]struct{})
		codes []int
	)
	wg.Add(n)
	for range n {
		id := tr.Execute(context.Background(), req, func(body []byte, resp *http.Response, err error) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				codes = append(codes, resp.StatusCode)
			}
		})
		mu.Lock()
		ids[id] = struct{}{}
		mu.Unlock()
	}
	wg.Wait()

	require.Len(t, ids, n, "task ids must be unique")
	require.Len(t, codes, n)
	for _, c := range codes {
		require.Equal(t, http.StatusOK, c)
	}
	require.Zero(t, tr.InFlight())
	require.Equal(t, float64(n), testutil.ToFloat64(metrics.Requests.WithLabelValues("ok")))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestTransportCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	tr := fedauth.NewTransport()
	req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodGet, nil, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	id := tr.Execute(context.Background(), req, func(_ []byte, _ *http.Response, err error) {
		done <- err
	})

	require.Eventually(t, func() bool { return tr.InFlight() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, tr.Cancel(id))

	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(testTimeout):
		t.Fatal("completion never fired")
	}
	require.Zero(t, tr.InFlight())
	require.False(t, tr.Cancel(id), "finished task is no longer live")
}

func TestTransportTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodGet, nil, nil)
	require.NoError(t, err)
	req.Timeout = 20 * time.Millisecond

	done := make(chan error, 1)
	fedauth.NewTransport().Execute(context.Background(), req, func(_ []byte, _ *http.Response, err error) {
		done <- err
	})

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(testTimeout):
		t.Fatal("completion never fired")
	}
}
