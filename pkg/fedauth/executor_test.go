package fedauth_test

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/stretchr/testify/require"
)

type countingDecoder struct{ n atomic.Int32 }

func (d *countingDecoder) Decode(data []byte, v any) error {
	d.n.Add(1)
	return json.Unmarshal(data, v)
}

type tokenPair struct {
	AccessToken string `json:"accessToken"`
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantModel  bool
		wantDecode int32
	}{
		{"ok", http.StatusOK, `{"accessToken":"a"}`, nil, true, 1},
		{"unauthorized skips decoding", http.StatusUnauthorized, `{"accessToken":"a"}`, fedauth.ErrInvalidHTTPStatusCode, false, 0},
		{"server error", http.StatusInternalServerError, ``, fedauth.ErrInvalidHTTPStatusCode, false, 0},
		{"malformed json", http.StatusOK, `{"accessToken":`, fedauth.ErrDataDecoding, false, 1},
		{"empty body", http.StatusOK, ``, nil, false, 0},
		{"no content", http.StatusNoContent, ``, nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newRecordingServer(t, tt.status, tt.body)
			dec := &countingDecoder{}
			exec := &fedauth.Executor{Worker: fedauth.NewTransport(), Decoder: dec}

			req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodPost, nil, nil)
			require.NoError(t, err)

			model, resp, err := fedauth.Do[tokenPair](testContext(t), exec, req)
			require.Equal(t, tt.wantDecode, dec.n.Load())
			require.NotNil(t, resp)
			require.Equal(t, tt.status, resp.StatusCode)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, model)
				if ae, ok := fedauth.AsAuthError(err); ok && ae.Reason == fedauth.ReasonInvalidHTTPStatusCode {
					require.Equal(t, tt.status, ae.StatusCode())
				}
				return
			}
			require.NoError(t, err)
			if tt.wantModel {
				require.Equal(t, "a", model.AccessToken)
			} else {
				require.Nil(t, model)
			}
		})
	}
}

func TestCreateTaskTransportError(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	req, err := fedauth.BuildRequest(fedauth.Endpoint(url), http.MethodPost, nil, nil)
	require.NoError(t, err)

	model, _, err := fedauth.Do[tokenPair](testContext(t), fedauth.NewExecutor(), req)
	require.Nil(t, model)
	require.ErrorIs(t, err, fedauth.ErrDataTask)
}

func TestExecuteEmptyBodyIsUndefined(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, ``)
	auth := inlineAuthenticator()
	req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodPost, nil, nil)
	require.NoError(t, err)

	ctx := testContext(t)
	_, err = fedauth.Await(ctx, func(h func(tokenPair, error)) {
		fedauth.Execute(ctx, auth, req, h)
	})
	require.ErrorIs(t, err, fedauth.ErrUndefined)
}

func TestExecuteDeliversOnQueue(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{"accessToken":"a"}`)
	auth := fedauth.NewServerAuthenticator(nil)

	var dispatched atomic.Int32
	auth.Queue = fedauth.DispatcherFunc(func(fn func()) {
		dispatched.Add(1)
		fn()
	})

	req, err := fedauth.BuildRequest(fedauth.Endpoint(srv.URL), http.MethodPost, nil, nil)
	require.NoError(t, err)

	ctx := testContext(t)
	got, err := fedauth.Await(ctx, func(h func(tokenPair, error)) {
		fedauth.Execute(ctx, auth, req, h)
	})
	require.NoError(t, err)
	require.Equal(t, "a", got.AccessToken)
	require.Equal(t, int32(1), dispatched.Load())
}
