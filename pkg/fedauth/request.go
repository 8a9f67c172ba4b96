package fedauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"time"
)

// RequestTimeout is the fixed per-request transport timeout.
const RequestTimeout = 15 * time.Second

// OutboundRequest is a fully built, transport-ready request. It is consumed
// by exactly one Transport call and never mutated after BuildRequest returns.
type OutboundRequest struct {
	URL     string
	Method  string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// RequestBuilder collects the inputs of one request. Body, when set, is
// serialized instead of Params.
type RequestBuilder struct {
	Spec    EndpointSpec
	Method  string
	Headers map[string]string
	Params  map[string]any
	Body    any
}

// BuildRequest is shorthand for a RequestBuilder without a body object.
func BuildRequest(
	spec EndpointSpec,
	method string,
	headers map[string]string,
	params map[string]any,
) (*OutboundRequest, error) {
	return RequestBuilder{Spec: spec, Method: method, Headers: headers, Params: params}.Build()
}

// Build validates the endpoint address and serializes the JSON body. It never
// touches the network.
func (b RequestBuilder) Build() (*OutboundRequest, error) {
	u, err := b.Spec.resolve()
	if err != nil {
		return nil, err
	}

	method := b.Method
	if method == "" {
		method = http.MethodPost
	}

	header := make(http.Header, len(b.Spec.Headers)+len(b.Headers)+1)
	for k, v := range b.Spec.Headers {
		header.Set(k, v)
	}
	for k, v := range b.Headers {
		header.Set(k, v)
	}

	var payload any = b.Body
	if payload == nil {
		merged := make(map[string]any, len(b.Spec.ExtraBody)+len(b.Params))
		maps.Copy(merged, b.Spec.ExtraBody)
		maps.Copy(merged, b.Params)
		payload = merged
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrSerializationBody.WithCause(err)
	}
	header.Set("Content-Type", "application/json")

	return &OutboundRequest{
		URL:     u.String(),
		Method:  method,
		Header:  header,
		Body:    body,
		Timeout: RequestTimeout,
	}, nil
}

// HTTPRequest materializes the request for net/http. Caches are bypassed on
// every call.
func (r *OutboundRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}
