package fedauth

import (
	"context"
	"net/http"
)

// PhoneVerifySpec is the endpoint that sends a verification code.
type PhoneVerifySpec struct {
	Endpoint EndpointSpec

	// PhoneKey is the body field carrying the number. Defaults to "phone".
	PhoneKey string
}

// PhoneCodeSpec is the endpoint that confirms a received code.
type PhoneCodeSpec struct {
	Endpoint EndpointSpec

	// KeyParam and CodeParam default to "key" and "code".
	KeyParam  string
	CodeParam string
}

// PhoneEndpoints groups the two halves of a backend phone login.
type PhoneEndpoints struct {
	Verify  PhoneVerifySpec
	Confirm PhoneCodeSpec
}

// PhoneAuthenticator runs the SMS login against the application backend
// directly, without a federation backend in between.
type PhoneAuthenticator struct {
	*ServerAuthenticator
	Endpoints PhoneEndpoints
}

// NewPhoneAuthenticator returns a PhoneAuthenticator over authenticator. A
// nil authenticator gets NewServerAuthenticator(nil).
func NewPhoneAuthenticator(endpoints PhoneEndpoints, authenticator *ServerAuthenticator) *PhoneAuthenticator {
	if authenticator == nil {
		authenticator = NewServerAuthenticator(nil)
	}
	return &PhoneAuthenticator{ServerAuthenticator: authenticator, Endpoints: endpoints}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// VerifyPhone asks the backend to send a code to number.
func (p *PhoneAuthenticator) VerifyPhone(ctx context.Context, number string, handler func(PhoneKey, error)) {
	VerifyPhoneAs(ctx, p, number, handler)
}

// VerifyCodeAndAuth confirms code for key and yields the backend token.
func (p *PhoneAuthenticator) VerifyCodeAndAuth(
	ctx context.Context,
	key string,
	code string,
	handler func(BackendToken, error),
) {
	VerifyCodeAndAuthAs(ctx, p, key, code, handler)
}

// VerifyPhoneAs is VerifyPhone with a caller-chosen response model.
func VerifyPhoneAs[T any](ctx context.Context, p *PhoneAuthenticator, number string, handler func(T, error)) {
	spec := p.Endpoints.Verify
	req, err := BuildRequest(spec.Endpoint, http.MethodPost, nil, map[string]any{
		orDefault(spec.PhoneKey, "phone"): number,
	})
	if err != nil {
		fail(p.queue(), handler, err)
		return
	}
	Execute(ctx, p.ServerAuthenticator, req, handler)
}

// VerifyCodeAndAuthAs is VerifyCodeAndAuth with a caller-chosen response
// model. Empty inputs fail without a network call.
func VerifyCodeAndAuthAs[T any](
	ctx context.Context,
	p *PhoneAuthenticator,
	key string,
	code string,
	handler func(T, error),
) {
	if code == "" {
		fail(p.queue(), handler, ErrSpecifiedCodeIsEmpty)
		return
	}
	if key == "" {
		fail(p.queue(), handler, ErrNilRequestKey)
		return
	}

	spec := p.Endpoints.Confirm
	req, err := BuildRequest(spec.Endpoint, http.MethodPost, nil, map[string]any{
		orDefault(spec.KeyParam, "key"):   key,
		orDefault(spec.CodeParam, "code"): code,
	})
	if err != nil {
		fail(p.queue(), handler, err)
		return
	}
	Execute(ctx, p.ServerAuthenticator, req, handler)
}
