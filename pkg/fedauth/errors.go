package fedauth

import (
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// Phases and reasons
// ============================================================================

// Phase identifies the pipeline stage (or provider) a failure belongs to.
type Phase string

const (
	PhaseMapper     Phase = "mapper"
	PhaseRequest    Phase = "request"
	PhaseResponse   Phase = "response"
	PhaseApple      Phase = "apple"
	PhaseFacebook   Phase = "facebook"
	PhaseGoogle     Phase = "google"
	PhaseFederation Phase = "federation"
	PhasePhone      Phase = "phone"
	PhasePassword   Phase = "password"
	PhaseUndefined  Phase = "undefined"
)

// Reason is the variant inside a phase.
type Reason string

const (
	// mapper
	ReasonDataDecoding Reason = "dataDecodingWithError"

	// request
	ReasonInvalidURL        Reason = "invalidURL"
	ReasonSerializationBody Reason = "serializationBody"

	// response
	ReasonDataTask              Reason = "dataTask"
	ReasonInvalidURLResponse    Reason = "invalidURLResponse"
	ReasonInvalidHTTPStatusCode Reason = "invalidHTTPStatusCode"

	// apple
	ReasonInvalidNonce                Reason = "invalidNonce"
	ReasonAuthorization               Reason = "authorizationError"
	ReasonNilAuthorizationToken       Reason = "nilWhileUnwrappingAuthorizationToken"
	ReasonNilAuthorizationAppleIDCred Reason = "nilWhileUnwrappingAuthorizationAppleIDCredential"

	// facebook
	ReasonLogIn          Reason = "logInError"
	ReasonNilAccessToken Reason = "nilWhileUnwrappingAccessToken"

	// google
	ReasonGoogleSignIn            Reason = "signInError"
	ReasonNilAuthenticationObject Reason = "nilWhileUnwrappingAuthenticationObject"

	// federation
	ReasonSignIn               Reason = "signInError"
	ReasonNilCredential        Reason = "nilWhileUnwrappingCredential"
	ReasonNilFederationIDToken Reason = "nilWhileUnwrappingFirebaseIDToken"

	// phone
	ReasonSpecifiedCodeIsEmpty Reason = "specifiedCodeIsEmpty"
	ReasonNilRequestKey        Reason = "nilWhileUnwrappingRequestKey"

	// password
	ReasonInvalidEmail    Reason = "invalidEmail"
	ReasonInvalidPassword Reason = "invalidPassword"
)

// ============================================================================
// AuthError - the single error envelope
// ============================================================================

// AuthError is the error envelope every SDK operation fails with. Phase and
// Reason select the variant; Cause carries the underlying error when one
// exists and Response is set for invalidHTTPStatusCode failures.
type AuthError struct {
	Phase    Phase
	Reason   Reason
	Message  string
	Cause    error
	Response *http.Response
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Response != nil {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Response.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fedauth: %s: %s: %v", e.Phase, msg, e.Cause)
	}
	return fmt.Sprintf("fedauth: %s: %s", e.Phase, msg)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *AuthError) Unwrap() error { return e.Cause }

// Is reports whether target names the same variant. A target with an empty
// Reason matches any variant of its phase.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	if t.Phase != e.Phase {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// StatusCode returns the HTTP status carried by the error, or 0.
func (e *AuthError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// WithCause returns a copy of the sentinel carrying cause.
func (e *AuthError) WithCause(cause error) *AuthError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// withResponse returns a copy of the sentinel carrying resp.
func (e *AuthError) withResponse(resp *http.Response) *AuthError {
	cp := *e
	cp.Response = resp
	return &cp
}

// ============================================================================
// Predefined variants
// ============================================================================

var (
	ErrDataDecoding = &AuthError{Phase: PhaseMapper, Reason: ReasonDataDecoding, Message: "decoding received data failed"}

	ErrInvalidURL        = &AuthError{Phase: PhaseRequest, Reason: ReasonInvalidURL, Message: "the request has a nil or empty URL"}
	ErrSerializationBody = &AuthError{Phase: PhaseRequest, Reason: ReasonSerializationBody, Message: "serialization body error"}

	ErrDataTask              = &AuthError{Phase: PhaseResponse, Reason: ReasonDataTask, Message: "the session task failed"}
	ErrInvalidURLResponse    = &AuthError{Phase: PhaseResponse, Reason: ReasonInvalidURLResponse, Message: "no HTTP response"}
	ErrInvalidHTTPStatusCode = &AuthError{Phase: PhaseResponse, Reason: ReasonInvalidHTTPStatusCode, Message: "the HTTP status code in response is invalid"}

	ErrInvalidNonce          = &AuthError{Phase: PhaseApple, Reason: ReasonInvalidNonce, Message: "the nonce is empty or does not match"}
	ErrAppleAuthorization    = &AuthError{Phase: PhaseApple, Reason: ReasonAuthorization, Message: "apple authorization failed"}
	ErrNilAuthorizationToken = &AuthError{Phase: PhaseApple, Reason: ReasonNilAuthorizationToken, Message: "nil while unwrapping authorization token"}
	ErrNilAppleIDCredential  = &AuthError{Phase: PhaseApple, Reason: ReasonNilAuthorizationAppleIDCred, Message: "nil while unwrapping apple ID credential"}

	ErrFacebookLogIn  = &AuthError{Phase: PhaseFacebook, Reason: ReasonLogIn, Message: "facebook login failed"}
	ErrNilAccessToken = &AuthError{Phase: PhaseFacebook, Reason: ReasonNilAccessToken, Message: "nil while unwrapping access token"}

	ErrGoogleSignIn            = &AuthError{Phase: PhaseGoogle, Reason: ReasonGoogleSignIn, Message: "google sign in failed"}
	ErrNilAuthenticationObject = &AuthError{Phase: PhaseGoogle, Reason: ReasonNilAuthenticationObject, Message: "nil while unwrapping authentication object"}

	ErrFederationSignIn     = &AuthError{Phase: PhaseFederation, Reason: ReasonSignIn, Message: "federation sign in failed"}
	ErrNilCredential        = &AuthError{Phase: PhaseFederation, Reason: ReasonNilCredential, Message: "nil while unwrapping credential"}
	ErrNilFederationIDToken = &AuthError{Phase: PhaseFederation, Reason: ReasonNilFederationIDToken, Message: "nil while unwrapping federation ID token"}

	ErrSpecifiedCodeIsEmpty = &AuthError{Phase: PhasePhone, Reason: ReasonSpecifiedCodeIsEmpty, Message: "specified code is empty"}
	ErrNilRequestKey        = &AuthError{Phase: PhasePhone, Reason: ReasonNilRequestKey, Message: "nil while unwrapping request key"}

	ErrInvalidEmail    = &AuthError{Phase: PhasePassword, Reason: ReasonInvalidEmail, Message: "invalid email"}
	ErrInvalidPassword = &AuthError{Phase: PhasePassword, Reason: ReasonInvalidPassword, Message: "invalid password"}

	ErrUndefined = &AuthError{Phase: PhaseUndefined, Message: "undefined error"}
)

// ============================================================================
// Helpers
// ============================================================================

// AsAuthError extracts the envelope from err.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// envelope returns err unchanged when it already is an AuthError, otherwise
// nests it under the undefined variant so no raw error escapes a component.
func envelope(err error) *AuthError {
	if err == nil {
		return ErrUndefined
	}
	if ae, ok := AsAuthError(err); ok {
		return ae
	}
	return ErrUndefined.WithCause(err)
}
