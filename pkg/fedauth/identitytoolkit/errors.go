package identitytoolkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
)

// ============================================================================
// Error messages
// ============================================================================

// Machine readable messages carried in {"error":{"message":...}}.
const (
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeEmailNotFound       = "EMAIL_NOT_FOUND"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeMissingEmail        = "MISSING_EMAIL"
	CodeMissingPassword     = "MISSING_PASSWORD"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeUserDisabled        = "USER_DISABLED"
	CodeInvalidIdpResponse  = "INVALID_IDP_RESPONSE"
	CodeInvalidPhoneNumber  = "INVALID_PHONE_NUMBER"
	CodeMissingCode         = "MISSING_CODE"
	CodeInvalidCode         = "INVALID_CODE"
	CodeInvalidSessionInfo  = "INVALID_SESSION_INFO"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeInvalidIDToken      = "INVALID_ID_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInvalidGrantType    = "INVALID_GRANT_TYPE"
	CodeTooManyAttempts     = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternal            = "INTERNAL_ERROR"
	CodeOperationNotAllowed = "OPERATION_NOT_ALLOWED"
)

var (
	// ErrNoSession is returned by IDToken for identities this client did not
	// sign in.
	ErrNoSession = errors.New("identitytoolkit: identity has no session")

	// ErrUnsupportedProvider is returned by SignIn for unknown providers.
	ErrUnsupportedProvider = errors.New("identitytoolkit: unsupported provider")

	// ErrMissingToken is returned when a 2xx answer carries no ID token.
	ErrMissingToken = errors.New("identitytoolkit: response carries no id token")
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-2xx answer with a parsed error body. It unwraps to the
// response-phase *fedauth.AuthError, so both of these hold:
//
//	errors.Is(err, fedauth.ErrInvalidHTTPStatusCode)
//	errors.As(err, &apiErr)
type APIError struct {
	StatusCode int

	// Message is the raw message, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
	Message string

	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identitytoolkit: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Code returns the message up to the first " : " separator.
func (e *APIError) Code() string {
	code, _, _ := strings.Cut(e.Message, " : ")
	return strings.TrimSpace(code)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code() == code
}

// parseError turns an invalid status error into an APIError when the body
// carries one. Any other error is returned as is.
func parseError(resp *http.Response, err error) error {
	if !errors.Is(err, fedauth.ErrInvalidHTTPStatusCode) || resp == nil || resp.Body == nil {
		return err
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return err
	}

	var eb httpx.ErrorBody
	if json.Unmarshal(body, &eb) != nil || eb.Error.Message == "" {
		return err
	}
	return &APIError{StatusCode: resp.StatusCode, Message: eb.Error.Message, Err: err}
}
