package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// apiErrors maps service errors to the status and message clients parse.
// Messages may carry a " : detail" suffix like the managed service does.
var apiErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrEmailExists, http.StatusBadRequest, identitytoolkit.CodeEmailExists},
	{service.ErrEmailNotFound, http.StatusBadRequest, identitytoolkit.CodeEmailNotFound},
	{service.ErrInvalidPassword, http.StatusBadRequest, identitytoolkit.CodeInvalidPassword},
	{service.ErrMissingEmail, http.StatusBadRequest, identitytoolkit.CodeMissingEmail},
	{service.ErrMissingPassword, http.StatusBadRequest, identitytoolkit.CodeMissingPassword},
	{service.ErrWeakPassword, http.StatusBadRequest, identitytoolkit.CodeWeakPassword + " : Password should be at least 6 characters"},
	{service.ErrUserDisabled, http.StatusBadRequest, identitytoolkit.CodeUserDisabled},
	{service.ErrInvalidIdpResponse, http.StatusBadRequest, identitytoolkit.CodeInvalidIdpResponse},
	{service.ErrUnsupportedProvider, http.StatusBadRequest, identitytoolkit.CodeOperationNotAllowed},
	{service.ErrInvalidPhoneNumber, http.StatusBadRequest, identitytoolkit.CodeInvalidPhoneNumber},
	{service.ErrMissingCode, http.StatusBadRequest, identitytoolkit.CodeMissingCode},
	{service.ErrInvalidCode, http.StatusBadRequest, identitytoolkit.CodeInvalidCode},
	{service.ErrInvalidSessionInfo, http.StatusBadRequest, identitytoolkit.CodeInvalidSessionInfo},
	{service.ErrSessionExpired, http.StatusBadRequest, identitytoolkit.CodeSessionExpired},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, identitytoolkit.CodeTooManyAttempts},
	{service.ErrTokenExpired, http.StatusBadRequest, identitytoolkit.CodeTokenExpired},
	{service.ErrInvalidRefresh, http.StatusBadRequest, identitytoolkit.CodeInvalidRefreshToken},
	{service.ErrInvalidIDToken, http.StatusUnauthorized, identitytoolkit.CodeInvalidIDToken},
	{service.ErrKeyAlreadyRetired, http.StatusConflict, identitytoolkit.CodeInvalidRequest},
}

// writeServiceError writes the envelope for err. Unknown errors are logged
// and reported as INTERNAL_ERROR.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range apiErrors {
		if errors.Is(err, e.err) {
			httpx.WriteError(w, e.status, e.message)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, identitytoolkit.CodeInternal)
}

func writeBadRequest(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidRequest)
}
