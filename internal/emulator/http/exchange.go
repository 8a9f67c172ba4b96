package http

import (
	"net/http"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// ExchangeHandler serves the application backend endpoints.
type ExchangeHandler struct {
	ExchangeService *service.ExchangeService
	AccountService  *service.AccountService
}

// HandleExchange handles POST /api/auth/exchange
//
//	@Summary		Exchange a federation ID token
//	@Description	Verifies a federation ID token issued by this emulator and returns a backend token pair.
//	@Tags			Backend
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExchangeRequest	true	"Federation ID token"
//	@Success		200		{object}	BackendTokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"INVALID_REQUEST, TOKEN_EXPIRED or USER_DISABLED"
//	@Failure		401		{object}	httpx.ErrorBody	"INVALID_ID_TOKEN"
//	@Router			/api/auth/exchange [post]
func (h *ExchangeHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	pair, err := h.ExchangeService.Exchange(r.Context(), req.FirebaseToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, backendTokenResponse(pair))
}

// HandleVerifyPhone handles POST /api/auth/phone/verify
//
//	@Summary		Send a backend SMS code
//	@Description	Opens a backend phone session and returns its key. The code is logged instead of sent.
//	@Tags			Backend
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PhoneVerifyRequest	true	"Phone number"
//	@Success		200		{object}	PhoneVerifyResponse
//	@Failure		400		{object}	httpx.ErrorBody	"INVALID_PHONE_NUMBER"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/api/auth/phone/verify [post]
func (h *ExchangeHandler) HandleVerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req PhoneVerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	key, err := h.ExchangeService.SendPhoneCode(r.Context(), req.Phone)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, PhoneVerifyResponse{Key: key})
}

// HandleConfirmPhone handles POST /api/auth/phone/confirm
//
//	@Summary		Confirm a backend SMS code
//	@Description	Redeems the code of a backend phone session for a backend token pair.
//	@Tags			Backend
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PhoneConfirmRequest	true	"Key and code"
//	@Success		200		{object}	BackendTokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"MISSING_CODE, INVALID_CODE, INVALID_SESSION_INFO or SESSION_EXPIRED"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/api/auth/phone/confirm [post]
func (h *ExchangeHandler) HandleConfirmPhone(w http.ResponseWriter, r *http.Request) {
	var req PhoneConfirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	pair, err := h.ExchangeService.ConfirmPhone(r.Context(), req.Key, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, backendTokenResponse(pair))
}

// HandleMe handles GET /api/auth/me
//
//	@Summary		Describe the caller
//	@Description	Returns the account behind a backend access token.
//	@Tags			Backend
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	MeResponse
//	@Failure		401	{object}	httpx.ErrorBody	"INVALID_ID_TOKEN"
//	@Router			/api/auth/me [get]
func (h *ExchangeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		httpx.WriteError(w, http.StatusUnauthorized, identitytoolkit.CodeInvalidIDToken)
		return
	}

	account, err := h.AccountService.Get(ctx, claims.Subject)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load account", "local_id", claims.Subject, "err", err)
		httpx.WriteError(w, http.StatusUnauthorized, identitytoolkit.CodeInvalidIDToken)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		LocalID:       account.ID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		DisplayName:   account.DisplayName,
		PhoneNumber:   account.PhoneNumber,
		Provider:      claims.Provider,
		SessionID:     claims.SID,
	})
}

func backendTokenResponse(pair *domain.BackendTokenPair) BackendTokenResponse {
	return BackendTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}
