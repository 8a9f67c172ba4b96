package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
)

// AccountsHandler serves the Identity Toolkit accounts endpoints.
type AccountsHandler struct {
	AccountService *service.AccountService
	PhoneService   *service.PhoneService
}

// HandleSignUp handles POST /v1/accounts:signUp
//
//	@Summary		Create a password account
//	@Description	Creates an email and password account and signs it in.
//	@Tags			Federation
//	@Accept			json
//	@Produce		json
//	@Param			key		query		string							false	"API key"
//	@Param			body	body		identitytoolkit.PasswordRequest	true	"Email, password and optional display name"
//	@Success		200		{object}	identitytoolkit.AuthResponse
//	@Failure		400		{object}	httpx.ErrorBody	"EMAIL_EXISTS, MISSING_EMAIL, MISSING_PASSWORD or WEAK_PASSWORD"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/v1/accounts:signUp [post]
func (h *AccountsHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req identitytoolkit.PasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.AccountService.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse(result))
}

// HandleSignInWithPassword handles POST /v1/accounts:signInWithPassword
//
//	@Summary		Sign in with email and password
//	@Tags			Federation
//	@Accept			json
//	@Produce		json
//	@Param			key		query		string							false	"API key"
//	@Param			body	body		identitytoolkit.PasswordRequest	true	"Email and password"
//	@Success		200		{object}	identitytoolkit.AuthResponse
//	@Failure		400		{object}	httpx.ErrorBody	"EMAIL_NOT_FOUND, INVALID_PASSWORD or USER_DISABLED"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/v1/accounts:signInWithPassword [post]
func (h *AccountsHandler) HandleSignInWithPassword(w http.ResponseWriter, r *http.Request) {
	var req identitytoolkit.PasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.AccountService.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := authResponse(result)
	resp.Registered = true
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSignInWithIdp handles POST /v1/accounts:signInWithIdp
//
//	@Summary		Sign in with a provider credential
//	@Description	Signs in with an Apple, Google, Facebook or Twitter credential. postBody is form encoded and carries
//	@Description	providerId plus id_token, access_token, oauth_token_secret and nonce as the provider supplies them.
//	@Description	Provider tokens are not verified against the provider.
//	@Tags			Federation
//	@Accept			json
//	@Produce		json
//	@Param			key		query		string						false	"API key"
//	@Param			body	body		identitytoolkit.IdpRequest	true	"Provider credential"
//	@Success		200		{object}	identitytoolkit.AuthResponse
//	@Failure		400		{object}	httpx.ErrorBody	"INVALID_IDP_RESPONSE or OPERATION_NOT_ALLOWED"
//	@Router			/v1/accounts:signInWithIdp [post]
func (h *AccountsHandler) HandleSignInWithIdp(w http.ResponseWriter, r *http.Request) {
	var req identitytoolkit.IdpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	assertion, err := service.ParseIdpPostBody(req.PostBody)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.AccountService.SignInWithIdp(r.Context(), assertion)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse(result))
}

// HandleSendVerificationCode handles POST /v1/accounts:sendVerificationCode
//
//	@Summary		Send an SMS code
//	@Description	Opens a phone session. The code is logged and listed at /emulator/v1/verificationCodes instead of sent.
//	@Tags			Federation
//	@Accept			json
//	@Produce		json
//	@Param			key		query		string							false	"API key"
//	@Param			body	body		identitytoolkit.SendCodeRequest	true	"Phone number"
//	@Success		200		{object}	identitytoolkit.SendCodeResponse
//	@Failure		400		{object}	httpx.ErrorBody	"INVALID_PHONE_NUMBER"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/v1/accounts:sendVerificationCode [post]
func (h *AccountsHandler) HandleSendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req identitytoolkit.SendCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	sessionInfo, err := h.PhoneService.SendCode(r.Context(), domain.PhoneSessionFederation, req.PhoneNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identitytoolkit.SendCodeResponse{SessionInfo: sessionInfo})
}

// HandleSignInWithPhoneNumber handles POST /v1/accounts:signInWithPhoneNumber
//
//	@Summary		Sign in with an SMS code
//	@Tags			Federation
//	@Accept			json
//	@Produce		json
//	@Param			key		query		string						false	"API key"
//	@Param			body	body		identitytoolkit.PhoneRequest	true	"Session info and code"
//	@Success		200		{object}	identitytoolkit.AuthResponse
//	@Failure		400		{object}	httpx.ErrorBody	"MISSING_CODE, INVALID_CODE, INVALID_SESSION_INFO or SESSION_EXPIRED"
//	@Failure		429		{object}	httpx.ErrorBody	"TOO_MANY_ATTEMPTS_TRY_LATER"
//	@Router			/v1/accounts:signInWithPhoneNumber [post]
func (h *AccountsHandler) HandleSignInWithPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var req identitytoolkit.PhoneRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.AccountService.SignInWithPhoneNumber(r.Context(), req.SessionInfo, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse(result))
}

func authResponse(result *domain.IDTokenResult) identitytoolkit.AuthResponse {
	return identitytoolkit.AuthResponse{
		LocalID:      result.Account.ID,
		Email:        result.Account.Email,
		DisplayName:  result.Account.DisplayName,
		PhoneNumber:  result.Account.PhoneNumber,
		ProviderID:   result.Provider,
		FederatedID:  result.FederatedID,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    strconv.FormatInt(int64(result.ExpiresIn.Seconds()), 10),
		IsNewUser:    result.IsNewUser,
	}
}
