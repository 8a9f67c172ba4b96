package http

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
)

// SecureTokenHandler serves the refresh endpoint of the secure token API.
type SecureTokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /v1/token
//
//	@Summary		Refresh an ID token
//	@Description	Redeems a federation refresh token for a new ID token. The refresh token rotates.
//	@Description	Accepts a JSON or form encoded body.
//	@Tags			Federation
//	@Accept			json,x-www-form-urlencoded
//	@Produce		json
//	@Param			key		query		string							false	"API key"
//	@Param			body	body		identitytoolkit.RefreshRequest	true	"grant_type must be refresh_token"
//	@Success		200		{object}	identitytoolkit.RefreshResponse
//	@Failure		400		{object}	httpx.ErrorBody	"INVALID_GRANT_TYPE, INVALID_REFRESH_TOKEN, TOKEN_EXPIRED or USER_DISABLED"
//	@Router			/v1/token [post]
func (h *SecureTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRefreshRequest(w, r)
	if !ok {
		writeBadRequest(w)
		return
	}
	if req.GrantType != identitytoolkit.GrantTypeRefreshToken {
		httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidGrantType)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidRefreshToken)
		return
	}

	result, err := h.TokenService.RefreshIDToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitytoolkit.RefreshResponse{
		ExpiresIn:    strconv.FormatInt(int64(result.ExpiresIn.Seconds()), 10),
		TokenType:    "Bearer",
		RefreshToken: result.RefreshToken,
		IDToken:      result.IDToken,
		UserID:       result.Account.ID,
		ProjectID:    h.TokenService.ProjectID,
	})
}

func decodeRefreshRequest(w http.ResponseWriter, r *http.Request) (identitytoolkit.RefreshRequest, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, httpx.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return identitytoolkit.RefreshRequest{}, false
		}
		return identitytoolkit.RefreshRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			RefreshToken: r.PostForm.Get("refresh_token"),
		}, true
	}

	var req identitytoolkit.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return identitytoolkit.RefreshRequest{}, false
	}
	return req, true
}
