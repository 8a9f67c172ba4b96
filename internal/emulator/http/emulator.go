package http

import (
	"net/http"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// EmulatorHandler serves developer endpoints that have no production
// counterpart.
type EmulatorHandler struct {
	PhoneService   *service.PhoneService
	AccountService *service.AccountService
}

// HandleListCodes handles GET /emulator/v1/verificationCodes
//
//	@Summary		List outstanding SMS codes
//	@Tags			Emulator
//	@Produce		json
//	@Success		200	{object}	VerificationCodesResponse
//	@Router			/emulator/v1/verificationCodes [get]
func (h *EmulatorHandler) HandleListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.PhoneService.ListCodes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, VerificationCodesResponse{VerificationCodes: codes})
}

// HandleReset handles DELETE /emulator/v1/accounts
//
//	@Summary		Delete every account
//	@Description	Deletes all accounts together with their provider links and refresh tokens.
//	@Tags			Emulator
//	@Success		204	"No Content"
//	@Router			/emulator/v1/accounts [delete]
func (h *EmulatorHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.AccountService.Reset(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("all accounts deleted")
	w.WriteHeader(http.StatusNoContent)
}
