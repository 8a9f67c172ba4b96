package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// KeyRotationHandler rotates and lists the emulator's signing keys in both
// ephemeral and persistent key modes.
type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
}

// HandleRotate handles POST /emulator/v1/keys:rotate
//
//	@Summary		Rotate signing keys
//	@Description	Generates a new signing key and optionally retires every other active key.
//	@Description	Retired keys keep verifying until restart (ephemeral) or their grace period ends (persistent).
//	@Tags			Emulator
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RotateKeyRequest	false	"Rotation options"
//	@Success		200		{object}	RotateKeyResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/emulator/v1/keys:rotate [post]
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	var req RotateKeyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeBadRequest(w)
		return
	}

	result, err := h.KeyRotationService.RotateKey(r.Context(), req.RetireExisting)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, RotateKeyResponse{
		NewKey:      toKeyInfo(result.NewKey),
		RetiredKeys: toKeyInfos(result.RetiredKeys),
		ActiveKeys:  result.ActiveKeys,
	})
}

// HandleListKeys handles GET /emulator/v1/keys
//
//	@Summary		List signing keys
//	@Description	Lists stored keys in persistent mode, or the active signers in ephemeral mode.
//	@Tags			Emulator
//	@Produce		json
//	@Success		200	{array}		SigningKeyInfo
//	@Failure		500	{object}	httpx.ErrorBody
//	@Router			/emulator/v1/keys [get]
func (h *KeyRotationHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.KeyRotationService.ListSigningKeys(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toKeyInfos(keys))
}

// HandleRetireKey handles POST /emulator/v1/keys/{kid}/retire
//
//	@Summary		Retire a signing key
//	@Description	Stops signing with a key without generating a new one. The last active key cannot be retired.
//	@Tags			Emulator
//	@Param			kid	path	string	true	"Key ID to retire"
//	@Success		204	"No Content"
//	@Failure		400	{object}	httpx.ErrorBody	"Unknown kid or last active key"
//	@Failure		404	{object}	httpx.ErrorBody	"Key not found"
//	@Failure		409	{object}	httpx.ErrorBody	"Key already retired"
//	@Router			/emulator/v1/keys/{kid}/retire [post]
func (h *KeyRotationHandler) HandleRetireKey(w http.ResponseWriter, r *http.Request) {
	kid := r.PathValue("kid")
	if kid == "" {
		writeBadRequest(w)
		return
	}

	err := h.KeyRotationService.RetireKey(r.Context(), kid)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, identitytoolkit.CodeInvalidRequest)
	case errors.Is(err, jwtx.ErrLastSigner), errors.Is(err, jwtx.ErrUnknownKID):
		httpx.WriteError(w, http.StatusBadRequest, identitytoolkit.CodeInvalidRequest)
	default:
		writeServiceError(w, r, err)
	}
}
