package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// JWKSMaxAge bounds how long verifiers cache the key set. A key added by a
// rotation signs immediately, so this stays short.
const JWKSMaxAge = 5 * time.Minute

// readyzTimeout caps each readiness probe.
const readyzTimeout = 2 * time.Second

// JWKSHandler godoc
//
//	@Summary		Get JWKS
//	@Description	Returns the keys that verify ID tokens and backend access tokens, retired keys included.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	cacheControl := "public, max-age=" + strconv.Itoa(int(JWKSMaxAge.Seconds()))
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSONCached(w, http.StatusOK, JWKSResponse(keys.PublicJWKS()), cacheControl)
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database and the signing keys. Any failing check makes the emulator not ready.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"one or more checks failed"
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks: &HealthChecks{
				Database: probe(st.Ping(ctx)),
				Signer:   "ok",
				Keys:     len(keys.PublicJWKS().Keys),
			},
		}
		if !keys.IsReady() {
			resp.Checks.Signer = "error: no keys loaded"
		}

		code := http.StatusOK
		if resp.Checks.Database != "ok" || resp.Checks.Signer != "ok" {
			resp.Status, code = "degraded", http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}

func probe(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
