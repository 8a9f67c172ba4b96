package http

import (
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/service"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	// Keys is the number of published keys, retired ones included.
	Keys int `json:"keys"`
}

// JWKSResponse is the public key set.
type JWKSResponse jwtx.JWKS

// ExchangeRequest carries a federation ID token to exchange.
type ExchangeRequest struct {
	FirebaseToken string `json:"firebaseToken" example:"eyJhbGciOiJFZERTQSIs..."`
}

// BackendTokenResponse is the application backend's token pair.
type BackendTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn" example:"900"`
}

// PhoneVerifyRequest asks for an SMS code.
type PhoneVerifyRequest struct {
	Phone string `json:"phone" example:"+61400000000"`
}

// PhoneVerifyResponse carries the key the code is bound to.
type PhoneVerifyResponse struct {
	Key string `json:"key"`
}

// PhoneConfirmRequest redeems an SMS code.
type PhoneConfirmRequest struct {
	Key  string `json:"key"`
	Code string `json:"code" example:"123456"`
}

// MeResponse describes the bearer of a backend access token.
type MeResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Provider      string `json:"provider,omitempty"`
	SessionID     string `json:"sessionId,omitempty"`
}

// VerificationCodesResponse lists outstanding SMS codes.
type VerificationCodesResponse struct {
	VerificationCodes []service.VerificationCode `json:"verificationCodes"`
}

// RotateKeyRequest configures a key rotation.
type RotateKeyRequest struct {
	RetireExisting bool `json:"retireExisting"`
}

// SigningKeyInfo describes one signing key.
type SigningKeyInfo struct {
	ID        string  `json:"id,omitempty"`
	Kid       string  `json:"kid"`
	Algorithm string  `json:"alg"`
	CreatedAt string  `json:"createdAt,omitempty"`
	RetiredAt *string `json:"retiredAt,omitempty"`
	ExpiresAt string  `json:"expiresAt,omitempty"`
}

// RotateKeyResponse describes a finished rotation.
type RotateKeyResponse struct {
	NewKey      SigningKeyInfo   `json:"newKey"`
	RetiredKeys []SigningKeyInfo `json:"retiredKeys"`
	ActiveKeys  int              `json:"activeKeys"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toKeyInfo(key domain.SigningKey) SigningKeyInfo {
	var retiredAt *string
	if key.RetiredAt != nil {
		s := formatTime(*key.RetiredAt)
		retiredAt = &s
	}
	return SigningKeyInfo{
		ID:        key.ID,
		Kid:       key.Kid,
		Algorithm: key.Algorithm,
		CreatedAt: formatTime(key.CreatedAt),
		RetiredAt: retiredAt,
		ExpiresAt: formatTime(key.ExpiresAt),
	}
}

func toKeyInfos(keys []domain.SigningKey) []SigningKeyInfo {
	out := make([]SigningKeyInfo, len(keys))
	for i, key := range keys {
		out[i] = toKeyInfo(key)
	}
	return out
}
