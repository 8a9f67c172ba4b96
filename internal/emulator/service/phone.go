package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// MaxCodeAttempts is the number of wrong codes a phone session survives.
	MaxCodeAttempts = 5

	// DefaultCodeTTL is how long an SMS code stays valid.
	DefaultCodeTTL = 5 * time.Minute
)

var (
	ErrInvalidPhoneNumber = errors.New("invalid_phone_number")
	ErrMissingCode        = errors.New("missing_code")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrInvalidSessionInfo = errors.New("invalid_session_info")
	ErrSessionExpired     = errors.New("session_expired")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
)

// VerificationCode is an outstanding SMS code, as listed for developers.
type VerificationCode struct {
	PhoneNumber string                  `json:"phoneNumber"`
	Code        string                  `json:"code"`
	Kind        domain.PhoneSessionKind `json:"kind"`
	ExpiresAt   time.Time               `json:"expiresAt"`
}

// PhoneService opens and confirms SMS verification sessions. Nothing is
// sent: each code is logged and listed by ListCodes instead.
//
// Codes are six digit TOTP values derived from a per-session secret at the
// session's creation time, so only the secret has to be stored.
type PhoneService struct {
	Store   store.Store
	Logger  *slog.Logger
	CodeTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *PhoneService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PhoneService) ttl() time.Duration {
	if s.CodeTTL <= 0 {
		return DefaultCodeTTL
	}
	return s.CodeTTL
}

func (s *PhoneService) codeOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(s.ttl() / time.Second),
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NormalizePhone strips formatting and requires an E.164-sized number. The
// result always carries a leading "+".
func NormalizePhone(number string) (string, error) {
	digits := fedauth.FormatPhone(number)
	if len(digits) < 8 || len(digits) > 15 {
		return "", ErrInvalidPhoneNumber
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhoneNumber
		}
	}
	return "+" + digits, nil
}

// SendCode opens a session of the given kind and returns its opaque token.
func (s *PhoneService) SendCode(ctx context.Context, kind domain.PhoneSessionKind, number string) (string, error) {
	phone, err := NormalizePhone(number)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "fedauth-emulator",
		AccountName: phone,
		Period:      s.codeOpts().Period,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return "", fmt.Errorf("generate code secret: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	session := domain.PhoneSession{
		ID:          idx.New().String(),
		TokenHash:   cryptox.FingerprintToken(token),
		Kind:        kind,
		PhoneNumber: phone,
		Secret:      key.Secret(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl()),
	}
	if err := s.Store.PhoneSessions().CreatePhoneSession(ctx, session); err != nil {
		return "", err
	}

	code, err := s.code(session)
	if err != nil {
		return "", err
	}
	s.Logger.Info("verification code issued",
		"phone", phone,
		"code", code,
		"kind", kind,
		"expires_at", session.ExpiresAt,
	)
	return token, nil
}

// VerifyCode confirms code for the session behind token and returns the
// verified phone number. A confirmed session is deleted; a wrong code
// counts against MaxCodeAttempts.
func (s *PhoneService) VerifyCode(
	ctx context.Context,
	kind domain.PhoneSessionKind,
	token, code string,
) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrMissingCode
	}
	if token == "" {
		return "", ErrInvalidSessionInfo
	}

	session, err := s.Store.PhoneSessions().GetPhoneSessionByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidSessionInfo
		}
		return "", err
	}
	if session.Kind != kind {
		return "", ErrInvalidSessionInfo
	}

	if session.Expired(s.now()) {
		_ = s.Store.PhoneSessions().DeletePhoneSession(ctx, session.ID)
		return "", ErrSessionExpired
	}
	if session.Attempts >= MaxCodeAttempts {
		_ = s.Store.PhoneSessions().DeletePhoneSession(ctx, session.ID)
		s.Logger.Warn("phone session exceeded max attempts", "phone", session.PhoneNumber)
		return "", ErrTooManyAttempts
	}

	ok, err := totp.ValidateCustom(code, session.Secret, session.CreatedAt, s.codeOpts())
	if err != nil || !ok {
		updated, incErr := s.Store.PhoneSessions().IncrementPhoneSessionAttempts(ctx, session.ID)
		if incErr == nil {
			s.Logger.Info("verification code rejected", "phone", session.PhoneNumber, "attempts", updated.Attempts)
		}
		return "", ErrInvalidCode
	}

	if err := s.Store.PhoneSessions().DeletePhoneSession(ctx, session.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Confirmed concurrently; the code only counts once.
			return "", ErrInvalidSessionInfo
		}
		return "", err
	}
	return session.PhoneNumber, nil
}

// ListCodes returns every outstanding code, newest first.
func (s *PhoneService) ListCodes(ctx context.Context) ([]VerificationCode, error) {
	sessions, err := s.Store.PhoneSessions().ListPhoneSessions(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]VerificationCode, 0, len(sessions))
	for _, session := range sessions {
		code, err := s.code(session)
		if err != nil {
			return nil, err
		}
		codes = append(codes, VerificationCode{
			PhoneNumber: session.PhoneNumber,
			Code:        code,
			Kind:        session.Kind,
			ExpiresAt:   session.ExpiresAt,
		})
	}
	return codes, nil
}

func (s *PhoneService) code(session domain.PhoneSession) (string, error) {
	return totp.GenerateCodeCustom(session.Secret, session.CreatedAt, s.codeOpts())
}
