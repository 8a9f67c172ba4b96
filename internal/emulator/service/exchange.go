package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// ExchangeService is the application backend half of the emulator: it
// turns federation ID tokens and confirmed phone sessions into backend
// token pairs.
type ExchangeService struct {
	Tokens   *TokenService
	Accounts *AccountService
	Phone    *PhoneService
}

// Exchange verifies a federation ID token and mints a backend pair for its
// subject.
func (s *ExchangeService) Exchange(ctx context.Context, idToken string) (*domain.BackendTokenPair, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}

	claims, err := s.Tokens.VerifyIDToken(idToken)
	if err != nil {
		slogx.FromContext(ctx).Info("exchange rejected id token", "err", err)
		return nil, err
	}

	account, err := s.Accounts.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidIDToken
		}
		return nil, err
	}
	if account.Disabled {
		return nil, ErrUserDisabled
	}

	return s.Tokens.IssueBackendToken(ctx, account.ID, claims.Provider, "")
}

// SendPhoneCode opens a backend phone session and returns its key.
func (s *ExchangeService) SendPhoneCode(ctx context.Context, phone string) (string, error) {
	return s.Phone.SendCode(ctx, domain.PhoneSessionBackend, phone)
}

// ConfirmPhone redeems a backend phone session directly for a backend pair,
// with no federation token in between.
func (s *ExchangeService) ConfirmPhone(ctx context.Context, key, code string) (*domain.BackendTokenPair, error) {
	phone, err := s.Phone.VerifyCode(ctx, domain.PhoneSessionBackend, key, code)
	if err != nil {
		return nil, err
	}

	account, _, err := s.Accounts.PhoneAccount(ctx, phone)
	if err != nil {
		return nil, err
	}
	if account.Disabled {
		return nil, ErrUserDisabled
	}
	return s.Tokens.IssueBackendToken(ctx, account.ID, string(fedauth.ProviderPhone), "")
}
