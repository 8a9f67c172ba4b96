package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/idx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

var (
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
	ErrInvalidIDToken = errors.New("invalid_id_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrUserDisabled   = errors.New("user_disabled")
)

// TokenService mints the two kinds of tokens the emulator hands out:
// federation ID tokens (audience ProjectID) and backend access tokens
// (audience BackendAudience). Both are EdDSA JWTs signed by KeyManager.
type TokenService struct {
	KeyManager      *jwtx.KeyManager
	Store           store.Store
	Issuer          string
	ProjectID       string
	BackendAudience string

	IDTokenTTL time.Duration
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueIDToken signs an ID token for account and stores a fresh federation
// refresh token bound to a new session.
func (s *TokenService) IssueIDToken(
	ctx context.Context,
	account domain.Account,
	provider string,
) (*domain.IDTokenResult, error) {
	if account.Disabled {
		return nil, ErrUserDisabled
	}

	sessionID := idx.New().String()
	idToken, err := s.signID(account, provider, s.now())
	if err != nil {
		return nil, err
	}

	refresh, err := s.createRefresh(ctx, s.Store, account.ID, sessionID, provider, domain.AudienceFederation)
	if err != nil {
		return nil, err
	}

	return &domain.IDTokenResult{
		Account:      account,
		Provider:     provider,
		IDToken:      idToken,
		RefreshToken: refresh,
		ExpiresIn:    s.IDTokenTTL,
	}, nil
}

// RefreshIDToken redeems a federation refresh token. The old token is
// revoked and a new one issued for the same session.
func (s *TokenService) RefreshIDToken(ctx context.Context, refreshOpaque string) (*domain.IDTokenResult, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	fp := cryptox.FingerprintToken(refreshOpaque)
	var result *domain.IDTokenResult

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if rt.Revoked || rt.Audience != domain.AudienceFederation {
			return ErrInvalidRefresh
		}
		if now.After(rt.ExpiresAt) {
			return ErrTokenExpired
		}

		account, err := tx.Accounts().GetAccountByID(ctx, rt.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if account.Disabled {
			return ErrUserDisabled
		}

		idToken, err := s.signID(account, rt.Provider, now)
		if err != nil {
			return err
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		refresh, err := s.createRefresh(ctx, tx, account.ID, rt.SessionID, rt.Provider, domain.AudienceFederation)
		if err != nil {
			return err
		}

		result = &domain.IDTokenResult{
			Account:      account,
			Provider:     rt.Provider,
			IDToken:      idToken,
			RefreshToken: refresh,
			ExpiresIn:    s.IDTokenTTL,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidRefresh) {
			l.Info("refresh token rejected", "err", err)
		}
		return nil, err
	}
	return result, nil
}

// VerifyIDToken checks signature, issuer, expiry, audience and token use of
// a federation ID token.
func (s *TokenService) VerifyIDToken(token string) (jwtx.Claims, error) {
	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	if err := claims.ValidateTokenUse(jwtx.TokenUseID); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	if err := claims.ValidateAudience([]string{s.ProjectID}); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	return claims, nil
}

// IssueBackendToken mints the first-party pair for an account. sessionID
// may be empty to start a new session.
func (s *TokenService) IssueBackendToken(
	ctx context.Context,
	accountID, provider, sessionID string,
) (*domain.BackendTokenPair, error) {
	now := s.now()
	if sessionID == "" {
		sessionID = idx.New().String()
	}

	claims := jwtx.NewAccessClaims(
		accountID,
		sessionID,
		provider,
		s.AccessTTL,
		s.Issuer,
		[]string{s.BackendAudience},
		now,
	)
	access, err := s.KeyManager.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign access token", "err", err)
		return nil, err
	}

	refresh, err := s.createRefresh(ctx, s.Store, accountID, sessionID, provider, domain.AudienceBackend)
	if err != nil {
		return nil, err
	}

	return &domain.BackendTokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *TokenService) signID(account domain.Account, provider string, now time.Time) (string, error) {
	claims := jwtx.NewIDClaims(
		account.ID,
		jwtx.Profile{
			Email:         account.Email,
			EmailVerified: account.EmailVerified,
			Name:          account.DisplayName,
			PhoneNumber:   account.PhoneNumber,
			Provider:      provider,
		},
		s.IDTokenTTL,
		s.Issuer,
		[]string{s.ProjectID},
		now,
	)
	return s.KeyManager.Sign(claims)
}

// refreshCreator is the part of store.Store createRefresh needs, so it runs
// both inside and outside a transaction.
type refreshCreator interface {
	RefreshTokens() store.RefreshTokens
}

func (s *TokenService) createRefresh(
	ctx context.Context,
	st refreshCreator,
	accountID, sessionID, provider, audience string,
) (string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: accountID,
		TokenHash: cryptox.FingerprintToken(opaque),
		SessionID: sessionID,
		Provider:  provider,
		Audience:  audience,
		ExpiresAt: s.now().Add(s.RefreshTTL),
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return "", err
	}
	return opaque, nil
}
