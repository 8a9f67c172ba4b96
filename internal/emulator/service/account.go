package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/idx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

// MinPasswordLength matches the managed service's WEAK_PASSWORD rule.
const MinPasswordLength = 6

var (
	ErrEmailExists         = errors.New("email_exists")
	ErrEmailNotFound       = errors.New("email_not_found")
	ErrInvalidPassword     = errors.New("invalid_password")
	ErrMissingEmail        = errors.New("missing_email")
	ErrMissingPassword     = errors.New("missing_password")
	ErrWeakPassword        = errors.New("weak_password")
	ErrInvalidIdpResponse  = errors.New("invalid_idp_response")
	ErrUnsupportedProvider = errors.New("operation_not_allowed")
)

// IdpAssertion is a provider credential decoded from a signInWithIdp
// postBody.
type IdpAssertion struct {
	ProviderID  string
	IDToken     string
	AccessToken string
	TokenSecret string
	Nonce       string
}

// ParseIdpPostBody decodes the form encoded credential of signInWithIdp.
func ParseIdpPostBody(postBody string) (IdpAssertion, error) {
	v, err := url.ParseQuery(postBody)
	if err != nil {
		return IdpAssertion{}, ErrInvalidIdpResponse
	}

	a := IdpAssertion{
		ProviderID:  v.Get("providerId"),
		IDToken:     v.Get("id_token"),
		AccessToken: v.Get("access_token"),
		TokenSecret: v.Get("oauth_token_secret"),
		Nonce:       v.Get("nonce"),
	}
	switch fedauth.ProviderKind(a.ProviderID) {
	case fedauth.ProviderApple, fedauth.ProviderGoogle, fedauth.ProviderFacebook, fedauth.ProviderTwitter:
	default:
		return IdpAssertion{}, ErrUnsupportedProvider
	}
	return a, nil
}

// federatedProfile is what the emulator can learn about a provider user
// without calling the provider.
type federatedProfile struct {
	FederatedID string
	Email       string
	DisplayName string
}

// profile extracts the provider identity. ID tokens and JWT access tokens
// are read unverified; opaque access tokens identify the user by their
// fingerprint.
func (a IdpAssertion) profile() (federatedProfile, error) {
	if a.ProviderID == string(fedauth.ProviderTwitter) && (a.AccessToken == "" || a.TokenSecret == "") {
		return federatedProfile{}, ErrInvalidIdpResponse
	}

	if a.IDToken != "" {
		claims, err := jwtx.ParseUnverified(a.IDToken)
		if err != nil || claims.Subject == "" {
			return federatedProfile{}, ErrInvalidIdpResponse
		}
		if claims.Nonce != "" && claims.Nonce != cryptox.HashNonce(a.Nonce) && claims.Nonce != a.Nonce {
			return federatedProfile{}, ErrInvalidIdpResponse
		}
		return federatedProfile{FederatedID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
	}

	if a.AccessToken == "" {
		return federatedProfile{}, ErrInvalidIdpResponse
	}
	if claims, err := jwtx.ParseUnverified(a.AccessToken); err == nil && claims.Subject != "" {
		return federatedProfile{FederatedID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
	}
	return federatedProfile{FederatedID: cryptox.FingerprintToken(a.AccessToken)}, nil
}

// AccountService implements the federation side sign-in flows.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	Phone  *PhoneService
}

// SignUp creates a password account and signs it in.
func (s *AccountService) SignUp(
	ctx context.Context,
	email, password, displayName string,
) (*domain.IDTokenResult, error) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return nil, ErrMissingEmail
	case password == "":
		return nil, ErrMissingPassword
	case len(password) < MinPasswordLength:
		return nil, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	slogx.FromContext(ctx).Info("account created", "local_id", account.ID, "provider", fedauth.ProviderPassword)
	return s.issue(ctx, account, string(fedauth.ProviderPassword), true)
}

// SignInWithPassword checks email and password.
func (s *AccountService) SignInWithPassword(ctx context.Context, email, password string) (*domain.IDTokenResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	if !account.HasPassword() || cryptox.VerifyPassword(password, account.PasswordHash) != nil {
		slogx.FromContext(ctx).Info("password sign in failed", "local_id", account.ID)
		return nil, ErrInvalidPassword
	}
	if cryptox.NeedsRehash(account.PasswordHash) {
		s.rehash(ctx, account.ID, password)
	}
	return s.issue(ctx, account, string(fedauth.ProviderPassword), false)
}

// rehash upgrades a hash made with old parameters. Failure only costs the
// upgrade.
func (s *AccountService) rehash(ctx context.Context, id, password string) {
	l := slogx.FromContext(ctx)
	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Accounts().UpdatePasswordHash(ctx, id, hash)
	}
	if err != nil {
		l.Warn("password rehash failed", "local_id", id, "err", err)
		return
	}
	l.Info("password rehashed", "local_id", id)
}

// SignInWithIdp signs in the provider user, creating the account and link
// on first sight. A provider email that already has an account is linked to
// that account.
func (s *AccountService) SignInWithIdp(ctx context.Context, assertion IdpAssertion) (*domain.IDTokenResult, error) {
	profile, err := assertion.profile()
	if err != nil {
		return nil, err
	}

	var (
		account domain.Account
		isNew   bool
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		link, err := tx.ProviderLinks().GetProviderLink(ctx, assertion.ProviderID, profile.FederatedID)
		switch {
		case err == nil:
			account, err = tx.Accounts().GetAccountByID(ctx, link.AccountID)
			return err
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		account, err = findOrCreate(ctx, tx, profile)
		if err != nil {
			return err
		}
		isNew = account.CreatedAt.IsZero()

		return tx.ProviderLinks().CreateProviderLink(ctx, domain.ProviderLink{
			AccountID:   account.ID,
			ProviderID:  assertion.ProviderID,
			FederatedID: profile.FederatedID,
			Email:       profile.Email,
			DisplayName: profile.DisplayName,
		})
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issue(ctx, account, assertion.ProviderID, isNew)
	if err != nil {
		return nil, err
	}
	result.FederatedID = profile.FederatedID
	return result, nil
}

// findOrCreate returns the account owning profile's email or a new one.
// New accounts come back with a zero CreatedAt. Linking a provider that
// asserts the email marks it verified and fills a missing display name.
func findOrCreate(ctx context.Context, tx store.Tx, profile federatedProfile) (domain.Account, error) {
	if profile.Email != "" {
		existing, err := tx.Accounts().GetAccountByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			return adoptProfile(ctx, tx, existing, profile)
		case !errors.Is(err, store.ErrNotFound):
			return domain.Account{}, err
		}
	}

	account := domain.Account{
		ID:            idx.New().String(),
		Email:         profile.Email,
		EmailVerified: profile.Email != "",
		DisplayName:   profile.DisplayName,
	}
	if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func adoptProfile(ctx context.Context, tx store.Tx, account domain.Account, profile federatedProfile) (domain.Account, error) {
	if account.EmailVerified && account.DisplayName != "" {
		return account, nil
	}
	if account.DisplayName == "" {
		account.DisplayName = profile.DisplayName
	}
	account.EmailVerified = true
	if err := tx.Accounts().UpdateProfile(ctx, account.ID, account.DisplayName, true); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// SignInWithPhoneNumber confirms a federation phone session and signs in
// the number's account, creating it if needed.
func (s *AccountService) SignInWithPhoneNumber(ctx context.Context, sessionInfo, code string) (*domain.IDTokenResult, error) {
	phone, err := s.Phone.VerifyCode(ctx, domain.PhoneSessionFederation, sessionInfo, code)
	if err != nil {
		return nil, err
	}

	account, isNew, err := s.PhoneAccount(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, account, string(fedauth.ProviderPhone), isNew)
}

// PhoneAccount returns the account registered to phone, creating it when
// there is none.
func (s *AccountService) PhoneAccount(ctx context.Context, phone string) (domain.Account, bool, error) {
	account, err := s.Store.Accounts().GetAccountByPhone(ctx, phone)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, false, err
	}

	account = domain.Account{ID: idx.New().String(), PhoneNumber: phone}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent sign-in for the same number.
			account, err = s.Store.Accounts().GetAccountByPhone(ctx, phone)
			return account, false, err
		}
		return domain.Account{}, false, err
	}
	return account, true, nil
}

// Get returns an account by local id.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.Store.Accounts().GetAccountByID(ctx, id)
}

// Reset deletes every account.
func (s *AccountService) Reset(ctx context.Context) error {
	return s.Store.Accounts().DeleteAllAccounts(ctx)
}

func (s *AccountService) issue(
	ctx context.Context,
	account domain.Account,
	provider string,
	isNew bool,
) (*domain.IDTokenResult, error) {
	result, err := s.Tokens.IssueIDToken(ctx, account, provider)
	if err != nil {
		return nil, err
	}
	result.IsNewUser = isNew
	return result, nil
}
