package fedauth

import (
	"context"
	"sync"
)

// PasswordProvider signs in with an email and password set beforehand.
// Stored values are cleared by every LogIn, whatever its outcome.
type PasswordProvider struct {
	Queue Dispatcher

	mu       sync.Mutex
	email    string
	password string
}

// NewPasswordProvider returns a provider holding email and password.
func NewPasswordProvider(email, password string) *PasswordProvider {
	return &PasswordProvider{email: email, password: password}
}

func (*PasswordProvider) isProvider()        {}
func (*PasswordProvider) Kind() ProviderKind { return ProviderPassword }

// SetProfile replaces the stored email and password.
func (p *PasswordProvider) SetProfile(email, password string) *PasswordProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.email = email
	p.password = password
	return p
}

// Reset forgets the stored email and password.
func (p *PasswordProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.email = ""
	p.password = ""
}

// HasProfile reports whether both values are set.
func (p *PasswordProvider) HasProfile() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email != "" && p.password != ""
}

// LogIn only checks for emptiness; well-formedness is the federation
// backend's call.
func (p *PasswordProvider) LogIn(_ context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)

	p.mu.Lock()
	email, password := p.email, p.password
	p.email, p.password = "", ""
	p.mu.Unlock()

	if email == "" {
		deliver(q, handler, Credential{}, ErrInvalidEmail)
		return
	}
	if password == "" {
		deliver(q, handler, Credential{}, ErrInvalidPassword)
		return
	}

	deliver(q, handler, Credential{
		Provider: ProviderPassword,
		Email:    email,
		Password: password,
	}, nil)
}
