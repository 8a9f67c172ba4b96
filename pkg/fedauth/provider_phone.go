package fedauth

import (
	"context"
	"strings"
	"sync/atomic"
)

// defaultPhoneCutset is stripped from numbers by FormatPhone.
var defaultPhoneCutset = []string{" ", "-", "(", ")", "+"}

// FormatPhone removes formatting characters from number. With no cutset it
// strips spaces, dashes, parentheses and plus signs.
func FormatPhone(number string, cutset ...string) string {
	if len(cutset) == 0 {
		cutset = defaultPhoneCutset
	}
	for _, c := range cutset {
		if c == "" {
			continue
		}
		number = strings.ReplaceAll(number, c, "")
	}
	return number
}

// PhoneVerifier sends SMS codes on behalf of the federation backend and
// returns the verification id the code is bound to.
type PhoneVerifier interface {
	SendVerificationCode(ctx context.Context, phoneNumber string) (string, error)
}

// RequestKey is the single-use handle of a pending phone verification. It is
// returned by VerifyPhone and threaded back into VerifyCodeAndAuth; it is
// consumed by the first sign-in that succeeds with it. Only one sign-in may
// hold the key at a time.
type RequestKey struct {
	verificationID string
	state          atomic.Int32
}

const (
	keyFree int32 = iota
	keyInUse
	keyConsumed
)

// NewRequestKey wraps a verification id obtained elsewhere, for example one
// restored after a process restart.
func NewRequestKey(verificationID string) *RequestKey {
	return &RequestKey{verificationID: verificationID}
}

// VerificationID returns the id the SMS code is bound to.
func (k *RequestKey) VerificationID() string {
	if k == nil {
		return ""
	}
	return k.verificationID
}

// Consumed reports whether a sign-in already succeeded with this key.
func (k *RequestKey) Consumed() bool {
	return k != nil && k.state.Load() == keyConsumed
}

func (k *RequestKey) usable() bool {
	return k != nil && k.verificationID != "" && k.state.Load() == keyFree
}

// claim reserves the key for one sign-in. A concurrent holder or an earlier
// success makes it fail.
func (k *RequestKey) claim() bool {
	return k != nil && k.verificationID != "" && k.state.CompareAndSwap(keyFree, keyInUse)
}

// release ends a claim: a success consumes the key, a failure frees it for
// another attempt.
func (k *RequestKey) release(succeeded bool) {
	if k == nil {
		return
	}
	if succeeded {
		k.state.Store(keyConsumed)
		return
	}
	k.state.CompareAndSwap(keyInUse, keyFree)
}

// PhoneProvider is the two-phase SMS login: VerifyPhone sends a code and
// yields a RequestKey, WithCode binds the key and the received code into a
// Provider usable by FederatedAuthPerformer.
type PhoneProvider struct {
	Verifier PhoneVerifier
	Queue    Dispatcher

	key  *RequestKey
	code string
}

func (*PhoneProvider) isProvider()        {}
func (*PhoneProvider) Kind() ProviderKind { return ProviderPhone }

// VerifyPhone formats number and asks the backend to send a code.
func (p *PhoneProvider) VerifyPhone(ctx context.Context, number string, handler func(*RequestKey, error)) {
	q := queueOrMain(p.Queue)
	formatted := FormatPhone(number)
	go func() {
		id, err := p.Verifier.SendVerificationCode(ctx, formatted)
		q.Dispatch(func() {
			if err != nil || id == "" {
				handler(nil, envelope(err))
				return
			}
			handler(NewRequestKey(id), nil)
		})
	}()
}

// WithCode returns a copy of p bound to key and code.
func (p *PhoneProvider) WithCode(key *RequestKey, code string) *PhoneProvider {
	return &PhoneProvider{Verifier: p.Verifier, Queue: p.Queue, key: key, code: code}
}

// VerifyCodeAndAuth validates the inputs and produces the phone credential.
func (p *PhoneProvider) VerifyCodeAndAuth(
	ctx context.Context,
	key *RequestKey,
	code string,
	handler func(Credential, error),
) {
	p.WithCode(key, code).LogIn(ctx, handler)
}

// LogIn fails without contacting anyone when the code is empty or the key is
// missing or already consumed.
func (p *PhoneProvider) LogIn(_ context.Context, handler func(Credential, error)) {
	q := queueOrMain(p.Queue)
	if p.code == "" {
		deliver(q, handler, Credential{}, ErrSpecifiedCodeIsEmpty)
		return
	}
	if !p.key.usable() {
		deliver(q, handler, Credential{}, ErrNilRequestKey)
		return
	}
	deliver(q, handler, Credential{
		Provider:       ProviderPhone,
		VerificationID: p.key.VerificationID(),
		Code:           p.code,
	}, nil)
}

func (p *PhoneProvider) attemptStarted() error {
	if !p.key.claim() {
		return ErrNilRequestKey
	}
	return nil
}

func (p *PhoneProvider) attemptFinished(err error) {
	p.key.release(err == nil)
}
