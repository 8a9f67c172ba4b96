/*
Package fedauth is a client SDK that signs users in with third-party identity
providers, federates the result with an identity backend and exchanges the
federated identity for the application's own access/refresh token pair.

# Overview

A login runs in three phases:

 1. Provider login: a Provider (Apple, Facebook, Google, Twitter, phone or
    password) produces a Credential.
 2. Federation sign-in: a FederationBackend turns the Credential into an
    Identity that can mint bearer ID tokens.
 3. Backend exchange: the ID token is posted to the application backend,
    which answers with a BackendToken (or any model chosen with AuthAs).

RemoteAuthExchanger drives all three:

	backend := identitytoolkit.New(apiKey)
	exchanger := fedauth.NewRemoteAuthExchanger(
		fedauth.Endpoint("https://api.example.com/auth/exchange"),
		backend,
		nil,
	)

	provider := fedauth.NewPasswordProvider("ada@example.com", "hunter2")
	exchanger.Auth(ctx, provider, func(tok fedauth.BackendToken, err error) {
		// runs on fedauth.MainQueue()
	})

# Completion Context

Every callback in this package is delivered on a Dispatcher. The default is
MainQueue, a process-wide SerialQueue that runs callbacks one at a time in
FIFO order, so the stages of one exchange never run concurrently. Tests
usually pass Inline. Await turns any callback operation into a blocking call:

	tok, err := fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
		exchanger.Auth(ctx, provider, h)
	})

# Request Pipeline

EndpointSpec describes an endpoint. BuildRequest validates its address and
serializes parameters into a JSON body. Transport executes the request with
a fixed 15 second timeout and tracks it until its completion fires. Executor
validates the status code and decodes the body; ServerAuthenticator delivers
the result on its completion context.

# Errors

All failures are *AuthError values tagged with the Phase they happened in and
a Reason. Compare them with errors.Is:

	if errors.Is(err, fedauth.ErrInvalidNonce) {
		// Apple returned a credential without our nonce
	}

	var ae *fedauth.AuthError
	if errors.As(err, &ae) && ae.Phase == fedauth.PhaseResponse {
		log.Println("backend answered", ae.StatusCode())
	}

Underlying errors are kept as the Cause and unwrap normally.

# Phone Login

PhoneProvider is the federation-backed SMS login. VerifyPhone returns a
single-use RequestKey that is threaded back through WithCode:

	phone := &fedauth.PhoneProvider{Verifier: backend}
	phone.VerifyPhone(ctx, "+61 400 000 000", func(key *fedauth.RequestKey, err error) {
		// later, once the user typed the code
		exchanger.Auth(ctx, phone.WithCode(key, code), handler)
	})

PhoneAuthenticator runs the same flow directly against the application
backend.
*/
package fedauth
