package identitytoolkit

// Wire types of the Identity Toolkit and Secure Token REST APIs. The local
// emulator decodes and encodes the same structs.

// PasswordRequest is the body of accounts:signUp and
// accounts:signInWithPassword.
type PasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// IdpRequest is the body of accounts:signInWithIdp. PostBody is a form
// encoded string carrying the provider credential (id_token, access_token,
// oauth_token_secret, nonce) and providerId.
type IdpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
}

// SendCodeRequest is the body of accounts:sendVerificationCode.
type SendCodeRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// SendCodeResponse carries the verification id the SMS code is bound to.
type SendCodeResponse struct {
	SessionInfo string `json:"sessionInfo"`
}

// PhoneRequest is the body of accounts:signInWithPhoneNumber.
type PhoneRequest struct {
	SessionInfo string `json:"sessionInfo"`
	Code        string `json:"code"`
}

// AuthResponse is returned by every sign-in and sign-up call.
type AuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	ProviderID   string `json:"providerId,omitempty"`
	FederatedID  string `json:"federatedId,omitempty"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`

	// ExpiresIn is the ID token lifetime in seconds, encoded as a string.
	ExpiresIn string `json:"expiresIn"`

	IsNewUser  bool `json:"isNewUser,omitempty"`
	Registered bool `json:"registered,omitempty"`
}

// RefreshRequest is the body of the secure token endpoint.
type RefreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the secure token endpoint's answer. Note the snake case.
type RefreshResponse struct {
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id,omitempty"`
}
