package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEmulatorURL  = "http://localhost:9099"
	DefaultExchangePath = "/api/auth/exchange"
	DefaultVerifyPath   = "/api/auth/phone/verify"
	DefaultConfirmPath  = "/api/auth/phone/confirm"
	DefaultTimeout      = 15 * time.Second
)

// Profile is the CLI's on-disk configuration.
type Profile struct {
	// APIKey is appended as ?key= to federation calls.
	APIKey string `yaml:"api-key,omitempty"`

	// Federation is the identity toolkit base URL. Leave empty for the
	// production endpoints.
	Federation string `yaml:"federation,omitempty"`

	// Backend is the application backend base URL.
	Backend string `yaml:"backend"`

	ExchangePath string        `yaml:"exchange-path,omitempty"`
	VerifyPath   string        `yaml:"phone-verify-path,omitempty"`
	ConfirmPath  string        `yaml:"phone-confirm-path,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`

	OAuth OAuthSettings `yaml:"oauth,omitempty"`

	Output string `yaml:"output,omitempty"`
}

// OAuthSettings holds the client registrations used by `login oauth`.
type OAuthSettings struct {
	Facebook OAuthClient `yaml:"facebook,omitempty"`
	Google   OAuthClient `yaml:"google,omitempty"`
}

type OAuthClient struct {
	ClientID     string `yaml:"client-id,omitempty"`
	ClientSecret string `yaml:"client-secret,omitempty"`

	// Issuer overrides the OIDC issuer. Google only.
	Issuer string `yaml:"issuer,omitempty"`
}

func DefaultProfile() Profile {
	return Profile{
		Federation:   DefaultEmulatorURL,
		Backend:      DefaultEmulatorURL,
		ExchangePath: DefaultExchangePath,
		VerifyPath:   DefaultVerifyPath,
		ConfirmPath:  DefaultConfirmPath,
		Timeout:      DefaultTimeout,
		Output:       "json",
	}
}

// DefaultProfilePath is $XDG_CONFIG_HOME/fedauth/profile.yaml or the
// platform equivalent.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".fedauth", "profile.yaml")
	}
	return filepath.Join(dir, "fedauth", "profile.yaml")
}

// LoadProfile reads path over DefaultProfile. A missing file is not an
// error.
func LoadProfile(path string) (*Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return &p, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

func SaveProfile(path string, p *Profile) error {
	if p == nil {
		return errors.New("profile is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}
	content, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// ApplyEnv overlays FEDAUTH_* variables.
func (p *Profile) ApplyEnv() {
	setFromEnv(&p.APIKey, "FEDAUTH_API_KEY")
	setFromEnv(&p.Federation, "FEDAUTH_FEDERATION")
	setFromEnv(&p.Backend, "FEDAUTH_BACKEND")
	setFromEnv(&p.Output, "FEDAUTH_OUTPUT")
	setFromEnv(&p.OAuth.Facebook.ClientID, "FEDAUTH_FACEBOOK_CLIENT_ID")
	setFromEnv(&p.OAuth.Facebook.ClientSecret, "FEDAUTH_FACEBOOK_CLIENT_SECRET")
	setFromEnv(&p.OAuth.Google.ClientID, "FEDAUTH_GOOGLE_CLIENT_ID")
	setFromEnv(&p.OAuth.Google.ClientSecret, "FEDAUTH_GOOGLE_CLIENT_SECRET")

	if v := os.Getenv("FEDAUTH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			p.Timeout = d
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// BackendURL joins the backend base with path.
func (p *Profile) BackendURL(path string) string {
	return strings.TrimSuffix(p.Backend, "/") + "/" + strings.TrimPrefix(path, "/")
}
