package fedauth

import (
	"net/url"
	"strings"
)

// Source resolves to the target URL of an endpoint. Both plain strings and
// parsed URLs satisfy it through Address and AddressURL.
type Source interface {
	TargetURL() (*url.URL, bool)
}

type stringSource string

func (s stringSource) TargetURL() (*url.URL, bool) {
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return u, true
}

type urlSource struct{ u *url.URL }

func (s urlSource) TargetURL() (*url.URL, bool) {
	if s.u == nil {
		return nil, false
	}
	cp := *s.u
	return &cp, true
}

// Address returns a Source backed by a raw URL string.
func Address(raw string) Source { return stringSource(raw) }

// AddressURL returns a Source backed by an already parsed URL.
func AddressURL(u *url.URL) Source { return urlSource{u: u} }

// EndpointSpec describes one backend endpoint. It is built once at setup and
// treated as immutable afterwards.
type EndpointSpec struct {
	// Address is where requests are sent.
	Address Source

	// Headers are added to every request for this endpoint.
	Headers map[string]string

	// ExtraBody fields are merged into every JSON body. Per-call parameters
	// win on key collisions.
	ExtraBody map[string]any
}

// Endpoint is shorthand for an EndpointSpec with a string address.
func Endpoint(raw string) EndpointSpec {
	return EndpointSpec{Address: Address(raw)}
}

// resolve validates the address: it must be a non-empty absolute URL with a
// host.
func (s EndpointSpec) resolve() (*url.URL, error) {
	if s.Address == nil {
		return nil, ErrInvalidURL
	}
	u, ok := s.Address.TargetURL()
	if !ok || u == nil || u.String() == "" {
		return nil, ErrInvalidURL
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
