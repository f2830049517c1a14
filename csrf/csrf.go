// Package csrf provides an [http.RoundTripper] that mirrors a
// cookie-stored token into a request header on state-mutating methods.
//
// Servers that use double-submit CSRF protection hand the client a
// token in a cookie and expect it back in a header on any request
// that can change state. The round tripper reads the token from the
// cookies already attached to the outgoing request (a cookie jar on
// the client attaches them before the transport runs) and sets the
// header, leaving safe methods and requests to other hosts untouched.
package csrf

import (
	"errors"
	"net/http"
)

// defaultSafeMethods are the methods that never receive the token.
var defaultSafeMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodTrace,
}

// NewRoundTripper wraps next so that requests on state-mutating
// methods carry the value of the named cookie in the named header.
func NewRoundTripper(cookieName, headerName string, next http.RoundTripper, optFns ...Option) (http.RoundTripper, error) {
	if cookieName == "" || headerName == "" {
		return nil, errors.New("cookie and header names must not be empty")
	}

	rt := &injector{
		cookieName: cookieName,
		headerName: headerName,
		safe:       defaultSafeMethods,
		next:       next,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, err
		}
	}

	if opts.safeMethods != nil {
		rt.safe = opts.safeMethods
	}
	if opts.host != "" {
		rt.host = opts.host
	}

	return rt, nil
}

// Option is a functional option for [NewRoundTripper].
type Option func(*options) error

type options struct {
	safeMethods []string
	host        string
}

// WithSafeMethods replaces the default safe set (GET, HEAD, OPTIONS, TRACE).
func WithSafeMethods(methods ...string) Option {
	return func(opts *options) error {
		if len(methods) == 0 {
			return errors.New("safe method set must not be empty")
		}
		opts.safeMethods = methods
		return nil
	}
}

// WithHost restricts injection to requests addressed to the given
// host, so the token never leaks cross-origin.
func WithHost(host string) Option {
	return func(opts *options) error {
		if host == "" {
			return errors.New("host must not be empty")
		}
		opts.host = host
		return nil
	}
}

// injector is an http.RoundTripper copying the token cookie into
// the configured header.
type injector struct {
	cookieName string
	headerName string
	safe       []string
	host       string
	next       http.RoundTripper
}

func (in *injector) RoundTrip(r *http.Request) (*http.Response, error) {
	if in.isSafe(r.Method) {
		return in.next.RoundTrip(r)
	}
	if in.host != "" && r.URL.Host != in.host {
		return in.next.RoundTrip(r)
	}
	if r.Header.Get(in.headerName) != "" {
		return in.next.RoundTrip(r)
	}

	c, err := r.Cookie(in.cookieName)
	if err != nil || c.Value == "" {
		return in.next.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set(in.headerName, c.Value)
	return in.next.RoundTrip(cpy)
}

func (in *injector) isSafe(method string) bool {
	for _, m := range in.safe {
		if m == method {
			return true
		}
	}
	return false
}
