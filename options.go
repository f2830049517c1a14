package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/outpostkit/fetch/throttle"
	"github.com/outpostkit/fetch/transport"
)

// Option is a functional option for configuring a [Dispatcher] via [New].
type Option func(*options) error

type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	csrf              *csrfConfig
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	defaults          *Defaults
}

type csrfConfig struct {
	cookieName string
	headerName string
}

// WithClient replaces the default [http.Client] used by the [Dispatcher].
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithCSRF mirrors the named cookie into the named header on
// state-mutating dispatches, for servers using double-submit CSRF
// protection. Requires a cookie jar on the client to hold the token.
func WithCSRF(cookieName, headerName string) Option {
	return func(o *options) error {
		if cookieName == "" || headerName == "" {
			return errors.New("cookie and header names must not be empty")
		}
		o.csrf = &csrfConfig{cookieName: cookieName, headerName: headerName}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Dispatcher] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Dispatcher].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer records a span per dispatch on the given tracer.
// A no-op tracer is used unless set.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithDefaults sets the process-wide dispatch defaults. The struct is
// validated once here; see [Defaults] for field constraints.
func WithDefaults(d Defaults) Option {
	return func(o *options) error {
		o.defaults = &d
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// RequestOption is a functional option for [Dispatcher.Dispatch].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	method      string
	body        any
	contentType *string
	cookies     []*http.Cookie
	headers     map[string][]string
	chunking    *bool
	factory     transport.Factory
	expect      int
}

// WithMethod sets the HTTP method. GET is used if unset.
func WithMethod(method string) RequestOption {
	return func(opts *requestOpts) error {
		if method == "" {
			return errors.New("method must not be empty")
		}
		opts.method = method
		return nil
	}
}

// WithPayload sets the JSON-encoded request body. A dispatch with a
// payload exposes upload progress through its result.
func WithPayload(body any) RequestOption {
	return func(opts *requestOpts) error {
		opts.body = body
		return nil
	}
}

// WithContentType overrides the default "application/json" Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}
		opts.contentType = &contentType
		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers
		return nil
	}
}

// WithCookies attaches the given cookies to the outgoing request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(opts *requestOpts) error {
		opts.cookies = cookies
		return nil
	}
}

// WithChunking overrides the process-wide chunking default for this
// dispatch.
func WithChunking(enabled bool) RequestOption {
	return func(opts *requestOpts) error {
		opts.chunking = &enabled
		return nil
	}
}

// WithTransportFactory overrides how the transport handle is
// constructed for this dispatch, primarily for test doubles.
func WithTransportFactory(f transport.Factory) RequestOption {
	return func(opts *requestOpts) error {
		if f == nil {
			return errors.New("factory must not be nil")
		}
		opts.factory = f
		return nil
	}
}

// WithExpectStatus settles the result with an [UnexpectedStatusError]
// when the response status code differs from expCode. Without it, any
// HTTP response settles successfully and the caller inspects the code.
func WithExpectStatus(expCode int) RequestOption {
	return func(opts *requestOpts) error {
		if expCode < 100 || expCode > 599 {
			return fmt.Errorf("invalid status code %d", expCode)
		}
		opts.expect = expCode
		return nil
	}
}
