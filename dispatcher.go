package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/outpostkit/fetch/csrf"
	"github.com/outpostkit/fetch/throttle"
	"github.com/outpostkit/fetch/transport"
)

// Dispatcher issues progress-aware HTTP requests. It wraps a std-lib
// *http.Client, setting a default client and transport that can be
// customized via optional funcs.
type Dispatcher struct {
	c        *http.Client
	logger   *slog.Logger
	tracer   trace.Tracer
	defaults Defaults
}

// New creates a Dispatcher with the given options.
func New(optFns ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying dispatcher option: %w", err)
		}
	}

	if opts.client != nil {
		d.c = opts.client
	}

	if opts.logger != nil {
		d.logger = opts.logger
	}

	if opts.tracer != nil {
		d.tracer = opts.tracer
	} else {
		d.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	if opts.timeout != nil {
		d.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		d.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if opts.defaults != nil {
		if err := validateDefaults(*opts.defaults); err != nil {
			return nil, fmt.Errorf("validating defaults: %w", err)
		}
		d.defaults = *opts.defaults
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		rt = opts.client.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	if opts.csrf != nil {
		wrapped, err := csrf.NewRoundTripper(opts.csrf.cookieName, opts.csrf.headerName, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring csrf injection: %w", err)
		}
		rt = wrapped
	}
	if opts.throttle != nil {
		wrapped, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return d.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = wrapped
	}
	d.c.Transport = rt

	return d, nil
}

// Dispatch issues a request to target and returns immediately with a
// [Result] that settles when the exchange completes. Dispatch itself
// never fails; option, build, and transport errors all surface
// through the Result.
//
// The transport handle is created here, before the request is issued,
// so listeners registered on the Result observe every event the
// exchange fires.
func (d *Dispatcher) Dispatch(ctx context.Context, target string, optFns ...RequestOption) *Result {
	var opts requestOpts
	var optErr error
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			optErr = fmt.Errorf("applying request option: %w", err)
			break
		}
	}

	cfg := d.normalize(opts)
	h := cfg.factory()
	ctx, cancel := context.WithCancel(ctx)
	r := newResult(h, cfg.chunking, cancel)

	if optErr != nil {
		cancel()
		h.Finish()
		r.settle(nil, optErr)
		return r
	}

	ctx, span := d.tracer.Start(ctx, "fetch.dispatch", trace.WithAttributes(
		attribute.String("http.method", cfg.method),
		attribute.String("url.full", target),
		attribute.Bool("fetch.chunking", cfg.chunking),
	))

	req, err := buildRequest(ctx, h, target, cfg, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		cancel()
		h.Finish()
		r.settle(nil, err)
		return r
	}

	go d.run(ctx, span, h, cfg, req, r)

	return r
}

// buildRequest assembles the *http.Request for one dispatch, wiring
// the request body through the handle's upload sub-object.
func buildRequest(ctx context.Context, h *transport.Handle, target string, cfg effectiveConfig, opts requestOpts) (*http.Request, error) {
	var payload bytes.Buffer
	if opts.body != nil {
		if err := json.NewEncoder(&payload).Encode(opts.body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
	}

	// Browser XHR engines need the upload-progress slot cleared
	// before a request is issued; net/http reports upload bytes
	// through the body reader, so there is no slot to reset here.
	var body io.Reader
	if opts.body != nil {
		up := h.AttachUpload(int64(payload.Len()))
		body = transport.UploadBody(up, &payload)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	if opts.body != nil {
		req.ContentLength = int64(payload.Len())
	}

	for _, cookie := range cfg.cookies {
		req.AddCookie(cookie)
	}

	if cfg.contentType != "" {
		req.Header.Set("Content-Type", cfg.contentType)
	}
	for k, v := range cfg.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	return req, nil
}

// run drives the handle through the exchange and settles the result.
// It is the only goroutine firing events on the handle, which
// serializes all listener invocations.
func (d *Dispatcher) run(ctx context.Context, span trace.Span, h *transport.Handle, cfg effectiveConfig, req *http.Request, r *Result) {
	settle := func(resp *Response, err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.settle(resp, err)
	}

	h.Open()

	resp, err := d.c.Do(req)
	if err != nil {
		h.Finish()
		settle(nil, fmt.Errorf("dispatch http do: %w", err))
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Error("failed to close response body", "error", err)
		}
	}()

	h.ReceiveResponse(resp.StatusCode, resp.Header, resp.ContentLength)

	body := io.Reader(&contextReader{ctx: ctx, r: resp.Body})
	buf := make([]byte, cfg.readBuffer)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if cfg.maxBody > 0 && h.Len()+int64(n) > cfg.maxBody {
				h.Finish()
				settle(nil, fmt.Errorf("%w: cap %d bytes", ErrBodyTooLarge, cfg.maxBody))
				return
			}
			h.ReceiveBody(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			h.Finish()
			settle(nil, fmt.Errorf("reading response body: %w", rerr))
			return
		}
	}

	h.Finish()

	response := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       []byte(h.Text()),
	}

	if cfg.expect != 0 && resp.StatusCode != cfg.expect {
		errBody := response.Body
		if len(errBody) > maxErrBodySize {
			errBody = errBody[:maxErrBodySize]
		}
		settle(nil, &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(errBody),
			Err:        ErrUnexpectedStatusCode,
		})
		return
	}

	settle(response, nil)
}

// contextReader fails reads once ctx ends, so cancellation interrupts
// a body drain promptly.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
