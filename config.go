package fetch

import (
	"net/http"

	"github.com/outpostkit/fetch/transport"
)

// defaultReadBuffer is the body read size used when Defaults.ReadBuffer
// is left unset.
const defaultReadBuffer = 32 << 10 // 32KB

// Defaults hold the process-wide dispatch defaults. They are set once
// at construction via [WithDefaults], validated there, and read on
// every dispatch; they never mutate per request.
type Defaults struct {
	// Chunking enables per-event chunk delta computation unless the
	// request overrides it with [WithChunking].
	Chunking bool `json:"chunking"`

	// ReadBuffer is the size in bytes of each body read, which also
	// bounds chunk granularity. 0 means 32KB.
	ReadBuffer int `json:"read_buffer" validate:"gte=0"`

	// MaxBody caps the buffered response body in bytes. A dispatch
	// whose response exceeds it settles with [ErrBodyTooLarge].
	// 0 means no cap.
	MaxBody int64 `json:"max_body" validate:"gte=0"`

	// Factory constructs the transport handle for each dispatch
	// unless the request overrides it with [WithTransportFactory].
	// Nil means [transport.NewHandle].
	Factory transport.Factory `json:"-"`
}

// effectiveConfig is the fully resolved configuration for one
// dispatch, produced by normalize and owned by the dispatcher.
type effectiveConfig struct {
	method      string
	chunking    bool
	factory     transport.Factory
	expect      int
	readBuffer  int
	maxBody     int64
	contentType string
	headers     map[string][]string
	cookies     []*http.Cookie
}

// normalize merges per-request options with the dispatcher's Defaults.
// It is a pure function of its inputs: absent fields are defaulted,
// never rejected.
func (d *Dispatcher) normalize(opts requestOpts) effectiveConfig {
	cfg := effectiveConfig{
		method:     http.MethodGet,
		chunking:   d.defaults.Chunking,
		factory:    transport.NewHandle,
		expect:     opts.expect,
		readBuffer: defaultReadBuffer,
		maxBody:    d.defaults.MaxBody,
		headers:    opts.headers,
		cookies:    opts.cookies,
	}

	if opts.method != "" {
		cfg.method = opts.method
	}
	if opts.chunking != nil {
		cfg.chunking = *opts.chunking
	}
	if d.defaults.Factory != nil {
		cfg.factory = d.defaults.Factory
	}
	if opts.factory != nil {
		cfg.factory = opts.factory
	}
	if d.defaults.ReadBuffer > 0 {
		cfg.readBuffer = d.defaults.ReadBuffer
	}

	if opts.contentType != nil {
		cfg.contentType = *opts.contentType
	} else if opts.body != nil {
		cfg.contentType = "application/json"
	}

	return cfg
}
