// Package transport models a single HTTP exchange as an observable
// handle with a staged lifecycle and incremental progress events.
package transport

import (
	"bytes"
	"net/http"
	"sync"
)

// State is the staged lifecycle of one exchange.
type State int

const (
	// StateUnsent means the handle exists but the request has not been issued.
	StateUnsent State = iota
	// StateOpened means the request has been handed to the underlying client.
	StateOpened
	// StateHeadersReceived means response status and headers have arrived.
	StateHeadersReceived
	// StateReceivingBody means body bytes are arriving.
	StateReceivingBody
	// StateDone means the exchange finished, successfully or not.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateUnsent:
		return "unsent"
	case StateOpened:
		return "opened"
	case StateHeadersReceived:
		return "headers-received"
	case StateReceivingBody:
		return "receiving-body"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressEvent describes one progress notification. Loaded is the
// cumulative byte count for the direction the event belongs to, and
// Total is the expected final count, or -1 when unknown.
type ProgressEvent struct {
	State  State
	Loaded int64
	Total  int64
}

// ProgressFunc receives progress notifications.
type ProgressFunc func(ev ProgressEvent)

// Factory constructs the Handle used for one exchange.
// Override it to observe or script an exchange in tests.
type Factory func() *Handle

// Handle represents one in-flight HTTP exchange. It is owned by a
// single dispatch: one goroutine drives it through its states while
// any number of listeners observe. Listener invocations are
// serialized by the driving goroutine.
type Handle struct {
	mu        sync.Mutex
	state     State
	body      bytes.Buffer
	total     int64
	status    int
	header    http.Header
	progress  []ProgressFunc
	stateFns  []func(State)
	upload    *Upload
}

// NewHandle returns a Handle in StateUnsent with no known total.
func NewHandle() *Handle {
	return &Handle{total: -1}
}

// State reports the current readiness state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Text returns the cumulative response text observed so far.
func (h *Handle) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.body.String()
}

// Len returns the number of response bytes observed so far.
func (h *Handle) Len() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(h.body.Len())
}

// Total returns the expected body size from the response headers,
// or -1 before StateHeadersReceived or when unknown.
func (h *Handle) Total() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// StatusCode returns the response status code, or 0 before
// StateHeadersReceived.
func (h *Handle) StatusCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Header returns the response headers, or nil before
// StateHeadersReceived.
func (h *Handle) Header() http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.header
}

// OnProgress registers fn for download progress events. Registration
// after StateDone is allowed; fn simply receives no events.
func (h *Handle) OnProgress(fn ProgressFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = append(h.progress, fn)
}

// OnStateChange registers fn to run on every state transition.
func (h *Handle) OnStateChange(fn func(State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateFns = append(h.stateFns, fn)
}

// Upload returns the upload sub-object, or nil when the exchange
// carries no request body.
func (h *Handle) Upload() *Upload {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.upload
}

// AttachUpload creates the upload sub-object for an exchange that
// sends a request body of the given size (-1 when unknown).
func (h *Handle) AttachUpload(total int64) *Upload {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.upload == nil {
		h.upload = &Upload{total: total}
	}
	return h.upload
}

// Open marks the request as issued.
func (h *Handle) Open() {
	h.setState(StateOpened)
}

// ReceiveResponse records response metadata and transitions to
// StateHeadersReceived. total is the expected body size, or -1.
func (h *Handle) ReceiveResponse(status int, header http.Header, total int64) {
	h.mu.Lock()
	h.status = status
	h.header = header
	h.total = total
	h.mu.Unlock()
	h.setState(StateHeadersReceived)
}

// ReceiveBody appends p to the cumulative body, transitions to
// StateReceivingBody and fires a download progress event.
func (h *Handle) ReceiveBody(p []byte) {
	h.mu.Lock()
	h.body.Write(p)
	changed := h.state != StateReceivingBody
	h.state = StateReceivingBody
	ev := ProgressEvent{State: StateReceivingBody, Loaded: int64(h.body.Len()), Total: h.total}
	stateFns := h.stateFns
	progress := h.progress
	h.mu.Unlock()

	if changed {
		for _, fn := range stateFns {
			fn(StateReceivingBody)
		}
	}
	for _, fn := range progress {
		fn(ev)
	}
}

// Finish transitions to StateDone and fires a terminal progress
// event. It is called on every outcome, including failures, so
// listeners always observe the done state.
func (h *Handle) Finish() {
	h.mu.Lock()
	if h.state == StateDone {
		h.mu.Unlock()
		return
	}
	h.state = StateDone
	ev := ProgressEvent{State: StateDone, Loaded: int64(h.body.Len()), Total: h.total}
	stateFns := h.stateFns
	progress := h.progress
	h.mu.Unlock()

	for _, fn := range stateFns {
		fn(StateDone)
	}
	for _, fn := range progress {
		fn(ev)
	}
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	if h.state == s {
		h.mu.Unlock()
		return
	}
	h.state = s
	stateFns := h.stateFns
	h.mu.Unlock()

	for _, fn := range stateFns {
		fn(s)
	}
}
