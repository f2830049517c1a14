package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/outpostkit/fetch/transport"
)

// ProgressFunc receives download progress notifications. chunk is
// non-nil exactly when chunking is enabled for the dispatch and the
// transport is in [transport.StateReceivingBody]; it then holds the
// response bytes newly received since the previous event.
type ProgressFunc func(ev transport.ProgressEvent, chunk []byte)

// UploadProgressFunc receives upload progress notifications. Upload
// events report byte counts only; no body text is reconstructed.
type UploadProgressFunc func(ev transport.ProgressEvent)

// Response is the terminal value of a successful dispatch: the full
// response, body included, regardless of whether chunking was active.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the response body into dest.
func (r *Response) JSON(dest any) error {
	return json.Unmarshal(r.Body, dest)
}

// Result represents one in-flight or settled dispatch. It settles
// exactly once with a [Response] or an error, and additionally
// accepts progress subscriptions at any point; registrations after
// settlement are silent no-ops.
type Result struct {
	handle   *transport.Handle
	tracker  *chunkTracker
	chunking bool
	cancel   context.CancelFunc

	once sync.Once
	done chan struct{}
	resp *Response
	err  error
}

func newResult(h *transport.Handle, chunking bool, cancel context.CancelFunc) *Result {
	return &Result{
		handle:   h,
		tracker:  &chunkTracker{},
		chunking: chunking,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// OnProgress registers fn for download progress events and returns
// the Result for chaining.
//
// All registrations on one Result share a single chunk offset: a
// chunk delivered to one listener is consumed for all of them, so two
// listeners split the chunk ranges between events unpredictably. One
// primary consumer per dispatch is the intended usage; additional
// listeners should ignore the chunk argument and read byte counts
// from the event instead.
func (r *Result) OnProgress(fn ProgressFunc) *Result {
	r.handle.OnProgress(func(ev transport.ProgressEvent) {
		var chunk []byte
		if r.chunking && ev.State == transport.StateReceivingBody {
			chunk = r.tracker.delta(r.handle.Text())
		}
		fn(ev, chunk)
	})

	return r
}

// OnUploadProgress registers fn against the transport's upload
// sub-object and returns the Result for chaining. When the dispatch
// carries no request body there is no upload sub-object and the
// registration is a no-op; fn is simply never invoked.
func (r *Result) OnUploadProgress(fn UploadProgressFunc) *Result {
	r.handle.Upload().OnProgress(transport.ProgressFunc(fn))

	return r
}

// Transport returns the handle backing this dispatch, for callers
// that need readiness state or response metadata before settlement.
func (r *Result) Transport() *transport.Handle { return r.handle }

// Done returns a channel that is closed when the dispatch settles.
func (r *Result) Done() <-chan struct{} { return r.done }

// Err blocks until the dispatch settles and returns its error.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Response blocks until the dispatch settles and returns its outcome.
func (r *Result) Response() (*Response, error) {
	<-r.done
	return r.resp, r.err
}

// Wait blocks until the dispatch settles or ctx ends.
func (r *Result) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-r.done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel cancels the dispatch's context. The result settles with the
// resulting transport error; future progress events stop.
func (r *Result) Cancel() {
	r.cancel()
}

// settle records the outcome exactly once and releases waiters.
func (r *Result) settle(resp *Response, err error) {
	r.once.Do(func() {
		r.resp = resp
		r.err = err
		close(r.done)
	})
}
