package transport

import (
	"io"
	"sync"
)

// Upload is the upload-side sub-object of a Handle. It reports byte
// counts only; no body text is reconstructed on this side.
//
// A nil *Upload is valid: registration becomes a no-op, matching
// exchanges that carry no request body.
type Upload struct {
	mu       sync.Mutex
	sent     int64
	total    int64
	progress []ProgressFunc
}

// OnProgress registers fn for upload progress events.
func (u *Upload) OnProgress(fn ProgressFunc) {
	if u == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.progress = append(u.progress, fn)
}

// Sent returns the cumulative byte count reported so far.
func (u *Upload) Sent() int64 {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sent
}

// add records n sent bytes and fires a progress event.
func (u *Upload) add(n int64) {
	u.mu.Lock()
	u.sent += n
	ev := ProgressEvent{State: StateOpened, Loaded: u.sent, Total: u.total}
	progress := u.progress
	u.mu.Unlock()

	for _, fn := range progress {
		fn(ev)
	}
}

// UploadBody wraps a request body so that every read by the
// underlying client is reported to u. The returned ReadCloser is
// what gets handed to the base HTTP mechanism, ensuring the upload
// sub-object observes exactly the bytes the client sends.
func UploadBody(u *Upload, body io.Reader) io.ReadCloser {
	return &uploadReader{r: body, u: u}
}

type uploadReader struct {
	r io.Reader
	u *Upload
}

func (r *uploadReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.u.add(int64(n))
	}
	return n, err
}

func (r *uploadReader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
