package transport_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/outpostkit/fetch/transport"
)

func TestHandle_StateProgression(t *testing.T) {
	h := transport.NewHandle()

	var states []transport.State
	h.OnStateChange(func(s transport.State) {
		states = append(states, s)
	})

	if got := h.State(); got != transport.StateUnsent {
		t.Fatalf("expected initial state %v, got %v", transport.StateUnsent, got)
	}

	h.Open()
	h.ReceiveResponse(http.StatusOK, http.Header{"Content-Type": []string{"text/plain"}}, 6)
	h.ReceiveBody([]byte("abc"))
	h.ReceiveBody([]byte("def"))
	h.Finish()

	want := []transport.State{
		transport.StateOpened,
		transport.StateHeadersReceived,
		transport.StateReceivingBody,
		transport.StateDone,
	}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("state sequence mismatch (-want +got):\n%s", diff)
	}

	if got := h.Text(); got != "abcdef" {
		t.Errorf("expected cumulative text %q, got %q", "abcdef", got)
	}
	if got := h.StatusCode(); got != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, got)
	}
	if got := h.Total(); got != 6 {
		t.Errorf("expected total 6, got %d", got)
	}
}

func TestHandle_ProgressEvents(t *testing.T) {
	h := transport.NewHandle()

	var events []transport.ProgressEvent
	h.OnProgress(func(ev transport.ProgressEvent) {
		events = append(events, ev)
	})

	h.Open()
	h.ReceiveResponse(http.StatusOK, nil, 6)
	h.ReceiveBody([]byte("abc"))
	h.ReceiveBody([]byte("def"))
	h.Finish()

	want := []transport.ProgressEvent{
		{State: transport.StateReceivingBody, Loaded: 3, Total: 6},
		{State: transport.StateReceivingBody, Loaded: 6, Total: 6},
		{State: transport.StateDone, Loaded: 6, Total: 6},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("progress events mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_FinishIsIdempotent(t *testing.T) {
	h := transport.NewHandle()

	var doneEvents int
	h.OnProgress(func(ev transport.ProgressEvent) {
		if ev.State == transport.StateDone {
			doneEvents++
		}
	})

	h.Open()
	h.Finish()
	h.Finish()

	if doneEvents != 1 {
		t.Errorf("expected a single done event, got %d", doneEvents)
	}
}

func TestHandle_ZeroByteBodySkipsReceivingBody(t *testing.T) {
	h := transport.NewHandle()

	h.OnProgress(func(ev transport.ProgressEvent) {
		if ev.State == transport.StateReceivingBody {
			t.Errorf("unexpected receiving-body event for zero-byte response")
		}
	})

	h.Open()
	h.ReceiveResponse(http.StatusNoContent, nil, 0)
	h.Finish()

	if got := h.State(); got != transport.StateDone {
		t.Errorf("expected state %v, got %v", transport.StateDone, got)
	}
	if got := h.Text(); got != "" {
		t.Errorf("expected empty cumulative text, got %q", got)
	}
}

func TestHandle_UploadAbsentWithoutBody(t *testing.T) {
	h := transport.NewHandle()

	if up := h.Upload(); up != nil {
		t.Fatalf("expected nil upload sub-object, got %v", up)
	}

	// Registration on the nil sub-object must be a silent no-op.
	h.Upload().OnProgress(func(transport.ProgressEvent) {
		t.Error("callback must never be invoked on a nil upload")
	})
}

func TestHandle_UploadReportsSentBytes(t *testing.T) {
	h := transport.NewHandle()
	up := h.AttachUpload(10)

	var events []transport.ProgressEvent
	up.OnProgress(func(ev transport.ProgressEvent) {
		events = append(events, ev)
	})

	body := transport.UploadBody(up, strings.NewReader("0123456789"))
	var sink bytes.Buffer
	if _, err := io.CopyBuffer(&sink, onlyReader{body}, make([]byte, 4)); err != nil {
		t.Fatalf("copying upload body: %v", err)
	}

	if got := up.Sent(); got != 10 {
		t.Errorf("expected 10 sent bytes, got %d", got)
	}
	if len(events) == 0 {
		t.Fatal("expected upload progress events")
	}
	last := events[len(events)-1]
	if last.Loaded != 10 || last.Total != 10 {
		t.Errorf("expected final event 10/10, got %d/%d", last.Loaded, last.Total)
	}
}

func TestState_String(t *testing.T) {
	cases := map[transport.State]string{
		transport.StateUnsent:          "unsent",
		transport.StateOpened:          "opened",
		transport.StateHeadersReceived: "headers-received",
		transport.StateReceivingBody:   "receiving-body",
		transport.StateDone:            "done",
		transport.State(42):            "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

// onlyReader hides the ReadFrom/WriteTo fast paths so CopyBuffer
// exercises the wrapped reader.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }
