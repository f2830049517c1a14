package throttle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRoundTripper_Validation(t *testing.T) {
	cases := []struct {
		name    string
		rps     int
		burst   int
		wantErr bool
	}{
		{name: "valid", rps: 10, burst: 5},
		{name: "zero rps", rps: 0, burst: 5, wantErr: true},
		{name: "zero burst", rps: 10, burst: 0, wantErr: true},
		{name: "negative rps", rps: -1, burst: 5, wantErr: true},
		{name: "negative burst", rps: 10, burst: -3, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.rps, tc.burst, func() *slog.Logger { return nil }, http.DefaultTransport)
			if tc.wantErr {
				if !errors.Is(err, ErrMustNotBeZero) {
					t.Errorf("expected ErrMustNotBeZero, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if rt == nil {
				t.Fatal("expected a round tripper")
			}
		})
	}
}

func TestRoundTrip_DelaysBeyondBurst(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rt, err := NewRoundTripper(2, 1, func() *slog.Logger { return nil }, http.DefaultTransport)
	if err != nil {
		t.Fatalf("building round tripper: %v", err)
	}
	client := &http.Client{Transport: rt}

	start := time.Now()
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}

	// The second request must wait roughly one token interval (500ms at 2rps).
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("expected the second request to be throttled, finished in %v", elapsed)
	}
}

func TestRoundTrip_EndedContext(t *testing.T) {
	rt, err := NewRoundTripper(1, 1, func() *slog.Logger { return nil }, http.DefaultTransport)
	if err != nil {
		t.Fatalf("building round tripper: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "http://unused.local/", nil)
	if _, err := rt.RoundTrip(req.WithContext(ctx)); !errors.Is(err, ErrContextEnded) {
		t.Errorf("expected ErrContextEnded, got %v", err)
	}
}
