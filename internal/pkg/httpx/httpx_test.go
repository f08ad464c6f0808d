package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("http %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{statusErr(500), true},
		{statusErr(503), true},
		{statusErr(429), true},
		{statusErr(408), true},
		{statusErr(400), false},
		{statusErr(404), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("got %v, want 3s", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("cap not applied: %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("fallback not used: %v", got)
	}
}

func TestJitterSleepStaysNearBase(t *testing.T) {
	base := time.Second
	for i := 0; i < 50; i++ {
		got := JitterSleep(base)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("jitter %v outside 20%% band", got)
		}
	}
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("expected 0 for non-positive base, got %v", got)
	}
}
