package completion

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{429, ErrUnavailable},
		{500, ErrUnavailable},
		{503, ErrUnavailable},
		{408, ErrTimeout},
		{400, ErrRejected},
		{401, ErrRejected},
		{404, ErrRejected},
	}
	for _, tt := range tests {
		if got := kindForStatus(tt.status); got != tt.want {
			t.Errorf("kindForStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("calling model: %w", &Error{Provider: "gemini", Kind: ErrUnavailable, Status: 503, Err: cause})

	if !errors.Is(err, ErrUnavailable) {
		t.Error("errors.Is(err, ErrUnavailable) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrRefused) {
		t.Error("errors.Is(err, ErrRefused) = true")
	}

	var ce *Error
	if !errors.As(err, &ce) || ce.Status != 503 {
		t.Errorf("errors.As failed or wrong status: %+v", ce)
	}
}

func TestKindLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Kind: ErrUnavailable}, "unavailable"},
		{&Error{Kind: ErrTimeout}, "timeout"},
		{&Error{Kind: ErrRefused}, "refused"},
		{&Error{Kind: ErrEmpty}, "empty"},
		{&Error{Kind: ErrRejected}, "rejected"},
		{context.Canceled, "canceled"},
		{errors.New("other"), "unknown"},
	}
	for _, tt := range tests {
		if got := KindLabel(tt.err); got != tt.want {
			t.Errorf("KindLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestWrapTransport(t *testing.T) {
	if err := wrapTransport("x", context.DeadlineExceeded); !errors.Is(err, ErrTimeout) {
		t.Errorf("deadline: got %v, want ErrTimeout", err)
	}
	if err := wrapTransport("x", errors.New("connection refused")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("transport: got %v, want ErrUnavailable", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNew_OpenAIWrapsRetry(t *testing.T) {
	c, err := New(context.Background(), Options{Provider: ProviderOpenAI, APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*Retrying); !ok {
		t.Errorf("client type = %T, want *Retrying", c)
	}
}
