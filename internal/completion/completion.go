package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client turns one instruction prompt into generated text. Calls are
// single-shot: no conversation history is carried between them.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Client.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

// Failure categories. Backends wrap every failure in *Error whose Kind is
// one of these, so callers can branch with errors.Is.
var (
	ErrUnavailable = errors.New("completion service unavailable")
	ErrTimeout     = errors.New("completion timed out")
	ErrRefused     = errors.New("completion refused by content filter")
	ErrEmpty       = errors.New("completion returned no text")
	ErrRejected    = errors.New("completion request rejected")
)

// Error is a categorised backend failure.
type Error struct {
	Provider string
	Kind     error
	Status   int // upstream HTTP status, 0 if none
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure category of err, or nil if it has none.
func KindOf(err error) error {
	for _, k := range []error{ErrUnavailable, ErrTimeout, ErrRefused, ErrEmpty, ErrRejected} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindLabel is a short metrics-friendly name for err's category.
func KindLabel(err error) string {
	switch KindOf(err) {
	case ErrUnavailable:
		return "unavailable"
	case ErrTimeout:
		return "timeout"
	case ErrRefused:
		return "refused"
	case ErrEmpty:
		return "empty"
	case ErrRejected:
		return "rejected"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "unknown"
}

// IsRetryable reports whether another attempt may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}

// kindForStatus maps an upstream HTTP status to a failure category.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return ErrUnavailable
	case status == http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrRejected
	}
}

// wrapTransport categorises an error that carries no HTTP status.
func wrapTransport(provider string, err error) error {
	kind := ErrUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrTimeout
	}
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Options configures New.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	MaxAttempts int
	HTTPClient  *http.Client
}

// New builds the configured backend wrapped in retry and timeout handling.
func New(ctx context.Context, opts Options) (Client, error) {
	var backend Client
	switch opts.Provider {
	case ProviderGemini, "":
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			BaseURL:     opts.BaseURL,
			Temperature: opts.Temperature,
			HTTPClient:  opts.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		backend = g
	case ProviderOpenAI:
		backend = NewOpenAI(OpenAIConfig{
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			BaseURL:     opts.BaseURL,
			Temperature: opts.Temperature,
			HTTPClient:  opts.HTTPClient,
		})
	case ProviderOllama:
		backend = NewOllama(OllamaConfig{
			BaseURL:     opts.BaseURL,
			Model:       opts.Model,
			Temperature: opts.Temperature,
			HTTPClient:  opts.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("unknown completion provider %q", opts.Provider)
	}

	return NewRetrying(backend, RetryConfig{
		MaxAttempts: opts.MaxAttempts,
		Timeout:     opts.Timeout,
	}), nil
}
