package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string // overrides the API endpoint (for testing)
	Temperature float32
	HTTPClient  *http.Client
}

// Gemini generates text through the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	var gc *genai.GenerateContentConfig
	if g.temperature > 0 {
		gc = &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", wrapGeminiError(err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", &Error{
			Provider: ProviderGemini,
			Kind:     ErrRefused,
			Err:      fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason),
		}
	}
	if len(result.Candidates) > 0 && result.Candidates[0] != nil {
		switch reason := result.Candidates[0].FinishReason; reason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
			return "", &Error{
				Provider: ProviderGemini,
				Kind:     ErrRefused,
				Err:      fmt.Errorf("finish reason %s", reason),
			}
		}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: ProviderGemini, Kind: ErrEmpty}
	}
	return text, nil
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: ProviderGemini, Kind: kindForStatus(apiErr.Code), Status: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &Error{Provider: ProviderGemini, Kind: kindForStatus(apiErrPtr.Code), Status: apiErrPtr.Code, Err: err}
	}
	return wrapTransport(ProviderGemini, err)
}
