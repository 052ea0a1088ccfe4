// Package summarizer adapts the external Gemini API for one-shot note
// summarization.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/smartnotes/api/internal/apperr"
)

// Client produces a summary for a block of note text. The production
// implementation talks to Gemini; tests substitute a stub.
type Client interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const defaultModel = "gemini-2.5-flash"

// Gemini calls the Gemini API with a bounded timeout. The adapter performs
// no retries itself; transient upstream states are surfaced as retryable
// errors for the caller.
type Gemini struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewGemini(apiKey string, timeout time.Duration) *Gemini {
	return &Gemini{APIKey: apiKey, Model: defaultModel, Timeout: timeout}
}

// Summarize sends the note text to the model and returns the generated
// summary. A missing API key fails fast with apperr.ErrMisconfigured before
// any network call. Upstream quota and availability failures map onto
// apperr.ErrRateLimited and apperr.ErrServiceUnavailable; everything else is
// wrapped in apperr.ErrSummarization with the upstream detail.
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", apperr.ErrMisconfigured)
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: create client: %v", apperr.ErrSummarization, err)
	}

	model := g.Model
	if model == "" {
		model = defaultModel
	}

	var prompt strings.Builder
	prompt.WriteString("Summarize the following note in one concise paragraph. ")
	prompt.WriteString("Reply with the summary text only.\n\n")
	prompt.WriteString(text)

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt.String()), nil)
	if err != nil {
		return "", mapUpstreamErr(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from model", apperr.ErrSummarization)
	}
	if out := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text); out != "" {
		return out, nil
	}
	return "", fmt.Errorf("%w: no text in model response", apperr.ErrSummarization)
}

// mapUpstreamErr translates Gemini API failures into the service error
// taxonomy.
func mapUpstreamErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", apperr.ErrRateLimited, apiErr.Message)
		case http.StatusServiceUnavailable:
			return fmt.Errorf("%w: model is loading or overloaded: %s", apperr.ErrServiceUnavailable, apiErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: summarization timed out", apperr.ErrServiceUnavailable)
	}
	return fmt.Errorf("%w: %v", apperr.ErrSummarization, err)
}
