package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// Gemini calls the Gemini API once per request with a bounded timeout.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini builds a client for cfg. An empty model or timeout falls back to
// DefaultModel and DefaultTimeout.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
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
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g, nil
}

func (g *Gemini) Enabled() bool { return true }

// Model returns the hosted model name.

// Advise asks for three soil-management tips about req.
func (g *Gemini) Advise(ctx context.Context, req Request) (string, error) {
	return g.generate(ctx, Prompt(req), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
		TopP:        genai.Ptr[float32](0.9),
	})
}

// Insights asks for three observations about the first rows of sample.
func (g *Gemini) Insights(ctx context.Context, sample []dataset.Record) (string, error) {
	if len(sample) == 0 {
		return "", &UnavailableError{Reason: "no data to analyze"}
	}
	return g.generate(ctx, InsightsPrompt(sample), nil)
}

func (g *Gemini) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	logf(g.model, "requesting advice (%d byte prompt)", len(prompt))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		reason := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("no answer within %s", g.timeout)
		}
		logf(g.model, "%s: %v", reason, err)
		return "", &UnavailableError{Reason: reason, Err: err}
	}

	var text string
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		logf(g.model, "empty response")
		return "", &UnavailableError{Reason: "empty response"}
	}
	logf(g.model, "received %d bytes in %s", len(text), time.Since(start).Round(time.Millisecond))
	return text, nil
}
