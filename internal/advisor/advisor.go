// Package advisor asks a generative model for agronomic advice about a
// prediction. It is optional: without an API key every call returns
// ErrDisabled and the rest of the application is unaffected.
package advisor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// Defaults for the hosted model.
const (
	DefaultModel   = "gemini-3-flash-preview"
	DefaultTimeout = 30 * time.Second
)

// Advisor produces free-text advice.
type Advisor interface {
	// Advise returns soil-management tips for a predicted scenario.
	Advise(ctx context.Context, req Request) (string, error)
	// Insights returns key observations about a sample of the dataset.
	Insights(ctx context.Context, sample []dataset.Record) (string, error)
	Enabled() bool
}

// Request describes the scenario the advice is about.
type Request struct {
	Crop           string
	State          string
	Rainfall       float64
	Temperature    float64
	PH             float64
	N, P, K        float64
	PredictedYield float64
}

// Config selects and tunes the hosted model.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// BaseURL and HTTPClient override the endpoint and transport.
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Gemini advisor, or Disabled when cfg has no API key.
func New(ctx context.Context, cfg Config) (Advisor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}, nil
	}
	return NewGemini(ctx, cfg)
}

// Disabled is the advisor used when no API key is configured.
type Disabled struct{}

func (Disabled) Advise(context.Context, Request) (string, error) { return "", ErrDisabled }

func (Disabled) Insights(context.Context, []dataset.Record) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Enabled() bool { return false }

func num(v float64) string { return fmt.Sprintf("%g", v) }

// Prompt builds the advisory prompt for req.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a senior agricultural scientist.\n")
	fmt.Fprintf(&b, "Analyze this setup: Crop: %s, State: %s, Rainfall: %smm, Temp: %sC, pH: %s, NPK: %s:%s:%s.\n",
		req.Crop, req.State, num(req.Rainfall), num(req.Temperature), num(req.PH), num(req.N), num(req.P), num(req.K))
	fmt.Fprintf(&b, "Predicted yield: %.2f T/Ha.\n", req.PredictedYield)
	b.WriteString("Give 3 specific actionable soil management tips for this scenario.")
	return b.String()
}

// InsightsSampleSize is how many rows InsightsPrompt summarises.
const InsightsSampleSize = 10

// InsightsPrompt summarises the first rows of sample into one prompt.
func InsightsPrompt(sample []dataset.Record) string {
	n := min(len(sample), InsightsSampleSize)
	parts := make([]string, n)
	for i, r := range sample[:n] {
		parts[i] = fmt.Sprintf("%s: Yield %.2f at %s°C", r.Crop, r.Yield, num(r.Temperature))
	}
	return "Briefly analyze these agricultural trends and provide 3 key insights: " + strings.Join(parts, ", ")
}
