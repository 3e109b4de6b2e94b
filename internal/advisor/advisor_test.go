package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

var sampleRequest = Request{
	Crop: "Rice", State: "Punjab",
	Rainfall: 1200, Temperature: 26, PH: 6.8,
	N: 100, P: 50, K: 50,
	PredictedYield: 7.456,
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleRequest)
	assert.True(t, strings.HasPrefix(p, "You are a senior agricultural scientist."))
	assert.Contains(t, p, "Crop: Rice, State: Punjab, Rainfall: 1200mm, Temp: 26C, pH: 6.8")
	assert.Contains(t, p, "NPK: 100:50:50")
	assert.Contains(t, p, "Predicted yield: 7.46 T/Ha.")
	assert.Contains(t, p, "3 specific actionable soil management tips")
}

func TestInsightsPrompt_FirstTenRows(t *testing.T) {
	recs := dataset.Generate(1, 25).Records()
	p := InsightsPrompt(recs)
	assert.True(t, strings.HasPrefix(p, "Briefly analyze these agricultural trends and provide 3 key insights: "))
	assert.Equal(t, 9, strings.Count(p, ", "))
	assert.Contains(t, p, recs[0].Crop+": Yield ")
}

func TestNew_EmptyKeyIsDisabled(t *testing.T) {
	a, err := New(context.Background(), Config{APIKey: "  "})
	require.NoError(t, err)
	require.False(t, a.Enabled())

	_, err = a.Advise(context.Background(), sampleRequest)
	require.ErrorIs(t, err, ErrDisabled)
	_, err = a.Insights(context.Background(), nil)
	require.ErrorIs(t, err, ErrDisabled)
	require.False(t, IsUnavailable(err))
}

type fakeGemini struct {
	srv   *httptest.Server
	calls atomic.Int32
	body  atomic.Value // last request body
}

func newFakeGemini(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		f.body.Store(string(b))
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func textResponse(text string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}},
		})
	}
}

func newTestGemini(t *testing.T, f *fakeGemini, timeout time.Duration) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), Config{
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    timeout,
		BaseURL:    f.srv.URL,
		HTTPClient: f.srv.Client(),
	})
	require.NoError(t, err)
	return g
}

func TestGemini_Advise(t *testing.T) {
	f := newFakeGemini(t, textResponse("1. Mulch.\n2. Lime.\n3. Rotate."))
	g := newTestGemini(t, f, time.Second)
	require.True(t, g.Enabled())

	text, err := g.Advise(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, "1. Mulch.\n2. Lime.\n3. Rotate.", text)
	assert.EqualValues(t, 1, f.calls.Load())

	body := f.body.Load().(string)
	assert.Contains(t, body, "NPK: 100:50:50")
	assert.Contains(t, body, `"temperature":0.7`)
}

func TestGemini_Insights(t *testing.T) {
	f := newFakeGemini(t, textResponse("Rainfall drives yield."))
	g := newTestGemini(t, f, time.Second)

	text, err := g.Insights(context.Background(), dataset.Generate(2, 12).Records())
	require.NoError(t, err)
	assert.Equal(t, "Rainfall drives yield.", text)

	_, err = g.Insights(context.Background(), nil)
	require.True(t, IsUnavailable(err))
}

func TestGemini_EmptyTextIsUnavailable(t *testing.T) {
	f := newFakeGemini(t, textResponse("   "))
	g := newTestGemini(t, f, time.Second)

	_, err := g.Advise(context.Background(), sampleRequest)
	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "empty response", ue.Reason)
}

func TestGemini_ServerErrorIsSingleAttempt(t *testing.T) {
	f := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})
	g := newTestGemini(t, f, time.Second)

	_, err := g.Advise(context.Background(), sampleRequest)
	require.True(t, IsUnavailable(err))
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestGemini_Timeout(t *testing.T) {
	f := newFakeGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	g := newTestGemini(t, f, 50*time.Millisecond)

	start := time.Now()
	_, err := g.Advise(context.Background(), sampleRequest)
	require.Less(t, time.Since(start), time.Second)

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Reason, "no answer within 50ms")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewGemini_Defaults(t *testing.T) {
	f := newFakeGemini(t, textResponse("ok"))
	g, err := NewGemini(context.Background(), Config{APIKey: "k", BaseURL: f.srv.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.model)
	assert.Equal(t, DefaultTimeout, g.timeout)

	_, err = NewGemini(context.Background(), Config{})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestUnavailableError_Message(t *testing.T) {
	err := &UnavailableError{Reason: "request failed", Err: errors.New("boom")}
	assert.Equal(t, "advisor unavailable: request failed: boom", err.Error())
	assert.Equal(t, "advisor unavailable: empty response", (&UnavailableError{Reason: "empty response"}).Error())
}
