package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

type stubAdvisor struct {
	text string
	err  error
	got  advisor.Request
}

func (s *stubAdvisor) Advise(_ context.Context, req advisor.Request) (string, error) {
	s.got = req
	return s.text, s.err
}

func (s *stubAdvisor) Insights(context.Context, []dataset.Record) (string, error) {
	return s.text, s.err
}

func (s *stubAdvisor) Enabled() bool { return true }

func newTestServer(t *testing.T, adv advisor.Advisor) *Server {
	t.Helper()
	opts := trainer.DefaultOptions()
	opts.Trees = 10
	eng := engine.New(dataset.Generate(42, 300), opts)
	return New(eng, adv, zaptest.NewLogger(t))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const riceBody = `{"crop":"Rice","season":"Kharif","state":"Punjab","area":100,"rainfall":1200,"temperature":26,"ph":6.8,"n":100,"p":50,"k":50`

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["trained"])
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum dataset.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 300, sum.Rows)
	assert.Len(t, sum.MeanYieldByState, len(dataset.States))
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body metricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Metrics, len(trainer.ModelNames))
	assert.Equal(t, 60, body.TestRows)
	assert.Equal(t, 240, body.TrainRows)
	assert.Len(t, body.Importances, len(dataset.FeatureColumns))
	assert.Contains(t, trainer.ModelNames, body.Best)
	assert.True(t, s.engine.Trained())
}

func TestDatasetCSV(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/dataset.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	ds, err := dataset.ReadCSV(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, s.engine.Dataset().FingerprintHex(), ds.FingerprintHex())
}

func TestDatasetCSV_Gzip(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/dataset.csv", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	ds, err := dataset.ReadCSV(zr)
	require.NoError(t, err)
	assert.Equal(t, 300, ds.Len())
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/predict", riceBody+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Prediction)
	assert.Equal(t, trainer.ModelForest, body.Prediction.Model)
	assert.Greater(t, body.Prediction.Yield, 0.0)
	assert.Empty(t, body.Advice)
	assert.Empty(t, body.AdviceError)
}

func TestPredict_OtherModel(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/predict", riceBody+`,"model":"Linear Regression"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, trainer.ModelLinear, body.Prediction.Model)
}

func TestPredict_UnknownCategory(t *testing.T) {
	s := newTestServer(t, nil)
	body := strings.Replace(riceBody, `"Rice"`, `"Quinoa"`, 1) + `}`
	rec := do(t, s.Handler(), http.MethodPost, "/api/predict", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "unknown_category", e.Error)
	assert.Equal(t, dataset.ColCrop, e.Field)
	assert.Equal(t, "Quinoa", e.Value)
	assert.Contains(t, e.Known, "Rice")
}

func TestPredict_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"crop":`, "bad_request"},
		{"unknown field", riceBody + `,"colour":"green"}`, "bad_request"},
		{"unknown model", riceBody + `,"model":"SVM"}`, "unknown_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var e errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.Equal(t, tt.want, e.Error)
		})
	}
}

func TestPredict_Advice(t *testing.T) {
	adv := &stubAdvisor{text: "1. Mulch the rows."}
	s := newTestServer(t, adv)
	rec := do(t, s.Handler(), http.MethodPost, "/api/predict", riceBody+`,"advice":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1. Mulch the rows.", body.Advice)
	assert.Empty(t, body.AdviceError)
	assert.Equal(t, "Rice", adv.got.Crop)
	assert.InDelta(t, body.Prediction.Yield, adv.got.PredictedYield, 1e-12)
}

func TestPredict_AdviceFailureKeepsPrediction(t *testing.T) {
	tests := []struct {
		name string
		adv  advisor.Advisor
		want string
	}{
		{"disabled", advisor.Disabled{}, advisor.ErrDisabled.Error()},
		{"unavailable", &stubAdvisor{err: &advisor.UnavailableError{Reason: "timeout", Err: errors.New("deadline")}}, "advisor unavailable: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.adv)
			rec := do(t, s.Handler(), http.MethodPost, "/api/predict", riceBody+`,"advice":true}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var body predictResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotNil(t, body.Prediction)
			assert.Greater(t, body.Prediction.Yield, 0.0)
			assert.Contains(t, body.AdviceError, tt.want)
		})
	}
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	opts := trainer.DefaultOptions()
	opts.Trees = 5
	s := New(engine.New(dataset.Generate(1, 100), opts), nil, zap.New(core))

	do(t, s.Handler(), http.MethodGet, "/healthz", "")
	do(t, s.Handler(), http.MethodGet, "/nope", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/healthz", entries[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
	assert.EqualValues(t, http.StatusNotFound, entries[1].ContextMap()["status"])
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()
	require.NoError(t, <-done)
}
