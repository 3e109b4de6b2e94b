// Package server exposes the dataset, the benchmark and single predictions
// as a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/encoding"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 5 * time.Second

// Server routes API requests to a shared engine. The engine trains on the
// first request that needs a model and serves every later one from cache.
type Server struct {
	engine  *engine.Engine
	advisor advisor.Advisor
	log     *zap.Logger
	mux     *http.ServeMux
}

// New wires the routes. A nil advisor disables advice; a nil logger
// discards request logs.
func New(eng *engine.Engine, adv advisor.Advisor, log *zap.Logger) *Server {
	if adv == nil {
		adv = advisor.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: eng, advisor: adv, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	s.mux.HandleFunc("GET /api/dataset.csv", s.handleDatasetCSV)
	s.mux.HandleFunc("POST /api/predict", s.handlePredict)
	return s
}

// Handler returns the routes with request logging and gzip negotiation.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.logRequests(s.mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "trained": s.engine.Trained()})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Dataset().Summarize())
}

type metricsResponse struct {
	Fingerprint string          `json:"fingerprint"`
	TrainRows   int             `json:"train_rows"`
	TestRows    int             `json:"test_rows"`
	Best        string          `json:"best"`
	Metrics     []ml.Metric     `json:"metrics"`
	Importances []ml.Importance `json:"importances"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Result(r.Context())
	if err != nil {
		s.internalError(w, "training failed", err)
		return
	}
	writeJSON(w, http.StatusOK, metricsResponse{
		Fingerprint: res.Fingerprint,
		TrainRows:   res.TrainRows,
		TestRows:    res.TestRows,
		Best:        res.Best().Model,
		Metrics:     res.Metrics,
		Importances: res.Importances,
	})
}

func (s *Server) handleDatasetCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agro_data.csv"`)
	if err := s.engine.Dataset().WriteCSV(w); err != nil {
		s.log.Warn("dataset export interrupted", zap.Error(err))
	}
}

type predictRequest struct {
	engine.Input
	Model  string `json:"model,omitempty"`
	Advice bool   `json:"advice,omitempty"`
}

type predictResponse struct {
	Prediction  *engine.Prediction `json:"prediction"`
	Advice      string             `json:"advice,omitempty"`
	AdviceError string             `json:"advice_error,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Value   string   `json:"value,omitempty"`
	Known   []string `json:"known,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if req.Model == "" {
		req.Model = trainer.ModelForest
	}
	if !slices.Contains(trainer.ModelNames, req.Model) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "unknown_model",
			Message: fmt.Sprintf("unknown model %q", req.Model),
			Value:   req.Model,
			Known:   trainer.ModelNames,
		})
		return
	}
	if err := req.Input.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
		return
	}

	pred, err := s.engine.PredictWith(r.Context(), req.Model, req.Input)
	var unknown *encoding.UnknownCategoryError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "unknown_category",
			Message: unknown.Error(),
			Field:   unknown.Field,
			Value:   unknown.Value,
			Known:   unknown.Known,
		})
		return
	case err != nil:
		s.internalError(w, "prediction failed", err)
		return
	}

	resp := predictResponse{Prediction: pred}
	if req.Advice {
		resp.Advice, resp.AdviceError = s.advise(r.Context(), pred)
	}
	writeJSON(w, http.StatusOK, resp)
}

// advise never fails the request: errors come back as text.
func (s *Server) advise(ctx context.Context, pred *engine.Prediction) (string, string) {
	in := pred.Input
	text, err := s.advisor.Advise(ctx, advisor.Request{
		Crop:           in.Crop,
		State:          in.State,
		Rainfall:       in.Rainfall,
		Temperature:    in.Temperature,
		PH:             in.PH,
		N:              in.N,
		P:              in.P,
		K:              in.K,
		PredictedYield: pred.Yield,
	})
	if err != nil {
		if !errors.Is(err, advisor.ErrDisabled) {
			s.log.Warn("advisor unavailable", zap.String("crop", in.Crop), zap.Error(err))
		}
		return "", err.Error()
	}
	return text, ""
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
