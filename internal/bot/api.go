package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/events"
	"btc-trade-bot-go/internal/metrics"
	"btc-trade-bot-go/internal/models"
	"btc-trade-bot-go/internal/repository"
	"go.uber.org/zap"
)

// backtestResponse adds the derived profit figures to the serialized result.
type backtestResponse struct {
	*models.BacktestResult
	ProfitLoss    float64 `json:"profit_loss"`
	ProfitLossPct float64 `json:"profit_loss_pct"`
}

// IntervalUpdater reschedules the decision tick at runtime. Implemented by
// the scheduler.
type IntervalUpdater interface {
	UpdateTickInterval(interval time.Duration) error
}

// APIServer exposes the engine control surface over HTTP.
type APIServer struct {
	server     *http.Server
	engine     *Engine
	backtester *Backtester
	repo       repository.TradeRepository
	publisher  *events.Publisher
	intervals  IntervalUpdater
	cfg        *config.Config
	logger     *zap.Logger
}

// NewAPIServer creates the HTTP API for engine control, backtests, trade
// history, metrics and the SSE trade event stream.
func NewAPIServer(
	engine *Engine,
	backtester *Backtester,
	repo repository.TradeRepository,
	publisher *events.Publisher,
	intervals IntervalUpdater,
	cfg *config.Config,
	logger *zap.Logger,
) *APIServer {
	s := &APIServer{
		engine:     engine,
		backtester: backtester,
		repo:       repo,
		publisher:  publisher,
		intervals:  intervals,
		cfg:        cfg,
		logger:     logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/start", s.startHandler)
	mux.HandleFunc("/stop", s.stopHandler)
	mux.HandleFunc("/strategy", s.strategyHandler)
	mux.HandleFunc("/interval", s.intervalHandler)
	mux.HandleFunc("/backtest", s.backtestHandler)
	mux.HandleFunc("/trades", s.tradesHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)
	mux.HandleFunc("/events", s.eventsHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *APIServer) startHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.Start()
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *APIServer) stopHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.Stop()
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *APIServer) strategyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.engine.UpdateStrategy(req.Type); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *APIServer) intervalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.cfg.Trading.ValidateInterval(req.Seconds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.intervals.UpdateTickInterval(time.Duration(req.Seconds) * time.Second); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"seconds": req.Seconds})
}

func (s *APIServer) backtestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := struct {
		Days           int     `json:"days"`
		InitialBalance float64 `json:"initial_balance"`
	}{
		Days:           s.cfg.Backtest.Days,
		InitialBalance: s.cfg.Backtest.InitialBalance,
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := s.backtester.Run(req.Days, req.InitialBalance)
	if err != nil {
		s.logger.Error("Backtest failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.writeJSON(w, http.StatusOK, backtestResponse{
		BacktestResult: result,
		ProfitLoss:     result.ProfitLoss(),
		ProfitLossPct:  result.ProfitLossPct(),
	})
}

func (s *APIServer) tradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := s.repo.FindAll()
	if err != nil {
		s.logger.Error("Failed to load trades", zap.Error(err))
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

func (s *APIServer) metricsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := s.repo.FindAll()
	if err != nil {
		s.logger.Error("Failed to load trades for metrics", zap.Error(err))
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics.Compute(trades))
}

// eventsHandler streams executed trades to the client as server-sent events.
func (s *APIServer) eventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := s.publisher.Subscribe()
	defer s.publisher.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case trade, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(trade)
			if err != nil {
				s.logger.Error("Failed to encode trade event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: trade\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}
