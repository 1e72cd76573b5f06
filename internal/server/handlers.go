package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/api"
	"github.com/marketloop/backtestd/internal/engine"
	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/internal/version"
	"github.com/marketloop/backtestd/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.RootResponse{
		Message: "Backtesting Microservice is running",
		Version: version.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req api.BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid request body", err))
		return
	}

	result, err := s.engine.Run(r.Context(), engine.RunInput{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Candles:   req.Candles,
		Params:    req.StrategyParams,
	})
	if err != nil {
		s.writeError(w, asBacktestFailure(err))
		return
	}

	run := &types.BacktestRun{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		Symbol:         req.Symbol,
		Timeframe:      req.Timeframe,
		Strategy:       req.StrategyParams.StrategyType,
		InitialCapital: req.StrategyParams.InitialCapital,
		FinalEquity:    result.FinalEquity,
		CandleCount:    len(req.Candles),
		Summary:        result.Summary,
		Trades:         result.Trades,
		Equity:         result.Equity,
	}
	if err := s.store.SaveRun(r.Context(), run); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.NewBacktestResponse(run.ID, result.Summary, result.Trades, result.Equity))
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidRequest, "limit must be a positive integer, got %q", raw))
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	summaries, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.PortfolioListResponse{Portfolios: summaries})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), mux.Vars(r)["portfolio_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.NewBacktestResponse(run.ID, run.Summary, run.Trades, run.Equity))
}

func (s *Server) handleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), mux.Vars(r)["portfolio_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.assessor.Assess(run))
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := api.BacktestRequestSchema()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, "failed to generate schema", err))
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(schema)); err != nil {
		s.logger.Warn("failed to write schema response", zap.Error(err))
	}
}

// asBacktestFailure keeps client errors as they are and folds everything
// else into the Backtest failed envelope of the original service.
func asBacktestFailure(err error) error {
	if errors.HTTPStatus(err) != http.StatusInternalServerError {
		return err
	}

	detail := err.Error()
	var appErr *errors.Error
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	return errors.Wrapf(errors.ErrCodeBacktestFailed, err, "Backtest failed: %s", detail)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps an error to its HTTP status and emits the detail
// envelope. The detail is the structured message only; causes stay in the
// logs.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)

	detail := err.Error()
	var appErr *errors.Error
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}

	s.writeJSON(w, status, api.ErrorResponse{Detail: detail})
}
