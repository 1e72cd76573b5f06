// Package server exposes the backtest engine, the run store, and the risk
// assessor over HTTP. Routing is gorilla/mux; the risk stream endpoint
// upgrades to a WebSocket.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/engine"
	"github.com/marketloop/backtestd/internal/logger"
	"github.com/marketloop/backtestd/internal/risk"
	"github.com/marketloop/backtestd/internal/store"
	"github.com/marketloop/backtestd/pkg/errors"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
	defaultStreamInterval    = 2 * time.Second
)

// Config carries the HTTP-facing settings of the service.
type Config struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	AllowedOrigins    []string
	StreamInterval    time.Duration
}

// Server routes HTTP traffic to the engine, store, and assessor.
type Server struct {
	config   Config
	logger   *logger.Logger
	engine   *engine.Engine
	store    store.Store
	assessor *risk.Assessor
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
}

// New wires a Server. The store and assessor must outlive it.
func New(config Config, log *logger.Logger, eng *engine.Engine, st store.Store, assessor *risk.Assessor) *Server {
	s := &Server{
		config:   config,
		logger:   log,
		engine:   eng,
		store:    st,
		assessor: assessor,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	return s
}

// Router builds the route table with the recovery, logging, and CORS
// middleware applied. Routes also accept OPTIONS so the CORS middleware can
// answer preflights.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.recoverMiddleware, s.loggingMiddleware, s.corsMiddleware)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/run-backtest", s.handleRunBacktest).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/portfolios", s.handleListPortfolios).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/portfolios/{portfolio_id}", s.handleGetPortfolio).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/portfolios/{portfolio_id}/risk/assessment", s.handleRiskAssessment).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/portfolios/{portfolio_id}/risk/stream", s.handleRiskStream).Methods(http.MethodGet)
	router.HandleFunc("/api/schema/backtest-request", s.handleSchema).Methods(http.MethodGet, http.MethodOptions)

	return router
}

// Start listens on the configured address and serves in the background.
// Use Stop for a graceful shutdown.
func (s *Server) Start() error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInternal, err, "failed to listen on %s", address)
	}
	s.listener = listener

	readHeaderTimeout := s.config.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("http server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound listen address, or "" before Start.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// allowOrigin resolves the Access-Control-Allow-Origin value for a request
// origin, or "" when the origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}

	return ""
}

// checkOrigin gates WebSocket upgrades with the same allow-list as CORS.
// Requests without an Origin header (non-browser clients) pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	return s.allowOrigin(origin) != ""
}
