package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/types"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPongTimeout  = 60 * time.Second
	streamPingInterval = 30 * time.Second
)

// handleRiskStream upgrades to a WebSocket and pushes a fresh assessment of
// the stored run on every tick. Unknown portfolios are rejected with the
// usual 404 envelope before the upgrade.
func (s *Server) handleRiskStream(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), mux.Vars(r)["portfolio_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error to the client.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("risk stream opened", zap.String("portfolio_id", run.ID))
	s.streamAssessments(r.Context(), conn, run)
	s.logger.Info("risk stream closed", zap.String("portfolio_id", run.ID))
}

func (s *Server) streamAssessments(ctx context.Context, conn *websocket.Conn, run *types.BacktestRun) {
	interval := s.config.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	// The read loop exists to notice disconnects and answer control
	// frames; clients are not expected to send data.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		if err := conn.SetReadDeadline(time.Now().Add(streamPongTimeout)); err != nil {
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pings := time.NewTicker(streamPingInterval)
	defer pings.Stop()

	if !s.pushAssessment(conn, run) {
		return
	}

	for {
		select {
		case <-ticker.C:
			if !s.pushAssessment(conn, run) {
				return
			}
		case <-pings.C:
			if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) pushAssessment(conn *websocket.Conn, run *types.BacktestRun) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return false
	}
	if err := conn.WriteJSON(s.assessor.Assess(run)); err != nil {
		return false
	}

	return true
}
