// Package server exposes the gate over HTTP: command submission, the
// SSE confirmation event stream, the acknowledgment endpoint, and
// read-only status and history queries.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shellgate/internal/confirm"
	"shellgate/internal/gate"
	"shellgate/internal/history"
	"shellgate/internal/identity"
)

// defaultHeartbeat keeps idle SSE connections from being reaped by
// intermediaries.
const defaultHeartbeat = 30 * time.Second

// Server routes HTTP requests to the gate and confirmation coordinator.
type Server struct {
	gate        *gate.Gate
	coordinator *confirm.Coordinator
	broker      *confirm.Broker
	history     *history.Store
	logger      *slog.Logger

	heartbeatEvery time.Duration
	httpServer     *http.Server
}

// New creates a Server. history may be nil, disabling /api/history.
func New(addr string, g *gate.Gate, c *confirm.Coordinator, b *confirm.Broker, h *history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		gate:           g,
		coordinator:    c,
		broker:         b,
		history:        h,
		logger:         logger,
		heartbeatEvery: defaultHeartbeat,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("POST /api/confirm-command", s.handleConfirmCommand)
	mux.HandleFunc("GET /api/pending-confirmations", s.handlePending)
	mux.HandleFunc("GET /api/restriction-status", s.handleRestrictionStatus)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve starts the HTTP server. Blocks until shutdown.
func (s *Server) Serve() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"auto_mode": s.gate.Mode(),
	})
}

// handleEvents is the SSE stream. One connected event up front, then
// confirmation requests for the session, with periodic heartbeats.
// Subscribers arriving without a session id are minted a fresh one; the
// connected event tells them which, for use on subsequent requests.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = identity.NewSessionID()
	}

	events, cancel := s.broker.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE(w, confirm.Event{Type: confirm.EventConnected, SessionID: sessionID})
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if err := writeSSE(w, confirm.Event{Type: confirm.EventHeartbeat, SessionID: sessionID}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev confirm.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

type confirmPayload struct {
	SessionID string `json:"session_id"`
	Confirmed bool   `json:"confirmed"`
}

func (s *Server) handleConfirmCommand(w http.ResponseWriter, r *http.Request) {
	var payload confirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": "invalid JSON body"})
		return
	}
	sessionID := identity.EnsureSessionID(payload.SessionID)

	if err := s.coordinator.Resolve(sessionID, payload.Confirmed); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": "No pending command found"})
		return
	}

	verb := "rejected"
	if payload.Confirmed {
		verb = "confirmed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "Command " + verb,
		"confirmed": payload.Confirmed,
	})
}

func (s *Server) handlePending(w http.ResponseWriter, _ *http.Request) {
	pending := s.coordinator.Pending()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": pending,
		"count":   len(pending),
	})
}

func (s *Server) handleRestrictionStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.gate.RestrictionStatus())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req gate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "command is required"})
		return
	}

	res, err := s.gate.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, confirm.ErrPendingExists) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "session already has a pending confirmation",
			})
			return
		}
		s.logger.Error("gate handle failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history disabled"})
		return
	}
	q := history.Query{
		SessionID: r.URL.Query().Get("session_id"),
		Outcome:   r.URL.Query().Get("outcome"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		q.Limit = n
	}

	records, err := s.history.Recent(r.Context(), q)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history query failed"})
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records, "count": len(records)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
