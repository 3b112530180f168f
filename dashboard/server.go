package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

const signalPollInterval = 3 * time.Second

type signalReader interface {
	EventsAfter(index uint64) ([]domain.SignalEventRecord, error)
}

type signalResponse struct {
	Index uint64             `json:"index"`
	Event domain.SignalEvent `json:"event"`
}

// Server exposes prometheus metrics and the signal journal over HTTP.
type Server struct {
	Addr  string
	Store signalReader
	l     *zap.Logger
}

// NewServer creates a new server instance.
func NewServer(l *zap.Logger, addr string, store signalReader) *Server {
	return &Server{Addr: addr, Store: store, l: l}
}

// Handler returns the routes served by the dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/signals", s.handleSignals)
	mux.HandleFunc("/signals/stream", s.handleSignalStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.l.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleSignals returns journaled signals after the index given by ?after=N as a JSON array.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "signal store not available", http.StatusServiceUnavailable)
		return
	}

	after, err := parseIndex(r.URL.Query().Get("after"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid after: %v", err), http.StatusBadRequest)
		return
	}

	records, err := s.Store.EventsAfter(after)
	if err != nil {
		s.l.Error("failed to load signals", zap.Error(err))
		http.Error(w, "failed to load signals", http.StatusInternalServerError)
		return
	}

	out := make([]signalResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, signalResponse{Index: rec.Index, Event: rec.Event})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.l.Error("failed to encode signals", zap.Error(err))
	}
}

func (s *Server) handleSignalStream(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "signal store not available", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(signalPollInterval)
	defer pollTicker.Stop()

	lastIndex := s.lastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	send := func() error {
		records, err := s.Store.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: signal\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := send(); err != nil {
		http.Error(w, "failed to load signals", http.StatusInternalServerError)
		s.l.Error("signal stream initial load", zap.Error(err))
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := send(); err != nil {
				s.l.Warn("signal stream poll", zap.Error(err))
			}
		}
	}
}

// lastEventID extracts an SSE event ID from either the Last-Event-ID header or a query parameter.
// The header is preferred; the query parameter allows manual reconnects to resume from a known index.
func (s *Server) lastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	id, err := parseIndex(idStr)
	if err != nil {
		s.l.Warn("invalid last event id", zap.String("id", idStr), zap.Error(err))
		return 0
	}
	return id
}

func parseIndex(v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseUint(v, 10, 64)
}
