// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package viewapi serves the activation table over HTTP and streams its
// row notifications to websocket clients
package viewapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/sidewatch/event"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const DefaultListenAddress = ":8080"

var ErrAlreadyStarted = errors.New("server already started")

type ServerConfig struct {
	Logger        *slog.Logger
	EventBus      *event.EventBus
	PromRegistry  prometheus.Registerer
	ListenAddress string
	// StreamQueueSize is the number of events buffered per websocket
	// client before it is dropped
	StreamQueueSize int
}

type Server struct {
	config     ServerConfig
	logger     *slog.Logger
	view       ActivationView
	metrics    *serverMetrics
	httpServer *http.Server
	listener   net.Listener
	stopCh     chan struct{}
	streams    map[*streamSubscriber]struct{}
	streamWg   sync.WaitGroup
	mu         sync.Mutex
	stopping   bool
}

func New(cfg ServerConfig, view ActivationView) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.StreamQueueSize <= 0 {
		cfg.StreamQueueSize = defaultStreamQueueSize
	}
	return &Server{
		config:  cfg,
		logger:  cfg.Logger.With("component", "viewapi"),
		view:    view,
		metrics: newServerMetrics(cfg.PromRegistry),
		streams: make(map[*streamSubscriber]struct{}),
	}
}

// Handler returns the API routes without starting a listener
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/activation", s.handleTable)
	mux.HandleFunc("GET /api/v1/activation/columns", s.handleColumns)
	mux.HandleFunc("GET /api/v1/activation/rows", s.handleRows)
	mux.HandleFunc("GET /api/v1/activation/rows/{row}", s.handleRow)
	mux.HandleFunc("GET /api/v1/activation/rows/{row}/hash", s.handleRowHash)
	mux.HandleFunc("POST /api/v1/activation/reconcile", s.handleReconcile)
	mux.HandleFunc("GET /api/v1/activation/stream", s.handleStream)
	return s.metrics.instrument(mux)
}

// Start binds the listen address and serves in the background until ctx
// is cancelled or Stop is called
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen for view API: %w", err)
	}
	server := &http.Server{
		// Use h2c so we can serve HTTP/2 without TLS
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
	}
	stopCh := make(chan struct{})
	s.httpServer = server
	s.listener = ln
	s.stopCh = stopCh
	s.stopping = false
	s.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("view API server error", "error", err)
		}
	}()
	s.logger.Info("view API listener started", "address", ln.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
		case <-stopCh:
			return
		}
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shut down view API on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or nil when not started
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the HTTP server down and disconnects stream clients
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.stopping = true
	streams := make([]*streamSubscriber, 0, len(s.streams))
	for sub := range s.streams {
		streams = append(streams, sub)
	}
	s.mu.Unlock()

	// Hijacked websocket connections are not covered by Shutdown
	for _, sub := range streams {
		sub.Close()
	}
	var err error
	if srv != nil {
		s.logger.Debug("shutting down view API server")
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("shut down view API: %w", shutdownErr)
		}
	}
	s.streamWg.Wait()
	return err
}

// addStream tracks a stream client. It returns false once Stop has begun.
func (s *Server) addStream(sub *streamSubscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.streams[sub] = struct{}{}
	s.streamWg.Add(1)
	s.metrics.streamClients.Inc()
	return true
}

func (s *Server) removeStream(sub *streamSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streams[sub]; ok {
		delete(s.streams, sub)
		s.streamWg.Done()
		s.metrics.streamClients.Dec()
	}
}
