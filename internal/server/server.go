package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/behave/internal/core/npc"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Source publishes the tick reports the server streams to its clients.
type Source interface {
	Subscribe() (<-chan npc.TickReport, func())
}

// Config holds debug server configuration
type Config struct {
	ListenAddr string

	// Client settings
	MaxClients   int
	WriteTimeout time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

// DefaultConfig returns default debug server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8088",
		MaxClients:   64,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   16,
	}
}

// Server streams agent tick reports over websocket and serves the latest
// report over plain HTTP. It only observes the simulation.
type Server struct {
	config Config
	source Source
	logger log.Log

	httpServer  *http.Server
	listener    net.Listener
	unsubscribe func()

	latest atomic.Pointer[npc.TickReport]

	clientsMu   sync.Mutex
	clients     map[*client]struct{}
	clientCount atomic.Int64

	running atomic.Bool
	closed  atomic.Bool

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// NewServer creates a debug server reading reports from source.
func NewServer(config Config, source Source, logger log.Log) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	def := DefaultConfig()
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = def.SendBuffer
	}

	return &Server{
		config:   config,
		source:   source,
		logger:   logger.Named("debug").With(log.String("component", "server")),
		clients:  make(map[*client]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start listens on the configured address and begins forwarding reports.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if s.source == nil {
		return ErrNoSource
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.stopChan = make(chan struct{})
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	reports, unsubscribe := s.source.Subscribe()
	s.unsubscribe = unsubscribe

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		s.forward(reports)
	}()
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Debug server failed", log.Error(err))
		}
	}()

	s.logger.Info("Debug server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the address the server listens on, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop disconnects every client and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping debug server")
	close(s.stopChan)
	s.unsubscribe()

	// hijacked websocket connections are not tracked by Shutdown
	s.clientsMu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clientsMu.Unlock()

	err := s.httpServer.Shutdown(ctx)
	s.workerGroup.Wait()

	s.logger.Info("Debug server stopped")
	return err
}

// Close stops the server if needed; a closed server cannot be restarted.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// Latest returns the most recent report received.
func (s *Server) Latest() (npc.TickReport, bool) {
	r := s.latest.Load()
	if r == nil {
		return npc.TickReport{}, false
	}
	return *r, true
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64  `json:"clients"`
	LastTick    uint64 `json:"last_tick"`
	Running     bool   `json:"running"`
}

func (s *Server) GetStats() Stats {
	st := Stats{ClientCount: s.clientCount.Load(), Running: s.running.Load()}
	if r, ok := s.Latest(); ok {
		st.LastTick = r.Tick
	}
	return st
}

// forward records every report and hands it to the connected clients.
func (s *Server) forward(reports <-chan npc.TickReport) {
	s.logger.Debug("Report forwarder started")
	defer s.logger.Debug("Report forwarder stopped")

	for {
		select {
		case r, ok := <-reports:
			if !ok {
				return
			}
			s.latest.Store(&r)
			s.broadcast(r)
		case <-s.stopChan:
			return
		}
	}
}
