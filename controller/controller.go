package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wricardo/remote-controller/api"
	"github.com/wricardo/remote-controller/controller/queue"
	"github.com/wricardo/remote-controller/controller/service"
	"github.com/wricardo/remote-controller/controller/state"
	"github.com/wricardo/remote-controller/metrics"
	"github.com/wricardo/remote-controller/transport/websocket"
)

// DefaultAddr is where the server listens when Options.Addr is empty.
const DefaultAddr = "0.0.0.0:8080"

// Options configures a Server.
type Options struct {
	// Addr is the TCP address Start listens on.
	Addr string

	// AreaSize is published to clients. Zero means 1x1.
	AreaSize state.AreaSize

	// Catalog lists the actions clients may submit.
	Catalog state.Catalog

	// Session tunes heartbeat and timeout. Zero fields take the defaults.
	Session websocket.Config

	Logger *log.Logger

	// Registry receives the server's metrics. A private registry is
	// created when nil.
	Registry *prometheus.Registry
}

// Server runs the controller HTTP and WebSocket endpoints and owns the
// state handle the embedding program reads from.
type Server struct {
	handle     *service.Handle
	supervisor *websocket.Supervisor
	api        *api.Server
	http       *http.Server
	registry   *prometheus.Registry
	logger     *log.Logger

	mu        sync.Mutex
	listeners []net.Listener
	closed    bool
}

// New builds a server without listening. Use Serve to attach listeners.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := metrics.New(metrics.WithRegistry(registry))
	handle := service.NewHandle(state.NewStore(opts.AreaSize, opts.Catalog), queue.New())

	sessionConfig := opts.Session
	sessionConfig.Logger = logger
	sessionConfig.Metrics = m
	supervisor := websocket.NewSupervisor(handle, sessionConfig)

	apiServer := api.NewServer(handle, supervisor,
		api.WithGatherer(registry),
		api.WithMetrics(m),
		api.WithLogger(logger),
	)

	return &Server{
		handle:     handle,
		supervisor: supervisor,
		api:        apiServer,
		http: &http.Server{
			Handler:           apiServer,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          logger,
		},
		registry: registry,
		logger:   logger,
	}
}

// Start listens on opts.Addr and serves in the background. The returned
// server's Handle is live as soon as Start returns.
func Start(opts Options) (*Server, error) {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := New(opts)
	s.track(listener)
	go func() {
		if err := s.serve(listener); err != nil {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	s.logger.Printf("Remote controller listening on http://%s", listener.Addr())
	return s, nil
}

// Serve accepts connections on listener until Shutdown. It may be called
// for several listeners, for example a LAN socket and a tunnel.
func (s *Server) Serve(listener net.Listener) error {
	if !s.track(listener) {
		listener.Close()
		return http.ErrServerClosed
	}
	return s.serve(listener)
}

// track records listener unless the server is already shut down
func (s *Server) track(listener net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.listeners = append(s.listeners, listener)
	return true
}

func (s *Server) serve(listener net.Listener) error {
	err := s.http.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the address of the first listener, or nil before one is
// attached.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.listeners) == 0 {
		return nil
	}
	return s.listeners[0].Addr()
}

// Handle returns the state handle for the embedding program
func (s *Server) Handle() *service.Handle {
	return s.handle
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.api
}

// Registry returns the registry holding the server's metrics
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Sessions returns the number of connected controllers
func (s *Server) Sessions() int {
	return s.supervisor.Count()
}

// Shutdown closes every session with a going-away frame, stops the HTTP
// server and closes the action queue. Actions already queued can still be
// polled from Handle.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Println("Shutting down remote controller...")

	var errs []error
	if err := s.supervisor.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	s.handle.Close()

	return errors.Join(errs...)
}
