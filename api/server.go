package api

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wricardo/remote-controller/controller/queue"
	"github.com/wricardo/remote-controller/controller/service"
	"github.com/wricardo/remote-controller/controller/state"
	"github.com/wricardo/remote-controller/controller/wire"
	"github.com/wricardo/remote-controller/metrics"
	"github.com/wricardo/remote-controller/transport/websocket"
)

// maxBodySize bounds request bodies; controller messages are tiny.
const maxBodySize = 4096

//go:embed static
var staticFiles embed.FS

// contentKind is the type of an embedded asset, resolved from its extension.
type contentKind int

const (
	contentUnknown contentKind = iota
	contentHTML
	contentJS
	contentCSS
)

func kindOf(name string) contentKind {
	switch path.Ext(name) {
	case ".html":
		return contentHTML
	case ".js":
		return contentJS
	case ".css":
		return contentCSS
	default:
		return contentUnknown
	}
}

func (k contentKind) contentType() string {
	switch k {
	case contentHTML:
		return "text/html; charset=utf-8"
	case contentJS:
		return "text/javascript; charset=utf-8"
	case contentCSS:
		return "text/css; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer exposes the given registry on /metrics.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithMetrics counts actions submitted over HTTP.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server represents the HTTP surface of the controller
type Server struct {
	controller service.Controller
	supervisor *websocket.Supervisor
	gatherer   prometheus.Gatherer
	metrics    *metrics.Metrics
	logger     *log.Logger
	router     *mux.Router
}

// NewServer creates a new API server
func NewServer(controller service.Controller, supervisor *websocket.Supervisor, opts ...Option) *Server {
	s := &Server{
		controller: controller,
		supervisor: supervisor,
		logger:     log.Default(),
		router:     mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Controller client, trailing-slash forms kept for existing clients
	s.router.HandleFunc("/actions", s.handleListActions).Methods("GET")
	s.router.HandleFunc("/action", s.handleSubmitAction).Methods("POST")
	s.router.HandleFunc("/action/", s.handleSubmitAction).Methods("POST")
	s.router.HandleFunc("/canvas_touch", s.handleCanvasTouch).Methods("POST")
	s.router.HandleFunc("/canvas_touch/", s.handleCanvasTouch).Methods("POST")
	s.router.HandleFunc("/area_size", s.handleAreaSize).Methods("GET")

	// WebSocket
	if s.supervisor != nil {
		s.router.HandleFunc("/ws", s.supervisor.ServeWS)
		s.router.HandleFunc("/ws/", s.supervisor.ServeWS)
	}

	// Inspection
	s.router.HandleFunc("/api/state", s.handleState).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/schema", s.handleSchema).Methods("GET")
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Static files
	s.router.HandleFunc("/static/{file}", s.handleStatic).Methods("GET")
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

// Controller Handlers

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"actions": s.controller.Catalog(),
	})
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := wire.DecodeAction(body)
	if err != nil {
		s.metrics.DecodeError()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.controller.ValidateAction(id); err != nil {
		s.metrics.ActionSubmitted("unknown")
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := s.controller.SubmitAction(id); err != nil {
		s.metrics.ActionSubmitted("closed")
		if errors.Is(err, queue.ErrQueueClosed) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.ActionSubmitted("accepted")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"id":     id,
	})
}

func (s *Server) handleCanvasTouch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	touch, err := wire.DecodeTouch(body)
	if err != nil {
		s.metrics.DecodeError()
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.controller.UpdateTouch(touch)
	s.metrics.FrameReceived(wire.KindTouch.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAreaSize(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.controller.AreaSize())
}

// Inspection Handlers

type stateResponse struct {
	Gamepad          state.GamepadCommand `json:"gamepad"`
	GamepadUpdatedAt *time.Time           `json:"gamepad_updated_at,omitempty"`
	Touch            *state.CanvasTouch   `json:"touch"`
	TouchUpdatedAt   *time.Time           `json:"touch_updated_at,omitempty"`
	PendingActions   int                  `json:"pending_actions"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	gamepadAt, touchAt := s.controller.UpdatedAt()

	resp := stateResponse{
		Gamepad:          s.controller.LatestGamepad(),
		GamepadUpdatedAt: timePtr(gamepadAt),
		TouchUpdatedAt:   timePtr(touchAt),
		PendingActions:   s.controller.PendingActions(),
	}
	if touch, ok := s.controller.LatestTouch(); ok {
		resp.Touch = &touch
	}

	respondJSON(w, http.StatusOK, resp)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions := 0
	if s.supervisor != nil {
		sessions = s.supervisor.Count()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"sessions":        sessions,
		"pending_actions": s.controller.PendingActions(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, wire.Schema())
}

// Static Handlers

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "index.html")
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, mux.Vars(r)["file"])
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, name string) {
	kind := kindOf(name)
	if kind == contentUnknown {
		http.NotFound(w, r)
		return
	}

	data, err := staticFiles.ReadFile("static/" + name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", kind.contentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Printf("Failed to write %s: %v", name, err)
	}
}
