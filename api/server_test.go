package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wricardo/remote-controller/controller/queue"
	"github.com/wricardo/remote-controller/controller/service"
	"github.com/wricardo/remote-controller/controller/state"
	"github.com/wricardo/remote-controller/metrics"
	transport "github.com/wricardo/remote-controller/transport/websocket"
)

func newTestServer(t *testing.T) (*Server, *service.Handle) {
	t.Helper()

	store := state.NewStore(state.NewAreaSize(320, 200), state.Catalog{
		state.NewAction("save", "Save game"),
		state.NewAction("load", "Load game"),
	})
	handle := service.NewHandle(store, queue.New())

	quiet := log.New(io.Discard, "", 0)
	supervisor := transport.NewSupervisor(handle, transport.Config{Logger: quiet})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		supervisor.Shutdown(ctx)
	})

	registry := prometheus.NewRegistry()
	server := NewServer(handle, supervisor,
		WithGatherer(registry),
		WithMetrics(metrics.New(metrics.WithRegistry(registry))),
		WithLogger(quiet),
	)
	return server, handle
}

func doRequest(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestServer_ListActions(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, "GET", "/actions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Actions []state.Action `json:"actions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(resp.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(resp.Actions))
	}
	if resp.Actions[0].ID != "save" || resp.Actions[0].Description != "Save game" {
		t.Errorf("Unexpected first action: %+v", resp.Actions[0])
	}
}

func TestServer_ListActionsEmptyCatalog(t *testing.T) {
	handle := service.NewHandle(state.NewStore(state.AreaSize{}, nil), queue.New())
	server := NewServer(handle, nil)

	w := doRequest(server, "GET", "/actions", "")
	if body := strings.TrimSpace(w.Body.String()); body != `{"actions":[]}` {
		t.Errorf("Expected empty actions array, got %s", body)
	}
}

func TestServer_SubmitAction(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		expected int
	}{
		{"accepted", "/action", `{"id":"save"}`, http.StatusAccepted},
		{"accepted with trailing slash", "/action/", `{"id":"load"}`, http.StatusAccepted},
		{"malformed body", "/action/", `not json`, http.StatusBadRequest},
		{"empty id", "/action/", `{"id":""}`, http.StatusBadRequest},
		{"unknown id", "/action/", `{"id":"jump"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, handle := newTestServer(t)

			w := doRequest(server, "POST", tt.path, tt.body)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}

			wantPending := 0
			if tt.expected == http.StatusAccepted {
				wantPending = 1
			}
			if got := handle.PendingActions(); got != wantPending {
				t.Errorf("Expected %d pending actions, got %d", wantPending, got)
			}
		})
	}
}

func TestServer_SubmitActionAfterClose(t *testing.T) {
	server, handle := newTestServer(t)
	handle.Close()

	w := doRequest(server, "POST", "/action/", `{"id":"save"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestServer_SubmitActionsKeepOrder(t *testing.T) {
	server, handle := newTestServer(t)

	for _, id := range []string{"save", "load", "save"} {
		if w := doRequest(server, "POST", "/action/", `{"id":"`+id+`"}`); w.Code != http.StatusAccepted {
			t.Fatalf("Submit %s failed with %d", id, w.Code)
		}
	}

	for _, want := range []string{"save", "load", "save"} {
		id, ok, err := handle.PollAction()
		if err != nil || !ok || id != want {
			t.Fatalf("Expected %q, got id=%q ok=%v err=%v", want, id, ok, err)
		}
	}
}

func TestServer_CanvasTouch(t *testing.T) {
	server, handle := newTestServer(t)

	body := `{"width":320,"height":200,"down_x":10,"down_y":20,"up_x":30,"up_y":40}`
	w := doRequest(server, "POST", "/canvas_touch/", body)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}

	touch, ok := handle.LatestTouch()
	if !ok {
		t.Fatal("Expected touch to be recorded")
	}
	want := state.CanvasTouch{Width: 320, Height: 200, DownX: 10, DownY: 20, UpX: 30, UpY: 40}
	if touch != want {
		t.Errorf("Expected %+v, got %+v", want, touch)
	}
}

func TestServer_CanvasTouchMalformed(t *testing.T) {
	server, handle := newTestServer(t)

	w := doRequest(server, "POST", "/canvas_touch", `{"width":320}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] == "" {
		t.Error("Expected error message in response")
	}

	if _, ok := handle.LatestTouch(); ok {
		t.Error("Malformed touch must not be recorded")
	}
}

func TestServer_AreaSize(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, "GET", "/area_size", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var size state.AreaSize
	if err := json.NewDecoder(w.Body).Decode(&size); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if size.Width != 320 || size.Height != 200 {
		t.Errorf("Expected 320x200, got %+v", size)
	}
}

func TestServer_State(t *testing.T) {
	server, handle := newTestServer(t)

	w := doRequest(server, "GET", "/api/state", "")
	var before map[string]interface{}
	json.NewDecoder(w.Body).Decode(&before)
	if before["touch"] != nil {
		t.Errorf("Expected null touch before any update, got %v", before["touch"])
	}
	if _, ok := before["gamepad_updated_at"]; ok {
		t.Error("Expected no gamepad update time before any update")
	}

	handle.UpdateGamepad(state.GamepadCommand{LeftX: 0.5})
	handle.SubmitAction("save")

	w = doRequest(server, "GET", "/api/state", "")
	var resp stateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Gamepad.LeftX != 0.5 {
		t.Errorf("Expected lx 0.5, got %v", resp.Gamepad.LeftX)
	}
	if resp.GamepadUpdatedAt == nil {
		t.Error("Expected gamepad update time")
	}
	if resp.PendingActions != 1 {
		t.Errorf("Expected 1 pending action, got %d", resp.PendingActions)
	}
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", resp["status"])
	}
	if resp["sessions"] != float64(0) {
		t.Errorf("Expected 0 sessions, got %v", resp["sessions"])
	}
}

func TestServer_Schema(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, "GET", "/schema", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	for _, field := range []string{`"lx"`, `"up_y"`, `"id"`} {
		if !strings.Contains(w.Body.String(), field) {
			t.Errorf("Expected schema to mention %s", field)
		}
	}
}

func TestServer_Metrics(t *testing.T) {
	server, _ := newTestServer(t)

	doRequest(server, "POST", "/action/", `{"id":"save"}`)

	w := doRequest(server, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `remote_controller_actions_total{result="accepted"} 1`) {
		t.Errorf("Expected accepted action counter in exposition, got:\n%s", w.Body.String())
	}
}

func TestServer_Static(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8"},
		{"/static/index.html", http.StatusOK, "text/html; charset=utf-8"},
		{"/static/controller.js", http.StatusOK, "text/javascript; charset=utf-8"},
		{"/static/style.css", http.StatusOK, "text/css; charset=utf-8"},
		{"/static/missing.js", http.StatusNotFound, ""},
		{"/static/notes.txt", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		w := doRequest(server, "GET", tt.path, "")
		if w.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.status, w.Code)
			continue
		}
		if tt.contentType != "" && w.Header().Get("Content-Type") != tt.contentType {
			t.Errorf("%s: expected content type %q, got %q", tt.path, tt.contentType, w.Header().Get("Content-Type"))
		}
	}
}

func TestServer_StaticClientInputs(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{`id="move_joystick_zone"`, `id="rotate_joystick_zone"`, `id="navigation_canvas"`}},
		{"/static/controller.js", []string{
			"const TOUCH_DEADZONE = 0.05;",
			"const SEND_INTERVAL_MS = 100;",
			"const START_BUTTON = 9;",
			"setInterval(pollJoysticks, GAMEPAD_POLL_MS);",
			"toggleFullscreen();",
		}},
	}

	for _, tt := range tests {
		w := doRequest(server, "GET", tt.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", tt.path, w.Code)
		}
		for _, want := range tt.want {
			if !strings.Contains(w.Body.String(), want) {
				t.Errorf("%s: expected body to contain %q", tt.path, want)
			}
		}
	}
}

func TestContentKind(t *testing.T) {
	tests := map[string]contentKind{
		"index.html":    contentHTML,
		"controller.js": contentJS,
		"style.css":     contentCSS,
		"image.png":     contentUnknown,
		"README":        contentUnknown,
	}

	for name, want := range tests {
		if got := kindOf(name); got != want {
			t.Errorf("kindOf(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestServer_WebSocketRoutes(t *testing.T) {
	server, handle := newTestServer(t)
	ts := httptest.NewServer(server)
	defer ts.Close()

	for i, path := range []string{"/ws", "/ws/"} {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Failed to connect to %s: %v", path, err)
		}

		lx := float32(i + 1)
		msg, _ := json.Marshal(state.GamepadCommand{LeftX: lx})
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			t.Fatalf("Failed to send message: %v", err)
		}

		deadline := time.Now().Add(time.Second)
		for handle.LatestGamepad().LeftX != lx && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if got := handle.LatestGamepad().LeftX; got != lx {
			t.Errorf("%s: expected lx %v, got %v", path, lx, got)
		}
		conn.Close()
	}
}
