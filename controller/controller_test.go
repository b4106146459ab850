package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/remote-controller/controller/service"
	"github.com/wricardo/remote-controller/controller/state"
	transport "github.com/wricardo/remote-controller/transport/websocket"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()

	server, err := Start(Options{
		Addr:     "127.0.0.1:0",
		AreaSize: state.NewAreaSize(1, 2),
		Catalog: state.Catalog{
			state.NewAction("save", "Save"),
			state.NewAction("load", "Load"),
		},
		Session: transport.Config{
			HeartbeatInterval: 50 * time.Millisecond,
			ClientTimeout:     500 * time.Millisecond,
		},
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})
	return server
}

func TestStart_EndToEnd(t *testing.T) {
	server := startTestServer(t)
	handle := server.Handle()
	base := "http://" + server.Addr().String()

	if size := handle.AreaSize(); size.Width != 1 || size.Height != 2 {
		t.Errorf("Expected 1x2 area, got %+v", size)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr().String()+"/ws/", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"lx":0.5,"ly":-0.5,"rx":0,"ry":0}`)); err != nil {
		t.Fatalf("Failed to send gamepad message: %v", err)
	}

	want := state.GamepadCommand{LeftX: 0.5, LeftY: -0.5}
	deadline := time.Now().Add(time.Second)
	for handle.LatestGamepad() != want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := handle.LatestGamepad(); got != want {
		t.Fatalf("Expected %+v, got %+v", want, got)
	}
	if server.Sessions() != 1 {
		t.Errorf("Expected 1 session, got %d", server.Sessions())
	}

	resp, err := http.Post(base+"/action/", "application/json", bytes.NewBufferString(`{"id":"save"}`))
	if err != nil {
		t.Fatalf("POST /action/ failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", resp.StatusCode)
	}

	id, ok, err := handle.PollAction()
	if err != nil || !ok || id != "save" {
		t.Errorf("Expected 'save', got id=%q ok=%v err=%v", id, ok, err)
	}
	if _, ok, _ := handle.PollAction(); ok {
		t.Error("Expected the action to be delivered only once")
	}
}

func TestServer_ShutdownClosesQueue(t *testing.T) {
	server := startTestServer(t)
	handle := server.Handle()

	if err := handle.SubmitAction("load"); err != nil {
		t.Fatalf("SubmitAction failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	id, ok, err := handle.PollAction()
	if err != nil || !ok || id != "load" {
		t.Errorf("Queued action should survive shutdown, got id=%q ok=%v err=%v", id, ok, err)
	}
	if _, _, err := handle.PollAction(); !errors.Is(err, service.ErrDisconnected) {
		t.Errorf("Expected ErrDisconnected, got %v", err)
	}
	if err := handle.SubmitAction("save"); err == nil {
		t.Error("Expected submit to fail after shutdown")
	}

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Second shutdown should be a no-op, got %v", err)
	}
}

func TestServer_ShutdownDisconnectsClients(t *testing.T) {
	server := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	conn.SetPingHandler(func(string) error { return nil })

	deadline := time.Now().Add(time.Second)
	for server.Sessions() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Errorf("Expected going-away close, got %v", err)
			}
			break
		}
	}
}

func TestServer_ServeAfterShutdown(t *testing.T) {
	server := New(Options{Logger: log.New(io.Discard, "", 0)})
	if server.Addr() != nil {
		t.Error("Expected no address before Serve")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Expected ErrServerClosed, got %v", err)
	}
}

func TestNew_DefaultAreaSize(t *testing.T) {
	server := New(Options{Logger: log.New(io.Discard, "", 0)})

	if size := server.Handle().AreaSize(); size != state.DefaultAreaSize {
		t.Errorf("Expected default area size, got %+v", size)
	}
	if server.Registry() == nil {
		t.Error("Expected a private registry")
	}
}

func TestStart_InvalidAddr(t *testing.T) {
	if _, err := Start(Options{Addr: "256.0.0.1:-1", Logger: log.New(io.Discard, "", 0)}); err == nil {
		t.Error("Expected Start to fail for an invalid address")
	}
}
