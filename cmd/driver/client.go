package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/remote-controller/controller/state"
)

// Client plays the part of a phone: it streams gamepad frames over the
// WebSocket and uses the REST endpoints for touches and actions.
type Client struct {
	baseURL string
	client  *http.Client
	conn    *websocket.Conn
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Connect opens the controller WebSocket. Pings from the server are
// answered by the default handler while a reader is running.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connect websocket: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("connect websocket: %w", err)
	}
	c.conn = conn

	// Control frames are processed by reads
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return nil
}

// SendGamepad writes one joystick frame
func (c *Client) SendGamepad(cmd state.GamepadCommand) error {
	if c.conn == nil {
		return fmt.Errorf("send gamepad: not connected")
	}
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send gamepad: %w", err)
	}
	return nil
}

// Close sends a normal close frame and closes the socket
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Actions returns the server's action catalog
func (c *Client) Actions() (state.Catalog, error) {
	var body struct {
		Actions state.Catalog `json:"actions"`
	}
	if err := c.get("/actions", &body); err != nil {
		return nil, err
	}
	return body.Actions, nil
}

// AreaSize returns the published playing-field size
func (c *Client) AreaSize() (state.AreaSize, error) {
	var size state.AreaSize
	err := c.get("/area_size", &size)
	return size, err
}

// SubmitAction presses an action button
func (c *Client) SubmitAction(id string) error {
	return c.post("/action/", map[string]string{"id": id}, http.StatusAccepted)
}

// Touch reports a swipe on the navigation canvas
func (c *Client) Touch(touch state.CanvasTouch) error {
	return c.post("/canvas_touch/", touch, http.StatusNoContent)
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("get %s failed: %s - %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(path string, in interface{}, want int) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return fmt.Errorf("post %s failed: %s - %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
