// Package wire decodes client-to-server controller messages.
//
// Three message shapes are accepted, either as WebSocket text frames or as
// HTTP request bodies:
//
//	{"lx": 0.5, "ly": -0.5, "rx": 0, "ry": 0}                       gamepad
//	{"width": 320, "height": 200, "down_x": 1, "down_y": 2,
//	 "up_x": 3, "up_y": 4}                                          touch
//	{"id": "save"}                                                  action
//
// Every field of a shape is required. Unknown fields are ignored. A payload
// that matches none of the shapes fails with ErrDecode.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/remote-controller/controller/state"
)

var ErrDecode = errors.New("malformed controller message")

// Kind identifies which shape a decoded message has.
type Kind int

const (
	KindGamepad Kind = iota + 1
	KindTouch
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindGamepad:
		return "gamepad"
	case KindTouch:
		return "touch"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Message is a decoded client message. Only the field matching Kind is set.
type Message struct {
	Kind     Kind
	Gamepad  state.GamepadCommand
	Touch    state.CanvasTouch
	ActionID string
}

// GamepadMessage is the wire form of a gamepad update.
type GamepadMessage struct {
	LX *float32 `json:"lx" jsonschema:"title=Left stick X,description=Horizontal axis of the left stick"`
	LY *float32 `json:"ly" jsonschema:"title=Left stick Y,description=Vertical axis of the left stick"`
	RX *float32 `json:"rx" jsonschema:"title=Right stick X,description=Horizontal axis of the right stick"`
	RY *float32 `json:"ry" jsonschema:"title=Right stick Y,description=Vertical axis of the right stick"`
}

// TouchMessage is the wire form of a canvas touch.
type TouchMessage struct {
	Width  *float32 `json:"width" jsonschema:"title=Canvas width,description=Width of the client canvas in pixels"`
	Height *float32 `json:"height" jsonschema:"title=Canvas height,description=Height of the client canvas in pixels"`
	DownX  *float32 `json:"down_x" jsonschema:"title=Touch down X"`
	DownY  *float32 `json:"down_y" jsonschema:"title=Touch down Y"`
	UpX    *float32 `json:"up_x" jsonschema:"title=Touch up X"`
	UpY    *float32 `json:"up_y" jsonschema:"title=Touch up Y"`
}

// ActionMessage is the wire form of an action submission.
type ActionMessage struct {
	ID *string `json:"id" jsonschema:"title=Action id,description=Identifier of an entry in the published action catalog,minLength=1"`
}

// fields is a payload split into its top-level keys. Only the keys of the
// shape being decoded are ever parsed, so foreign keys of any type are
// ignored.
type fields map[string]json.RawMessage

var (
	gamepadKeys = []string{"lx", "ly", "rx", "ry"}
	touchKeys   = []string{"width", "height", "down_x", "down_y", "up_x", "up_y"}
)

func parse(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrDecode)
	}
	return f, nil
}

// has reports whether every key is present and not null
func (f fields) has(keys ...string) bool {
	for _, key := range keys {
		raw, ok := f[key]
		if !ok || string(raw) == "null" {
			return false
		}
	}
	return true
}

func (f fields) numbers(keys []string) ([]float32, error) {
	values := make([]float32, len(keys))
	for i, key := range keys {
		if err := json.Unmarshal(f[key], &values[i]); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrDecode, key, err)
		}
	}
	return values, nil
}

func (f fields) gamepad() (state.GamepadCommand, error) {
	v, err := f.numbers(gamepadKeys)
	if err != nil {
		return state.GamepadCommand{}, err
	}
	return state.GamepadCommand{LeftX: v[0], LeftY: v[1], RightX: v[2], RightY: v[3]}, nil
}

func (f fields) touch() (state.CanvasTouch, error) {
	v, err := f.numbers(touchKeys)
	if err != nil {
		return state.CanvasTouch{}, err
	}
	return state.CanvasTouch{Width: v[0], Height: v[1], DownX: v[2], DownY: v[3], UpX: v[4], UpY: v[5]}, nil
}

func (f fields) actionID() (string, error) {
	var id string
	if err := json.Unmarshal(f["id"], &id); err != nil {
		return "", fmt.Errorf("%w: field id: %v", ErrDecode, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: action requires a non-empty id", ErrDecode)
	}
	return id, nil
}

// Decode parses a payload of any accepted shape. The shape is chosen by
// which required keys are present: gamepad takes precedence, then touch,
// then action.
func Decode(data []byte) (Message, error) {
	f, err := parse(data)
	if err != nil {
		return Message{}, err
	}

	switch {
	case f.has(gamepadKeys...):
		cmd, err := f.gamepad()
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindGamepad, Gamepad: cmd}, nil
	case f.has(touchKeys...):
		touch, err := f.touch()
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindTouch, Touch: touch}, nil
	case f.has("id"):
		id, err := f.actionID()
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindAction, ActionID: id}, nil
	}
	return Message{}, fmt.Errorf("%w: no known message shape", ErrDecode)
}

// DecodeGamepad parses a gamepad update
func DecodeGamepad(data []byte) (state.GamepadCommand, error) {
	f, err := parse(data)
	if err != nil {
		return state.GamepadCommand{}, err
	}
	if !f.has(gamepadKeys...) {
		return state.GamepadCommand{}, fmt.Errorf("%w: gamepad requires lx, ly, rx and ry", ErrDecode)
	}
	return f.gamepad()
}

// DecodeTouch parses a canvas touch
func DecodeTouch(data []byte) (state.CanvasTouch, error) {
	f, err := parse(data)
	if err != nil {
		return state.CanvasTouch{}, err
	}
	if !f.has(touchKeys...) {
		return state.CanvasTouch{}, fmt.Errorf("%w: touch requires width, height, down_x, down_y, up_x and up_y", ErrDecode)
	}
	return f.touch()
}

// DecodeAction parses an action submission and returns the action id
func DecodeAction(data []byte) (string, error) {
	f, err := parse(data)
	if err != nil {
		return "", err
	}
	if !f.has("id") {
		return "", fmt.Errorf("%w: action requires a non-empty id", ErrDecode)
	}
	return f.actionID()
}
