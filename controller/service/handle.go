package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/remote-controller/controller/queue"
	"github.com/wricardo/remote-controller/controller/state"
)

var (
	// ErrDisconnected means the action queue was torn down and drained;
	// the consumer should stop polling.
	ErrDisconnected = errors.New("controller disconnected")

	ErrUnknownAction = errors.New("unknown action")
)

// Controller is the set of operations the transports need.
type Controller interface {
	UpdateGamepad(cmd state.GamepadCommand)
	UpdateTouch(touch state.CanvasTouch)
	SubmitAction(id string) error
	ValidateAction(id string) error

	LatestGamepad() state.GamepadCommand
	LatestTouch() (state.CanvasTouch, bool)
	PollAction() (string, bool, error)
	UpdatedAt() (gamepad, touch time.Time)
	PendingActions() int

	AreaSize() state.AreaSize
	Catalog() state.Catalog
}

// Handle is the controller state exposed to transports and the embedder.
type Handle struct {
	store *state.Store
	queue *queue.Queue
}

var _ Controller = (*Handle)(nil)

// NewHandle creates a handle over the given store and queue
func NewHandle(store *state.Store, q *queue.Queue) *Handle {
	return &Handle{store: store, queue: q}
}

// UpdateGamepad records a new gamepad command
func (h *Handle) UpdateGamepad(cmd state.GamepadCommand) {
	h.store.UpdateGamepad(cmd)
}

// UpdateTouch records a new canvas touch
func (h *Handle) UpdateTouch(touch state.CanvasTouch) {
	h.store.UpdateTouch(touch)
}

// SubmitAction enqueues an action id. Catalog membership is not checked
// here; see ValidateAction.
func (h *Handle) SubmitAction(id string) error {
	if err := h.queue.Submit(id); err != nil {
		return fmt.Errorf("submit action %q: %w", id, err)
	}
	return nil
}

// ValidateAction returns ErrUnknownAction if the catalog has no such action
func (h *Handle) ValidateAction(id string) error {
	if !h.store.Catalog().Contains(id) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return nil
}

// LatestGamepad returns the most recent gamepad command
func (h *Handle) LatestGamepad() state.GamepadCommand {
	return h.store.SnapshotGamepad()
}

// LatestTouch returns the most recent canvas touch, if any
func (h *Handle) LatestTouch() (state.CanvasTouch, bool) {
	return h.store.SnapshotTouch()
}

// PollAction returns the oldest pending action without blocking. ok is
// false when nothing is pending. Once the queue has been closed and
// drained it returns ErrDisconnected.
func (h *Handle) PollAction() (string, bool, error) {
	id, ok, err := h.queue.TryDrain()
	if errors.Is(err, queue.ErrProducerGone) {
		return "", false, ErrDisconnected
	}
	return id, ok, err
}

// UpdatedAt returns the last write times of the gamepad and touch values
func (h *Handle) UpdatedAt() (gamepad, touch time.Time) {
	return h.store.UpdatedAt()
}

// PendingActions returns the number of queued actions
func (h *Handle) PendingActions() int {
	return h.queue.Len()
}

// AreaSize returns the configured playing-field size
func (h *Handle) AreaSize() state.AreaSize {
	return h.store.AreaSize()
}

// Catalog returns the configured actions
func (h *Handle) Catalog() state.Catalog {
	return h.store.Catalog()
}

// Close tears down the action queue. Later submits fail with
// queue.ErrQueueClosed; queued actions can still be polled.
func (h *Handle) Close() {
	h.queue.Close()
}
