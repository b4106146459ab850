package state

import (
	"sync"
	"time"
)

// cell is a single lock-guarded value with its last write time.
type cell[T any] struct {
	mu        sync.RWMutex
	value     T
	set       bool
	updatedAt time.Time
}

func (c *cell[T]) store(v T) {
	now := time.Now()
	c.mu.Lock()
	c.value = v
	c.set = true
	c.updatedAt = now
	c.mu.Unlock()
}

func (c *cell[T]) load() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.set
}

func (c *cell[T]) lastWrite() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Store holds the latest controller input and the static configuration
// published to clients. It is safe for concurrent use.
type Store struct {
	gamepad cell[GamepadCommand]
	touch   cell[CanvasTouch]

	// set once in NewStore, read-only afterwards
	areaSize AreaSize
	catalog  Catalog
}

// NewStore creates a store with the given configuration. Each unset area
// dimension defaults to 1 and a nil catalog becomes an empty one.
func NewStore(areaSize AreaSize, catalog Catalog) *Store {
	return &Store{
		areaSize: areaSize.WithDefaults(),
		catalog:  catalog.Clone(),
	}
}

// UpdateGamepad replaces the stored gamepad command
func (s *Store) UpdateGamepad(cmd GamepadCommand) {
	s.gamepad.store(cmd)
}

// UpdateTouch replaces the stored canvas touch
func (s *Store) UpdateTouch(touch CanvasTouch) {
	s.touch.store(touch)
}

// SnapshotGamepad returns the latest gamepad command, or the zero command
// if none has been received.
func (s *Store) SnapshotGamepad() GamepadCommand {
	cmd, _ := s.gamepad.load()
	return cmd
}

// SnapshotTouch returns the latest canvas touch. ok is false until the
// first touch has been reported.
func (s *Store) SnapshotTouch() (touch CanvasTouch, ok bool) {
	return s.touch.load()
}

// UpdatedAt returns when the gamepad and touch values were last written.
// A zero time means the value was never written.
func (s *Store) UpdatedAt() (gamepad, touch time.Time) {
	return s.gamepad.lastWrite(), s.touch.lastWrite()
}

// AreaSize returns the configured playing-field size
func (s *Store) AreaSize() AreaSize {
	return s.areaSize
}

// Catalog returns a copy of the configured action catalog
func (s *Store) Catalog() Catalog {
	return s.catalog.Clone()
}
