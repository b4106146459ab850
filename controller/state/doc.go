// Package state provides the shared controller state store.
//
// The state package implements:
//   - Latest-value storage for gamepad axes and canvas touches
//   - Write-once controller configuration (area size, action catalog)
//   - Snapshot reads that never observe a partially written value
//
// Core Types:
//
// GamepadCommand holds the four joystick axes reported by the web client.
// CanvasTouch describes a single touch gesture on the navigation canvas.
// AreaSize and Catalog are published to clients and never change after
// the Store has been constructed.
//
// Concurrency:
//
// Each mutable value lives in its own lock-guarded cell, so a gamepad
// update never waits on a touch reader and vice versa. Critical sections
// only replace a value; decoding and I/O happen before the lock is taken.
//
// Usage:
//
//	store := state.NewStore(state.NewAreaSize(1, 2), state.Catalog{
//		{ID: "save", Description: "Save game"},
//	})
//
//	store.UpdateGamepad(state.GamepadCommand{LeftX: 0.5})
//	cmd := store.SnapshotGamepad()
//
//	if touch, ok := store.SnapshotTouch(); ok {
//		fmt.Println(touch.UpX, touch.UpY)
//	}
package state
