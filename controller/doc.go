// Package controller starts and stops the remote controller server.
//
// A remote controller mirrors input from a phone or browser into the
// embedding program: joystick axes and canvas touches as latest-value
// state, and button presses as a queue of action ids.
//
// Subpackages:
//   - state: the shared store for gamepad, touch, area size and catalog
//   - queue: the FIFO of submitted action ids
//   - wire: decoding of client messages and their JSON Schema
//   - service: the Handle the embedding program reads from
//   - config: controller profiles loaded from JSON files
//
// Usage:
//
//	server, err := controller.Start(controller.Options{
//		Addr:     ":8080",
//		AreaSize: state.NewAreaSize(1, 2),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer server.Shutdown(context.Background())
//
//	handle := server.Handle()
//	for range time.Tick(20 * time.Millisecond) {
//		fmt.Println(handle.LatestGamepad())
//	}
package controller
