// Package service provides the controller handle shared by the transports
// and the embedding process.
//
// Handle ties the shared state store and the action queue together. The
// transports (WebSocket sessions, REST handlers, MCP tools) use its write
// side; the embedding process uses its read side:
//
//	for {
//		cmd := handle.LatestGamepad()
//		id, ok, err := handle.PollAction()
//		if errors.Is(err, service.ErrDisconnected) {
//			return
//		}
//		if ok {
//			runAction(id)
//		}
//		time.Sleep(20 * time.Millisecond)
//	}
//
// None of the read operations block or apply backpressure to the network
// sessions.
package service
