// Package api provides the HTTP surface of the remote controller.
//
// The api package implements:
//   - The action catalog and action submission endpoints
//   - Canvas touch submission
//   - WebSocket upgrade handling for controller sessions
//   - Inspection endpoints for state, health, metrics and the message schema
//   - Embedded static files for the browser controller
//
// Endpoints:
//
// Controller:
//   - GET /actions - List the action catalog as {"actions":[{id,description}]}
//   - POST /action, /action/ - Submit {"id":"..."}; 202 on success
//   - POST /canvas_touch, /canvas_touch/ - Submit a touch stroke; 204 on success
//   - GET /area_size - Get the playing-field size
//   - GET /ws, /ws/ - Upgrade to a controller session
//
// Inspection:
//   - GET /api/state - Latest gamepad and touch with update times
//   - GET /healthz - Active sessions and pending actions
//   - GET /metrics - Prometheus exposition, when a gatherer is configured
//   - GET /schema - JSON Schema of the controller messages
//
// Static:
//   - GET / - Browser controller page
//   - GET /static/{file} - Embedded .html, .js and .css assets
//
// Usage:
//
//	supervisor := websocket.NewSupervisor(handle, websocket.DefaultConfig())
//	server := api.NewServer(handle, supervisor, api.WithGatherer(registry))
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "error message"}
//
// Submitting an action answers 400 for a malformed body, 404 for an id
// missing from the catalog and 503 once the controller has shut down.
package api
