package wire

import (
	"github.com/invopop/jsonschema"
)

// Messages groups every client-to-server shape for schema generation.
type Messages struct {
	Gamepad GamepadMessage `json:"gamepad" jsonschema:"description=Joystick update sent as a WebSocket text frame"`
	Touch   TouchMessage   `json:"touch" jsonschema:"description=Canvas touch sent to /canvas_touch/ or as a text frame"`
	Action  ActionMessage  `json:"action" jsonschema:"description=Action submission sent to /action/ or as a text frame"`
}

// Schema returns the JSON Schema describing the accepted client messages.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Messages))
	schema.Title = "Remote Controller Messages"
	schema.Description = "Client-to-server messages accepted by the remote controller server"
	return schema
}
