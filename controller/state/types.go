package state

// GamepadCommand is the latest joystick position reported by a client.
// Axis values are expected in [-1, 1] but are stored as received.
type GamepadCommand struct {
	LeftX  float32 `json:"lx"`
	LeftY  float32 `json:"ly"`
	RightX float32 `json:"rx"`
	RightY float32 `json:"ry"`
}

// CanvasTouch describes a touch gesture on the client's navigation canvas.
// Coordinates are in canvas pixels; Width and Height give the canvas size
// so consumers can normalize against their own AreaSize.
type CanvasTouch struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	DownX  float32 `json:"down_x"`
	DownY  float32 `json:"down_y"`
	UpX    float32 `json:"up_x"`
	UpY    float32 `json:"up_y"`
}

// AreaSize is the size of the playing field published to clients.
type AreaSize struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// DefaultAreaSize is the unit square used when the embedder does not set one.
var DefaultAreaSize = AreaSize{Width: 1, Height: 1}

// NewAreaSize creates an area size
func NewAreaSize(width, height float32) AreaSize {
	return AreaSize{Width: width, Height: height}
}

// IsZero reports whether no dimension was set
func (a AreaSize) IsZero() bool {
	return a.Width == 0 && a.Height == 0
}

// WithDefaults returns a with every unset dimension taken from
// DefaultAreaSize.
func (a AreaSize) WithDefaults() AreaSize {
	if a.Width == 0 {
		a.Width = DefaultAreaSize.Width
	}
	if a.Height == 0 {
		a.Height = DefaultAreaSize.Height
	}
	return a
}

// Action is a discrete command a client can trigger.
type Action struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// NewAction creates an action
func NewAction(id, description string) Action {
	return Action{ID: id, Description: description}
}

// Catalog is the ordered list of actions offered to clients.
type Catalog []Action

// Lookup returns the action with the given id
func (c Catalog) Lookup(id string) (Action, bool) {
	for _, action := range c {
		if action.ID == id {
			return action, true
		}
	}
	return Action{}, false
}

// Contains reports whether the catalog offers an action with the given id
func (c Catalog) Contains(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Clone returns a copy that does not share the backing array
func (c Catalog) Clone() Catalog {
	if c == nil {
		return Catalog{}
	}
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}
