package rowan

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default modulate color (no tint).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout
// the API. The 2D coordinate system has its origin at the top-left, with Y
// increasing downward and units in pixels.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in 2D space.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Space tags which coordinate space a node's transform lives in. A node
// carries either a 2D affine transform, a 3D TRS transform, or none at all;
// the tag is fixed at construction.
type Space uint8

const (
	SpaceNone Space = iota // plain tree node, no spatial transform
	Space2D                // top-left origin, Y down, pixel units
	Space3D                // centered origin, Y up, world units
)

// ProcessMode controls whether a node receives process callbacks while the
// owning tree is paused.
type ProcessMode uint8

const (
	ProcessModePausable ProcessMode = iota // process only while the tree is unpaused (default)
	ProcessModeAlways                      // process regardless of the tree's paused state
	ProcessModeDisabled                    // never process
)

// String returns the snake-case name used by the process_mode enum property.
func (m ProcessMode) String() string {
	switch m {
	case ProcessModeAlways:
		return "always"
	case ProcessModeDisabled:
		return "disabled"
	default:
		return "pausable"
	}
}

// processModeFromString maps an enum option string back to its ProcessMode.
func processModeFromString(s string) (ProcessMode, bool) {
	switch s {
	case "pausable":
		return ProcessModePausable, true
	case "always":
		return ProcessModeAlways, true
	case "disabled":
		return ProcessModeDisabled, true
	}
	return 0, false
}
