package interact

import "pinboard/internal/geom"

// Button identifies the pointer button behind an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModAlt Modifiers = 1 << iota
	ModCtrl
	ModShift
)

func (m Modifiers) Has(k Modifiers) bool { return m&k != 0 }

// PointerEvent is a pointer press, motion or release in screen pixels.
type PointerEvent struct {
	Pos    geom.Vec2
	Button Button
	Mods   Modifiers
}

// Mode is the active interaction.
type Mode int

const (
	ModeIdle Mode = iota
	ModeRubberBand
	ModeDragging
	ModeResizing
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRubberBand:
		return "select"
	case ModeDragging:
		return "drag"
	case ModeResizing:
		return "resize"
	case ModePanning:
		return "pan"
	default:
		return "unknown"
	}
}

// Axis is the set of dimensions a resize may change.
type Axis uint8

const (
	AxisHorizontal Axis = 1 << iota
	AxisVertical

	AxisBoth = AxisHorizontal | AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	case AxisBoth:
		return "both"
	default:
		return "none"
	}
}
