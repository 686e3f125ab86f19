package joystick

// CommandVector is robot-frame drive intent: Turn (right positive) and
// Forward (forward positive).
type CommandVector struct {
	Turn    float64 `json:"turn"`
	Forward float64 `json:"fwd"`
}

// Mapping fixes how the display axes map onto the robot frame. Invert
// flags exist for robots wired "backwards".
type Mapping struct {
	InvertTurn    bool `json:"invertTurn"`
	InvertForward bool `json:"invertForward"`
}

// Map converts a DisplayVector to a CommandVector. Right on screen is turn,
// up on screen is forward; the axes are never swapped.
func (m Mapping) Map(d DisplayVector) CommandVector {
	turn := d.X
	fwd := d.Y
	if m.InvertTurn {
		turn = -turn
	}
	if m.InvertForward {
		fwd = -fwd
	}
	return CommandVector{Turn: turn, Forward: fwd}
}
