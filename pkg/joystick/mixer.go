package joystick

import "math"

// WheelPower is independent left/right motor power in [-1,1].
type WheelPower struct {
	Left  float64 `json:"l"`
	Right float64 `json:"r"`
}

// Mix applies arcade-drive mixing. When either wheel would exceed unit
// range both are divided by the same factor, keeping their ratio and so
// the turn radius.
func Mix(c CommandVector) WheelPower {
	l := c.Forward + c.Turn
	r := c.Forward - c.Turn

	m := math.Max(1, math.Max(math.Abs(l), math.Abs(r)))
	return WheelPower{Left: l / m, Right: r / m}
}
