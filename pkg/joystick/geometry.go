// Package joystick turns pointer gestures on a virtual joystick into
// differential-drive wheel commands.
//
// The pipeline is one-way: PointerSample -> Normalize -> Mapping.Map ->
// Mix -> Throttle -> Sender. Controller owns the drag session, the
// throttle timestamp and the stop-on-release safety behaviour.
package joystick

import (
	"github.com/golang/geo/r2"
)

// DefaultKnobRadius is the knob radius in CSS pixels (a ~66px knob).
const DefaultKnobRadius = 33.0

// PointerSample is the raw screen position of the active pointer.
type PointerSample struct {
	PointerID int     `json:"pointerId"`
	X         float64 `json:"clientX"`
	Y         float64 `json:"clientY"`
}

// Geometry describes the joystick widget on screen.
type Geometry struct {
	CenterX    float64
	CenterY    float64
	Radius     float64
	KnobRadius float64
}

// GeometryFromRect builds a Geometry from a widget bounding rectangle.
// The widget is a circle, so the radius is half the width.
func GeometryFromRect(left, top, width, height, knobRadius float64) Geometry {
	return Geometry{
		CenterX:    left + width/2,
		CenterY:    top + height/2,
		Radius:     width / 2,
		KnobRadius: knobRadius,
	}
}

// Travel is the distance the knob center can move from the widget center.
func (g Geometry) Travel() float64 {
	return g.Radius - g.KnobRadius
}

// DisplayVector is the knob position in screen convention (right = +X,
// up = +Y), always inside the unit disk.
type DisplayVector struct {
	X float64 `json:"nx"`
	Y float64 `json:"ny"`
}

// Normalize converts a pointer position into a DisplayVector.
// Each axis is clamped to [-1,1] first, then the vector is scaled back
// onto the unit circle if it lies outside it. A zero travel distance is a
// caller error and yields an undefined result.
func Normalize(s PointerSample, g Geometry) DisplayVector {
	travel := g.Travel()

	dx := s.X - g.CenterX // right positive
	dy := s.Y - g.CenterY // down positive

	p := r2.Point{
		X: clamp(dx/travel, -1, 1),
		Y: clamp(-dy/travel, -1, 1),
	}
	if mag := p.Norm(); mag > 1 {
		p = p.Mul(1 / mag)
	}
	return DisplayVector{X: p.X, Y: p.Y}
}

// KnobPosition returns the knob center in widget-local pixels for a
// DisplayVector, the inverse of Normalize used to draw the knob.
func KnobPosition(d DisplayVector, g Geometry) (px, py float64) {
	travel := g.Travel()
	return g.Radius + d.X*travel, g.Radius - d.Y*travel
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
