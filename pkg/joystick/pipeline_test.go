package joystick

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 200px widget with a 33px knob at (100,100): travel is 67px.
var testGeometry = GeometryFromRect(0, 0, 200, 200, DefaultKnobRadius)

func sampleAt(dx, dy float64) PointerSample {
	return PointerSample{PointerID: 1, X: testGeometry.CenterX + dx, Y: testGeometry.CenterY + dy}
}

func TestNormalizeCenter(t *testing.T) {
	d := Normalize(sampleAt(0, 0), testGeometry)
	assert.Equal(t, DisplayVector{}, d)

	cmd := Mapping{}.Map(d)
	assert.Equal(t, CommandVector{}, cmd)
	assert.Equal(t, WheelPower{}, Mix(cmd))
}

func TestNormalizeTopEdgeDrivesForward(t *testing.T) {
	d := Normalize(sampleAt(0, -testGeometry.Travel()), testGeometry)
	assert.InDelta(t, 0, d.X, 1e-12)
	assert.InDelta(t, 1, d.Y, 1e-12)

	cmd := Mapping{}.Map(d)
	w := Mix(cmd)
	assert.InDelta(t, 1, w.Left, 1e-12)
	assert.InDelta(t, 1, w.Right, 1e-12)
}

func TestNormalizeBeyondTravelAt45Degrees(t *testing.T) {
	far := 5 * testGeometry.Travel()
	d := Normalize(sampleAt(far, -far), testGeometry)

	assert.InDelta(t, math.Sqrt2/2, d.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, d.Y, 1e-9)
}

func TestNormalizeClampsAxesBeforeCircle(t *testing.T) {
	travel := testGeometry.Travel()
	// raw (3, 0.5): the axis clamp gives (1, 0.5), then the circle clamp
	// scales that to (2/sqrt5, 1/sqrt5).
	d := Normalize(sampleAt(3*travel, -0.5*travel), testGeometry)

	assert.InDelta(t, 2/math.Sqrt(5), d.X, 1e-9)
	assert.InDelta(t, 1/math.Sqrt(5), d.Y, 1e-9)
}

func TestNormalizeStaysInUnitDisk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		dx := (rng.Float64()*2 - 1) * 400
		dy := (rng.Float64()*2 - 1) * 400
		d := Normalize(sampleAt(dx, dy), testGeometry)

		if d.X*d.X+d.Y*d.Y > 1+1e-9 {
			t.Fatalf("offset (%f,%f) produced %v outside the unit disk", dx, dy, d)
		}
		if math.Abs(d.X) > 1 || math.Abs(d.Y) > 1 {
			t.Fatalf("offset (%f,%f) produced component outside [-1,1]: %v", dx, dy, d)
		}
	}
}

func TestPipelineIsPure(t *testing.T) {
	m := Mapping{InvertTurn: true}
	s := sampleAt(21, -40)

	d1, d2 := Normalize(s, testGeometry), Normalize(s, testGeometry)
	assert.Equal(t, d1, d2)
	assert.Equal(t, m.Map(d1), m.Map(d2))
	assert.Equal(t, Mix(m.Map(d1)), Mix(m.Map(d2)))
}

func TestMappingInversion(t *testing.T) {
	right := DisplayVector{X: 1, Y: 0}

	cmd := Mapping{InvertTurn: true}.Map(right)
	assert.Equal(t, CommandVector{Turn: -1, Forward: 0}, cmd)
	assert.Equal(t, WheelPower{Left: -1, Right: 1}, Mix(cmd))

	cmd = Mapping{InvertForward: true}.Map(DisplayVector{X: 0.25, Y: 0.5})
	assert.Equal(t, CommandVector{Turn: 0.25, Forward: -0.5}, cmd)
}

func TestMixPassesThroughInsideDiamond(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		turn := rng.Float64()*2 - 1
		fwd := (rng.Float64()*2 - 1) * (1 - math.Abs(turn))

		w := Mix(CommandVector{Turn: turn, Forward: fwd})
		if w.Left != fwd+turn || w.Right != fwd-turn {
			t.Fatalf("Mix(%f,%f) = %v, expected unscaled (%f,%f)", turn, fwd, w, fwd+turn, fwd-turn)
		}
	}
}

func TestMixNeverExceedsUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 2000; i++ {
		c := CommandVector{Turn: rng.Float64()*2 - 1, Forward: rng.Float64()*2 - 1}
		w := Mix(c)
		if math.Max(math.Abs(w.Left), math.Abs(w.Right)) > 1+1e-12 {
			t.Fatalf("Mix(%v) = %v exceeds unit range", c, w)
		}
	}
}

func TestMixPreservesRatioAtSaturation(t *testing.T) {
	w := Mix(CommandVector{Turn: 0.5, Forward: 1})
	// raw (1.5, 0.5) scaled by 1.5
	assert.InDelta(t, 1, w.Left, 1e-12)
	assert.InDelta(t, 1.0/3.0, w.Right, 1e-12)

	w = Mix(CommandVector{Turn: 1, Forward: 1})
	assert.Equal(t, WheelPower{Left: 1, Right: 0}, w)
}

func TestKnobPositionInvertsNormalize(t *testing.T) {
	px, py := KnobPosition(DisplayVector{X: 0, Y: 1}, testGeometry)
	assert.Equal(t, 100.0, px)
	assert.Equal(t, 33.0, py)

	px, py = KnobPosition(DisplayVector{}, testGeometry)
	assert.Equal(t, 100.0, px)
	assert.Equal(t, 100.0, py)
}
