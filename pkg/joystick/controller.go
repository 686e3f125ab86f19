package joystick

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

// moodThreshold is the command magnitude above which the face shows "drive".
const moodThreshold = 0.05

// Mood is the robot face expression shown next to the joystick.
type Mood string

const (
	MoodIdle  Mood = "idle"
	MoodDrive Mood = "drive"
	MoodStop  Mood = "stop"
)

// Sender dispatches commands without waiting for the robot's answer.
type Sender interface {
	// Send posts body as JSON to endpoint, fire-and-forget.
	Send(endpoint string, body interface{})
	// Beacon delivers payload to endpoint even while the caller is
	// being torn down.
	Beacon(endpoint string, payload string)
}

// Options configures a Controller.
type Options struct {
	Mapping Mapping
	SendHz  int
	// Mock only tags readouts; the Sender decides whether requests are real.
	Mock bool
}

// State is a snapshot of what the control page shows.
type State struct {
	Active    bool          `json:"active"`
	PointerID int           `json:"pointerId"`
	Display   DisplayVector `json:"display"`
	Command   CommandVector `json:"command"`
	Wheels    WheelPower    `json:"wheels"`
	Readout   string        `json:"readout"`
	Mood      Mood          `json:"mood"`
}

// session is the single active drag.
type session struct {
	pointerID int
}

// Controller runs the joystick pipeline for one control page. All state is
// owned by the instance, so independent controllers never interfere.
type Controller struct {
	mu       sync.Mutex
	opts     Options
	sender   Sender
	clock    clock.Clock
	throttle *Throttle
	logger   customlog.Logger

	session *session
	state   State
	closed  bool
}

// NewController creates a Controller at rest (knob centered, idle face).
func NewController(opts Options, sender Sender, clk clock.Clock, logger customlog.Logger) *Controller {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = customlog.Discard()
	}
	c := &Controller{
		opts:     opts,
		sender:   sender,
		clock:    clk,
		throttle: NewThrottle(opts.SendHz),
		logger:   logger,
	}
	c.state = State{Readout: c.restReadout(), Mood: MoodIdle}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PointerDown starts a drag session. A pointer other than the one already
// dragging is ignored.
func (c *Controller) PointerDown(s PointerSample, g Geometry) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state
	}
	if c.session != nil && c.session.pointerID != s.PointerID {
		c.logger.Debugf("Ignoring pointer %d, pointer %d is dragging", s.PointerID, c.session.pointerID)
		return c.state
	}
	if c.session == nil {
		c.session = &session{pointerID: s.PointerID}
		c.logger.Debugf("Drag session started for pointer %d", s.PointerID)
	}
	c.updateLocked(s, g)
	return c.state
}

// PointerMove updates the active drag session.
func (c *Controller) PointerMove(s PointerSample, g Geometry) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session == nil || c.session.pointerID != s.PointerID {
		return c.state
	}
	c.updateLocked(s, g)
	return c.state
}

// PointerUp ends the drag session of pointerID.
func (c *Controller) PointerUp(pointerID int) State {
	return c.endSession(pointerID, "pointerup")
}

// PointerCancel ends the drag session of pointerID.
func (c *Controller) PointerCancel(pointerID int) State {
	return c.endSession(pointerID, "pointercancel")
}

// LostCapture ends the drag session of pointerID after the widget lost
// pointer capture.
func (c *Controller) LostCapture(pointerID int) State {
	return c.endSession(pointerID, "lostpointercapture")
}

// Stop is the explicit stop control. It always sends a stop, with or
// without an active drag.
func (c *Controller) Stop() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state
	}
	c.resetLocked()
	c.logger.Infof("Stop requested")
	c.sender.Send(transport.EndpointStop, transport.StopBody{})
	return c.state
}

// Teardown is called when the control page goes away. The stop is sent as
// a beacon and the controller ignores every later event.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.resetLocked()
	c.logger.Infof("Page torn down, sending stop beacon")
	c.sender.Beacon(transport.EndpointStop, transport.StopPayload)
}

func (c *Controller) endSession(pointerID int, reason string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session == nil || c.session.pointerID != pointerID {
		return c.state
	}
	c.resetLocked()
	c.logger.Debugf("Drag session ended (%s), sending stop", reason)
	c.sender.Send(transport.EndpointStop, transport.StopBody{})
	return c.state
}

// updateLocked recomputes the pipeline for a sample and transmits it if
// the throttle allows. The caller holds c.mu.
func (c *Controller) updateLocked(s PointerSample, g Geometry) {
	display := Normalize(s, g)
	command := c.opts.Mapping.Map(display)
	wheels := Mix(command)

	mood := MoodIdle
	if math.Abs(command.Turn) > moodThreshold || math.Abs(command.Forward) > moodThreshold {
		mood = MoodDrive
	}

	c.state = State{
		Active:    true,
		PointerID: c.session.pointerID,
		Display:   display,
		Command:   command,
		Wheels:    wheels,
		Readout:   c.driveReadout(display, command, wheels),
		Mood:      mood,
	}

	if !c.throttle.Allow(c.clock.Now()) {
		return
	}
	c.sender.Send(transport.EndpointDrive, transport.DriveBody{L: wheels.Left, R: wheels.Right})
}

// resetLocked recenters the knob and clears the session. The caller holds c.mu.
func (c *Controller) resetLocked() {
	c.session = nil
	c.state = State{Readout: c.restReadout(), Mood: MoodStop}
}

func (c *Controller) driveReadout(d DisplayVector, cmd CommandVector, w WheelPower) string {
	return fmt.Sprintf("l=%s r=%s | disp=(%s,%s) cmd=(%s,%s)%s",
		fixed2(w.Left), fixed2(w.Right),
		fixed2(d.X), fixed2(d.Y),
		fixed2(cmd.Turn), fixed2(cmd.Forward),
		c.mockSuffix())
}

func (c *Controller) restReadout() string {
	return "l=0.00 r=0.00" + c.mockSuffix()
}

func (c *Controller) mockSuffix() string {
	if c.opts.Mock {
		return " [MOCK]"
	}
	return ""
}

// fixed2 formats v with two decimals and without a sign on zero.
func fixed2(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
