package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/panel"
)

// Event types a control page sends over its websocket.
const (
	EventPointerDown   = "pointerdown"
	EventPointerMove   = "pointermove"
	EventPointerUp     = "pointerup"
	EventPointerCancel = "pointercancel"
	EventLostCapture   = "lostpointercapture"
	EventStop          = "stop"
	EventPan           = "pan"
	EventTilt          = "tilt"
	EventWaist         = "waist"
	EventSay           = "say"
	EventUnload        = "unload"
)

// ErrUnknownEvent is returned for event types the session does not handle.
var ErrUnknownEvent = errors.New("unknown event type")

// ErrMissingRect is returned when the first pointer event carries no
// joystick bounding rectangle.
var ErrMissingRect = errors.New("pointer event without joystick rect")

// Rect is the joystick widget's bounding rectangle in client pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClientEvent is one message from a control page.
type ClientEvent struct {
	Type      string  `json:"type"`
	PointerID int     `json:"pointerId"`
	ClientX   float64 `json:"clientX"`
	ClientY   float64 `json:"clientY"`
	Rect      *Rect   `json:"rect,omitempty"`
	Value     float64 `json:"value"`
	PhraseID  int     `json:"phraseId"`
}

// Knob is the knob center in widget-local pixels.
type Knob struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SessionState is what the page renders after each event.
type SessionState struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Joystick  joystick.State `json:"joystick"`
	Knob      *Knob          `json:"knob,omitempty"`
	Sliders   panel.Sliders  `json:"sliders"`
	Error     string         `json:"error,omitempty"`
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Controller joystick.Options
	KnobRadius float64
	Debounce   time.Duration
}

// Session is the console-side state of one control page: its joystick
// controller and its slider panel.
type Session struct {
	id         string
	controller *joystick.Controller
	panel      *panel.Panel
	knobRadius float64
	logger     customlog.Logger

	mu       sync.Mutex
	geometry *joystick.Geometry
	closed   bool
}

// NewSession creates a Session sending through sender.
func NewSession(opts SessionOptions, sender joystick.Sender, clk clock.Clock, logger customlog.Logger) *Session {
	id := uuid.NewString()
	logger = logger.WithField("session", id[:8])

	knob := opts.KnobRadius
	if knob <= 0 {
		knob = joystick.DefaultKnobRadius
	}
	return &Session{
		id:         id,
		controller: joystick.NewController(opts.Controller, sender, clk, logger),
		panel:      panel.New(sender, clk, opts.Debounce, logger),
		knobRadius: knob,
		logger:     logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current page state.
func (s *Session) State() SessionState {
	return s.snapshot(s.controller.State())
}

// OnSliderSend registers fn to receive the page state after each debounced
// slider send, when the slider labels change.
func (s *Session) OnSliderSend(fn func(SessionState)) {
	s.panel.OnSend(func(panel.Sliders) {
		fn(s.State())
	})
}

// HandleMessage applies one encoded ClientEvent and returns the new state.
func (s *Session) HandleMessage(data []byte) (SessionState, error) {
	var ev ClientEvent
	if err := JSON.Unmarshal(data, &ev); err != nil {
		return s.State(), fmt.Errorf("malformed event: %w", err)
	}
	return s.HandleEvent(ev)
}

// HandleEvent applies ev and returns the new state.
func (s *Session) HandleEvent(ev ClientEvent) (SessionState, error) {
	switch ev.Type {
	case EventPointerDown, EventPointerMove:
		g, err := s.geometryFor(ev.Rect)
		if err != nil {
			return s.State(), err
		}
		sample := joystick.PointerSample{PointerID: ev.PointerID, X: ev.ClientX, Y: ev.ClientY}
		if ev.Type == EventPointerDown {
			return s.snapshot(s.controller.PointerDown(sample, g)), nil
		}
		return s.snapshot(s.controller.PointerMove(sample, g)), nil
	case EventPointerUp:
		return s.snapshot(s.controller.PointerUp(ev.PointerID)), nil
	case EventPointerCancel:
		return s.snapshot(s.controller.PointerCancel(ev.PointerID)), nil
	case EventLostCapture:
		return s.snapshot(s.controller.LostCapture(ev.PointerID)), nil
	case EventStop:
		return s.snapshot(s.controller.Stop()), nil
	case EventPan:
		s.panel.SetPan(ev.Value)
	case EventTilt:
		s.panel.SetTilt(ev.Value)
	case EventWaist:
		s.panel.SetWaist(ev.Value)
	case EventSay:
		s.panel.Say(ev.PhraseID)
	case EventUnload:
		s.Close()
	default:
		return s.State(), fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return s.State(), nil
}

// Close tears the page down: pending slider sends are dropped and a stop
// beacon is sent. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.panel.Close()
	s.controller.Teardown()
}

func (s *Session) geometryFor(r *Rect) (joystick.Geometry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r != nil {
		// The widget must be larger than the knob or travel is zero.
		if r.Width/2 <= s.knobRadius {
			return joystick.Geometry{}, fmt.Errorf("joystick rect %.0fx%.0f too small for knob radius %.0f", r.Width, r.Height, s.knobRadius)
		}
		g := joystick.GeometryFromRect(r.Left, r.Top, r.Width, r.Height, s.knobRadius)
		s.geometry = &g
	}
	if s.geometry == nil {
		return joystick.Geometry{}, ErrMissingRect
	}
	return *s.geometry, nil
}

func (s *Session) snapshot(js joystick.State) SessionState {
	st := SessionState{
		Type:      "state",
		SessionID: s.id,
		Joystick:  js,
		Sliders:   s.panel.State(),
	}
	s.mu.Lock()
	if s.geometry != nil {
		x, y := joystick.KnobPosition(js.Display, *s.geometry)
		st.Knob = &Knob{X: x, Y: y}
	}
	s.mu.Unlock()
	return st
}
