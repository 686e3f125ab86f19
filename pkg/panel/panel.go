// Package panel implements the auxiliary controls next to the joystick:
// head and waist sliders with debounced dispatch and canned voice phrases.
package panel

import (
	"strconv"
	"sync"
	"time"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

// DefaultDebounce is the quiet period before a slider value is sent.
const DefaultDebounce = 60 * time.Millisecond

// DefaultPosition is the initial position of every slider.
const DefaultPosition = 0.5

// Sliders is what the slider labels show. Labels refresh when the value
// is sent, not on every input.
type Sliders struct {
	Pan       float64 `json:"pan"`
	Tilt      float64 `json:"tilt"`
	Waist     float64 `json:"waist"`
	PanText   string  `json:"panText"`
	TiltText  string  `json:"tiltText"`
	WaistText string  `json:"waistText"`
}

// Panel owns the slider values of one control page.
type Panel struct {
	mu     sync.Mutex
	sender joystick.Sender
	logger customlog.Logger
	head   *Debouncer
	waist  *Debouncer
	state  Sliders
	closed bool
	onSend func(Sliders)
}

// New creates a Panel with every slider at DefaultPosition. A zero debounce
// uses DefaultDebounce.
func New(sender joystick.Sender, clk clock.Clock, debounce time.Duration, logger customlog.Logger) *Panel {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = customlog.Discard()
	}
	p := &Panel{
		sender: sender,
		logger: logger,
		head:   NewDebouncer(clk, debounce),
		waist:  NewDebouncer(clk, debounce),
		state: Sliders{
			Pan:   DefaultPosition,
			Tilt:  DefaultPosition,
			Waist: DefaultPosition,
		},
	}
	p.refreshLabels()
	return p
}

// State returns the current slider snapshot.
func (p *Panel) State() Sliders {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetPan records the pan slider. Pan and tilt share one debounced head
// command carrying both values.
func (p *Panel) SetPan(v float64) {
	if !p.set(&p.state.Pan, v) {
		return
	}
	p.head.Trigger(p.sendHead)
}

// SetTilt records the tilt slider.
func (p *Panel) SetTilt(v float64) {
	if !p.set(&p.state.Tilt, v) {
		return
	}
	p.head.Trigger(p.sendHead)
}

// SetWaist records the waist slider.
func (p *Panel) SetWaist(v float64) {
	if !p.set(&p.state.Waist, v) {
		return
	}
	p.waist.Trigger(p.sendWaist)
}

// Say requests a canned phrase immediately.
func (p *Panel) Say(phraseID int) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.sender.Send(transport.EndpointSay, transport.SayBody{PhraseID: phraseID})
}

// OnSend registers fn to be called with the refreshed labels after each
// debounced slider send.
func (p *Panel) OnSend(fn func(Sliders)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSend = fn
}

// Close cancels pending slider sends; later input is ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.head.Cancel()
	p.waist.Cancel()
}

func (p *Panel) set(field *float64, v float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	*field = v
	return true
}

func (p *Panel) sendHead() {
	p.mu.Lock()
	body := transport.HeadBody{Pan: p.state.Pan, Tilt: p.state.Tilt}
	p.refreshLabels()
	p.mu.Unlock()

	p.logger.Debugf("head pan=%.2f tilt=%.2f", body.Pan, body.Tilt)
	p.sender.Send(transport.EndpointHead, body)
	p.notify()
}

func (p *Panel) sendWaist() {
	p.mu.Lock()
	body := transport.WaistBody{Pos: p.state.Waist}
	p.refreshLabels()
	p.mu.Unlock()

	p.logger.Debugf("waist pos=%.2f", body.Pos)
	p.sender.Send(transport.EndpointWaist, body)
	p.notify()
}

func (p *Panel) notify() {
	p.mu.Lock()
	fn, state := p.onSend, p.state
	p.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

// refreshLabels must be called with p.mu held.
func (p *Panel) refreshLabels() {
	p.state.PanText = strconv.FormatFloat(p.state.Pan, 'f', 2, 64)
	p.state.TiltText = strconv.FormatFloat(p.state.Tilt, 'f', 2, 64)
	p.state.WaistText = strconv.FormatFloat(p.state.Waist, 'f', 2, 64)
}
