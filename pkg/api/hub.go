package api

import (
	"sync"
	"time"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/services"
)

// Hub creates and tracks the sessions of connected control pages.
type Hub struct {
	settings services.JoystickConfigService
	live     joystick.Sender
	mock     joystick.Sender
	clock    clock.Clock
	debounce time.Duration
	logger   customlog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates a Hub. Pages asking for mock mode send through mock;
// every other page sends through live.
func NewHub(settings services.JoystickConfigService, live, mock joystick.Sender, clk clock.Clock, debounce time.Duration, logger customlog.Logger) *Hub {
	if clk == nil {
		clk = clock.Real()
	}
	return &Hub{
		settings: settings,
		live:     live,
		mock:     mock,
		clock:    clk,
		debounce: debounce,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open creates and registers a session for a new page.
func (h *Hub) Open(mock bool) *Session {
	current := h.settings.GetCurrentSettings()
	opts := SessionOptions{
		Controller: h.settings.ControllerOptions(),
		KnobRadius: current.KnobRadius,
		Debounce:   h.debounce,
	}
	sender := h.live
	if mock {
		opts.Controller.Mock = true
		sender = h.mock
	}

	s := NewSession(opts, sender, h.clock, h.logger)

	h.mu.Lock()
	h.sessions[s.ID()] = s
	n := len(h.sessions)
	h.mu.Unlock()

	h.logger.Infof("Control session %s opened (mock=%t, %d live)", s.ID(), opts.Controller.Mock, n)
	return s
}

// Release tears down s and forgets it.
func (h *Hub) Release(s *Session) {
	s.Close()

	h.mu.Lock()
	delete(h.sessions, s.ID())
	n := len(h.sessions)
	h.mu.Unlock()

	h.logger.Infof("Control session %s closed (%d live)", s.ID(), n)
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// CloseAll tears down every session, sending each page's stop beacon.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if len(sessions) > 0 {
		h.logger.Infof("Tore down %d control sessions", len(sessions))
	}
}
