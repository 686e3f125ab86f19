package robot

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// ErrUnknownPhrase is returned by Say for ids missing from the phrase table.
var ErrUnknownPhrase = errors.New("unknown phraseId")

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Phrases         map[int]string
	WatchdogTimeout time.Duration
	WatchdogPeriod  time.Duration
	Clock           clock.Clock
}

// Status summarizes the daemon for the status endpoint.
type Status struct {
	LastCommand     time.Time `json:"lastCommand"`
	WatchdogTripped bool      `json:"watchdogTripped"`
	WatchdogTrips   int       `json:"watchdogTrips"`
	Phrases         []int     `json:"phrases"`
}

// Service clamps incoming commands, applies them and feeds the watchdog.
type Service struct {
	actuators Actuators
	phrases   *Phrases
	watchdog  *Watchdog
	logger    customlog.Logger
}

// NewService creates a Service over actuators.
func NewService(actuators Actuators, opts ServiceOptions, logger customlog.Logger) *Service {
	s := &Service{
		actuators: actuators,
		phrases:   NewPhrases(opts.Phrases),
		logger:    logger,
	}
	s.watchdog = NewWatchdog(opts.Clock, opts.WatchdogTimeout, opts.WatchdogPeriod, s.expire, logger)
	return s
}

// Start stops the actuators for a known initial state and starts the watchdog.
func (s *Service) Start() error {
	if err := s.actuators.Stop(); err != nil {
		return fmt.Errorf("initial stop: %w", err)
	}
	s.watchdog.Start()
	return nil
}

// Shutdown stops the watchdog and leaves the actuators stopped.
func (s *Service) Shutdown() error {
	s.watchdog.Stop()
	if err := s.actuators.Stop(); err != nil {
		return fmt.Errorf("final stop: %w", err)
	}
	return nil
}

// Drive clamps and applies wheel powers and returns the applied values.
func (s *Service) Drive(l, r float64) (float64, float64, error) {
	l = clamp(l, -1, 1)
	r = clamp(r, -1, 1)
	if err := s.actuators.Drive(l, r); err != nil {
		return l, r, err
	}
	s.watchdog.Feed()
	return l, r, nil
}

// HeadPan clamps and applies the head pan target.
func (s *Service) HeadPan(pan float64) (float64, error) {
	pan = clamp(pan, 0, 1)
	return pan, s.actuators.HeadPan(pan)
}

// HeadTilt clamps and applies the head tilt target.
func (s *Service) HeadTilt(tilt float64) (float64, error) {
	tilt = clamp(tilt, 0, 1)
	return tilt, s.actuators.HeadTilt(tilt)
}

// Waist clamps and applies the waist target.
func (s *Service) Waist(pos float64) (float64, error) {
	pos = clamp(pos, 0, 1)
	return pos, s.actuators.Waist(pos)
}

// Say speaks a canned phrase.
func (s *Service) Say(phraseID int) error {
	text, ok := s.phrases.Lookup(phraseID)
	if !ok {
		return ErrUnknownPhrase
	}
	return s.actuators.Say(phraseID, text)
}

// Stop stops the wheels. It counts as a command for the watchdog.
func (s *Service) Stop() error {
	err := s.actuators.Stop()
	s.watchdog.Feed()
	return err
}

// Status returns the watchdog state and known phrases.
func (s *Service) Status() Status {
	return Status{
		LastCommand:     s.watchdog.LastFeed(),
		WatchdogTripped: s.watchdog.Tripped(),
		WatchdogTrips:   s.watchdog.Trips(),
		Phrases:         s.phrases.IDs(),
	}
}

func (s *Service) expire() {
	if err := s.actuators.Stop(); err != nil {
		s.logger.Errorf("Watchdog stop failed: %v", err)
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
