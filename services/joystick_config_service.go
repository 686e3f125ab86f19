package services

import (
	"errors"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/jun-zaga/RobotWebControl/pkg/config"
	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidSettings marks a rejected settings update.
var ErrInvalidSettings = errors.New("invalid joystick settings")

// JoystickSettings is the joystick mapping served to control pages.
type JoystickSettings struct {
	InvertTurn    bool    `json:"invertTurn"`
	InvertForward bool    `json:"invertForward"`
	KnobRadius    float64 `json:"knobRadius"`
	SendHz        int     `json:"sendHz"`
	// Mock is fixed at startup and ignored in updates.
	Mock bool `json:"mock"`
}

// JoystickConfigService holds the live joystick settings. Updates apply to
// control pages opened afterwards.
type JoystickConfigService interface {
	GetCurrentSettings() JoystickSettings
	// UpdateSettings merges a partial JSON document into the current settings.
	UpdateSettings(patch []byte) (JoystickSettings, error)
	// ControllerOptions returns the settings as joystick controller options.
	ControllerOptions() joystick.Options
}

type joystickConfigService struct {
	logger   customlog.Logger
	settings JoystickSettings
	mu       sync.RWMutex
}

// NewJoystickConfigService seeds the service from the console configuration.
func NewJoystickConfigService(cfg *config.ConsoleConfig, logger customlog.Logger) (JoystickConfigService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("console configuration cannot be nil")
	}
	if logger == nil {
		logger = customlog.Discard()
	}

	s := &joystickConfigService{
		logger: logger,
		settings: JoystickSettings{
			InvertTurn:    cfg.Joystick.InvertTurn,
			InvertForward: cfg.Joystick.InvertForward,
			KnobRadius:    cfg.Joystick.KnobRadius,
			SendHz:        cfg.Joystick.SendHz,
			Mock:          cfg.Robot.Mock,
		},
	}
	logger.Infof("Joystick mapping: invertTurn=%t invertForward=%t sendHz=%d",
		s.settings.InvertTurn, s.settings.InvertForward, s.settings.SendHz)
	return s, nil
}

func (s *joystickConfigService) GetCurrentSettings() JoystickSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *joystickConfigService) UpdateSettings(patch []byte) (JoystickSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if err := json.Unmarshal(patch, &next); err != nil {
		return s.settings, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	next.Mock = s.settings.Mock

	// Sessions fall back to the default radius for 0, so 0 would be
	// reported but never used.
	if next.KnobRadius <= 0 {
		return s.settings, fmt.Errorf("%w: knobRadius must be positive", ErrInvalidSettings)
	}
	if next.SendHz < 0 {
		return s.settings, fmt.Errorf("%w: sendHz must not be negative", ErrInvalidSettings)
	}

	s.settings = next
	s.logger.Infof("Joystick mapping updated: invertTurn=%t invertForward=%t knobRadius=%.1f sendHz=%d",
		next.InvertTurn, next.InvertForward, next.KnobRadius, next.SendHz)
	return next, nil
}

func (s *joystickConfigService) ControllerOptions() joystick.Options {
	cur := s.GetCurrentSettings()
	return joystick.Options{
		Mapping: joystick.Mapping{
			InvertTurn:    cur.InvertTurn,
			InvertForward: cur.InvertForward,
		},
		SendHz: cur.SendHz,
		Mock:   cur.Mock,
	}
}
