package config

import "time"

// ConsoleConfig is the configuration of the operator console.
type ConsoleConfig struct {
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Robot    RobotLink      `yaml:"robot" json:"robot"`
	Joystick JoystickConfig `yaml:"joystick" json:"joystick"`
	Panel    PanelConfig    `yaml:"panel" json:"panel"`
	Dispatch DispatchConfig `yaml:"dispatch" json:"dispatch"`
	Gamepad  GamepadConfig  `yaml:"gamepad" json:"gamepad"`
}

// RobotLink locates the robot daemon's HTTP API.
type RobotLink struct {
	BaseURL          string `yaml:"base_url" json:"base_url"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms" json:"request_timeout_ms"`
	// Mock logs requests instead of sending them.
	Mock bool `yaml:"mock" json:"mock"`
}

// RequestTimeout returns the per-request timeout; zero means none.
func (r RobotLink) RequestTimeout() time.Duration {
	return time.Duration(r.RequestTimeoutMs) * time.Millisecond
}

// JoystickConfig holds the joystick mapping. The inversion flags exist for
// robots wired backwards.
type JoystickConfig struct {
	InvertTurn    bool    `yaml:"invert_turn" json:"invertTurn"`
	InvertForward bool    `yaml:"invert_forward" json:"invertForward"`
	KnobRadius    float64 `yaml:"knob_radius" json:"knobRadius"`
	SendHz        int     `yaml:"send_hz" json:"sendHz"`
}

// PanelConfig holds slider settings.
type PanelConfig struct {
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns the slider quiet period.
func (p PanelConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// DispatchConfig sizes the request worker pools.
type DispatchConfig struct {
	HighPriorityWorkers     int `yaml:"high_priority_workers" json:"high_priority_workers"`
	StandardPriorityWorkers int `yaml:"standard_priority_workers" json:"standard_priority_workers"`
	QueueSize               int `yaml:"queue_size" json:"queue_size"`
}

// GamepadConfig enables a physical gamepad as a second joystick.
type GamepadConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	Index         int  `yaml:"index" json:"index"`
	DeadmanButton int  `yaml:"deadman_button" json:"deadman_button"`
	PollHz        int  `yaml:"poll_hz" json:"poll_hz"`
}

// DefaultConsoleConfig returns the values used for omitted keys.
func DefaultConsoleConfig() *ConsoleConfig {
	return &ConsoleConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{HTTPPort: 8080},
		Robot: RobotLink{
			RequestTimeoutMs: 2000,
		},
		Joystick: JoystickConfig{
			InvertTurn:    true,
			InvertForward: true,
			KnobRadius:    33,
			SendHz:        20,
		},
		Panel: PanelConfig{DebounceMs: 60},
		Dispatch: DispatchConfig{
			HighPriorityWorkers:     2,
			StandardPriorityWorkers: 4,
			QueueSize:               32,
		},
		Gamepad: GamepadConfig{
			DeadmanButton: 0,
			PollHz:        50,
		},
	}
}

// LoadConsoleConfig loads and validates the console configuration.
func LoadConsoleConfig(path string, overrides ...func(*ConsoleConfig)) (*ConsoleConfig, error) {
	cfg := DefaultConsoleConfig()
	if err := loadYAML(path, cfg); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and ranges. source names the file in
// error messages.
func (c *ConsoleConfig) Validate(source string) error {
	if c.Robot.BaseURL == "" && !c.Robot.Mock {
		return missing(source, "robot.base_url")
	}
	if c.Server.HTTPPort <= 0 {
		return invalid(source, "server.http_port", c.Server.HTTPPort)
	}
	if c.Robot.RequestTimeoutMs < 0 {
		return invalid(source, "robot.request_timeout_ms", c.Robot.RequestTimeoutMs)
	}
	if c.Joystick.KnobRadius <= 0 {
		return invalid(source, "joystick.knob_radius", c.Joystick.KnobRadius)
	}
	if c.Joystick.SendHz < 0 {
		return invalid(source, "joystick.send_hz", c.Joystick.SendHz)
	}
	if c.Panel.DebounceMs < 0 {
		return invalid(source, "panel.debounce_ms", c.Panel.DebounceMs)
	}
	if c.Dispatch.HighPriorityWorkers < 1 {
		return invalid(source, "dispatch.high_priority_workers", c.Dispatch.HighPriorityWorkers)
	}
	if c.Dispatch.StandardPriorityWorkers < 1 {
		return invalid(source, "dispatch.standard_priority_workers", c.Dispatch.StandardPriorityWorkers)
	}
	if c.Dispatch.QueueSize < 1 {
		return invalid(source, "dispatch.queue_size", c.Dispatch.QueueSize)
	}
	if c.Gamepad.Enabled && c.Gamepad.PollHz <= 0 {
		return invalid(source, "gamepad.poll_hz", c.Gamepad.PollHz)
	}
	return nil
}
