package config

import "time"

// RobotConfig is the configuration of the robot daemon.
type RobotConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Watchdog  WatchdogConfig  `yaml:"watchdog"`
	Phrases   map[int]string  `yaml:"phrases"`
	Actuators ActuatorsConfig `yaml:"actuators"`
}

// WatchdogConfig controls the stop-on-silence watchdog.
type WatchdogConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
	PeriodMs  int `yaml:"period_ms"`
}

// Timeout returns the command age that triggers a stop.
func (w WatchdogConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutMs) * time.Millisecond
}

// Period returns how often the command age is checked.
func (w WatchdogConfig) Period() time.Duration {
	return time.Duration(w.PeriodMs) * time.Millisecond
}

// ActuatorsConfig selects where applied commands go.
type ActuatorsConfig struct {
	Log    bool                 `yaml:"log"`
	ZeroMQ ZeroMQActuatorConfig `yaml:"zeromq"`
	MQTT   MQTTActuatorConfig   `yaml:"mqtt"`
}

// ZeroMQActuatorConfig configures the PUB socket bridges subscribe to.
type ZeroMQActuatorConfig struct {
	Enabled            bool   `yaml:"enabled"`
	PublishBindAddress string `yaml:"publish_bind_address"`
}

// MQTTActuatorConfig configures the MQTT mirror.
type MQTTActuatorConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
}

// DefaultRobotConfig returns the values used for omitted keys.
func DefaultRobotConfig() *RobotConfig {
	return &RobotConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{HTTPPort: 5000},
		Watchdog: WatchdogConfig{
			TimeoutMs: 600,
			PeriodMs:  100,
		},
		Actuators: ActuatorsConfig{
			Log: true,
			MQTT: MQTTActuatorConfig{
				ClientID:    "robotd",
				TopicPrefix: "robot/actuators",
			},
		},
	}
}

// LoadRobotConfig loads and validates the robot daemon configuration.
func LoadRobotConfig(path string, overrides ...func(*RobotConfig)) (*RobotConfig, error) {
	cfg := DefaultRobotConfig()
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
func (c *RobotConfig) Validate(source string) error {
	if c.Server.HTTPPort <= 0 {
		return invalid(source, "server.http_port", c.Server.HTTPPort)
	}
	if c.Watchdog.TimeoutMs <= 0 {
		return invalid(source, "watchdog.timeout_ms", c.Watchdog.TimeoutMs)
	}
	if c.Watchdog.PeriodMs <= 0 {
		return invalid(source, "watchdog.period_ms", c.Watchdog.PeriodMs)
	}
	if c.Actuators.ZeroMQ.Enabled && c.Actuators.ZeroMQ.PublishBindAddress == "" {
		return missing(source, "actuators.zeromq.publish_bind_address")
	}
	if c.Actuators.MQTT.Enabled {
		if c.Actuators.MQTT.Broker == "" {
			return missing(source, "actuators.mqtt.broker")
		}
		if c.Actuators.MQTT.QoS < 0 || c.Actuators.MQTT.QoS > 2 {
			return invalid(source, "actuators.mqtt.qos", c.Actuators.MQTT.QoS)
		}
	}
	return nil
}
