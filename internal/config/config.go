// Package config loads the controller configuration from configs/config.yml
// and GREENHOUSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"greenhouse/internal/pump"
)

const (
	HardwareSerial    = "serial"
	HardwareSimulated = "simulated"
	SoilMQTT          = "mqtt"
	SoilSimulated     = "simulated"

	MaxPumps = 5
)

type Config struct {
	LogLevel        string        `mapstructure:"log_level"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	DB           DBConfig       `mapstructure:"db"`
	Auth         AuthConfig     `mapstructure:"auth"`
	Hardware     HardwareConfig `mapstructure:"hardware"`
	Soil         SoilConfig     `mapstructure:"soil"`
	Polling      PollingConfig  `mapstructure:"polling"`
	Pumps        []PumpConfig   `mapstructure:"pumps"`
	ManualMaxML  float64        `mapstructure:"manual_max_ml"`
	SleepWindows []string       `mapstructure:"sleep_windows"`
	Camera       CameraConfig   `mapstructure:"camera"`
	MQTT         MQTTConfig     `mapstructure:"mqtt"`
	Influx       InfluxConfig   `mapstructure:"influx"`
	Breaker      BreakerConfig  `mapstructure:"breaker"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	Salt       string        `mapstructure:"salt"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type HardwareConfig struct {
	Mode       string           `mapstructure:"mode"`
	Serial     SerialConfig     `mapstructure:"serial"`
	Controller ControllerConfig `mapstructure:"controller"`
	Relay      RelayConfig      `mapstructure:"relay"`
}

type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

type ControllerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Freshness      time.Duration `mapstructure:"freshness"`
}

// RelayConfig switches pumps through GPIO relays instead of the controller.
type RelayConfig struct {
	Enabled   bool       `mapstructure:"enabled"`
	Chip      string     `mapstructure:"chip"`
	ActiveLow bool       `mapstructure:"active_low"`
	Pins      []RelayPin `mapstructure:"pins"`
}

type RelayPin struct {
	Pump int `mapstructure:"pump"`
	Line int `mapstructure:"line"`
}

type SoilConfig struct {
	Source          string        `mapstructure:"source"`
	Topic           string        `mapstructure:"topic"`
	MaxAge          time.Duration `mapstructure:"max_age"`
	Freshness       time.Duration `mapstructure:"freshness"`
	LightMax        float64       `mapstructure:"light_max"`
	InitialMoisture float64       `mapstructure:"initial_moisture"`
}

type PollingConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	PhotoInterval time.Duration `mapstructure:"photo_interval"`
}

type PumpConfig struct {
	ID                int           `mapstructure:"id"`
	AmountML          float64       `mapstructure:"amount_ml"`
	RateMLPerMin      float64       `mapstructure:"rate_ml_per_min"`
	Interval          time.Duration `mapstructure:"interval"`
	MoistureThreshold float64       `mapstructure:"moisture_threshold"`
	Exclusive         bool          `mapstructure:"exclusive"`
}

// RateMLPerSec converts the configured rate.
func (p PumpConfig) RateMLPerSec() float64 { return p.RateMLPerMin / 60 }

type CameraConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	ImageDir string   `mapstructure:"image_dir"`
	MinLight float64  `mapstructure:"min_light"`
	Command  string   `mapstructure:"command"`
	Args     []string `mapstructure:"args"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         byte   `mapstructure:"qos"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

type BreakerConfig struct {
	Failures uint32        `mapstructure:"failures"`
	OpenFor  time.Duration `mapstructure:"open_for"`
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8080")
	v.SetDefault("shutdown_timeout", "30s")
	v.SetDefault("db.path", "greenhouse.db")
	v.SetDefault("auth.token_ttl", "12h")

	v.SetDefault("hardware.mode", HardwareSerial)
	v.SetDefault("hardware.serial.port", "/dev/ttyUSB0")
	v.SetDefault("hardware.serial.baud_rate", 115200)
	v.SetDefault("hardware.serial.poll_timeout", "50ms")
	v.SetDefault("hardware.controller.request_timeout", "120s")
	v.SetDefault("hardware.controller.poll_interval", "50ms")
	v.SetDefault("hardware.controller.freshness", "50s")
	v.SetDefault("hardware.relay.chip", "gpiochip0")

	v.SetDefault("soil.source", SoilMQTT)
	v.SetDefault("soil.topic", "miflora/greenhouse")
	v.SetDefault("soil.max_age", "30m")
	v.SetDefault("soil.freshness", "2s")
	v.SetDefault("soil.light_max", 1023)
	v.SetDefault("soil.initial_moisture", 45)

	v.SetDefault("manual_max_ml", 2000)

	v.SetDefault("polling.interval", "15m")
	v.SetDefault("polling.photo_interval", "4h")

	v.SetDefault("camera.image_dir", "images")
	v.SetDefault("camera.min_light", 20)
	v.SetDefault("camera.command", "fswebcam")

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "greenhouse")
	v.SetDefault("mqtt.topic_prefix", "greenhouse")

	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.open_for", "30s")
	v.SetDefault("breaker.interval", "60s")
}

// Load reads path, or configs/config.yml when path is empty, applies
// environment overrides and validates the result. Without an explicit path a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	v.SetEnvPrefix("GREENHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Pumps) == 0 {
		cfg.Pumps = []PumpConfig{DefaultPump(0)}
	}
	cfg.fillPumpDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPump delivers 200 mL at 500 mL/min at least once a day.
func DefaultPump(id int) PumpConfig {
	return PumpConfig{
		ID:           id,
		AmountML:     pump.DefaultAmountML,
		RateMLPerMin: pump.DefaultRateMLPerSec * 60,
		Interval:     24 * time.Hour,
	}
}

func (c *Config) fillPumpDefaults() {
	for i := range c.Pumps {
		if c.Pumps[i].RateMLPerMin == 0 {
			c.Pumps[i].RateMLPerMin = pump.DefaultRateMLPerSec * 60
		}
		if c.Pumps[i].Interval == 0 {
			c.Pumps[i].Interval = 24 * time.Hour
		}
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	switch c.Hardware.Mode {
	case HardwareSerial:
		if c.Hardware.Serial.Port == "" {
			add("hardware.serial.port is required in serial mode")
		}
	case HardwareSimulated:
	default:
		add("hardware.mode %q: want %s or %s", c.Hardware.Mode, HardwareSerial, HardwareSimulated)
	}

	switch c.Soil.Source {
	case SoilMQTT:
		if c.MQTT.Broker == "" || c.Soil.Topic == "" {
			add("soil.source mqtt needs mqtt.broker and soil.topic")
		}
	case SoilSimulated:
	default:
		add("soil.source %q: want %s or %s", c.Soil.Source, SoilMQTT, SoilSimulated)
	}

	if c.Polling.Interval <= 0 {
		add("polling.interval must be positive")
	}
	if c.Camera.Enabled && c.Polling.PhotoInterval <= 0 {
		add("polling.photo_interval must be positive when the camera is enabled")
	}

	if n := len(c.Pumps); n < 1 || n > MaxPumps {
		add("pumps: want 1 to %d, got %d", MaxPumps, n)
	}
	if c.ManualMaxML <= 0 {
		add("manual_max_ml must be positive")
	}
	seen := make(map[int]bool)
	for _, p := range c.Pumps {
		if p.ID < 0 || p.ID > 7 {
			add("pump %d: id must be 0-7", p.ID)
		}
		if seen[p.ID] {
			add("pump %d: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if p.AmountML < 0 {
			add("pump %d: amount_ml must not be negative", p.ID)
		}
		if c.ManualMaxML > 0 && p.AmountML > c.ManualMaxML {
			add("pump %d: amount_ml %v exceeds manual_max_ml %v", p.ID, p.AmountML, c.ManualMaxML)
		}
		if p.RateMLPerMin <= 0 {
			add("pump %d: rate_ml_per_min must be positive", p.ID)
		}
		if p.Interval <= 0 {
			add("pump %d: interval must be positive", p.ID)
		}
		if p.MoistureThreshold < 0 || p.MoistureThreshold > 100 {
			add("pump %d: moisture_threshold must be 0-100", p.ID)
		}
	}
	if c.Hardware.Relay.Enabled {
		for _, p := range c.Pumps {
			if !c.Hardware.Relay.hasPin(p.ID) {
				add("pump %d: no relay pin configured", p.ID)
			}
		}
	}

	if _, err := pump.ParseSleepWindows(c.SleepWindows); err != nil {
		errs = append(errs, err)
	}

	if c.Auth.SigningKey == "" {
		add("auth.signing_key is required")
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Token == "" || c.Influx.Org == "" || c.Influx.Bucket == "") {
		add("influx needs url, token, org and bucket when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (r RelayConfig) hasPin(pumpID int) bool {
	for _, p := range r.Pins {
		if p.Pump == pumpID {
			return true
		}
	}
	return false
}

// Lines maps pump IDs to GPIO line offsets.
func (r RelayConfig) Lines() map[int]int {
	out := make(map[int]int, len(r.Pins))
	for _, p := range r.Pins {
		out[p.Pump] = p.Line
	}
	return out
}
