// Package config loads daemon configuration from defaults, an optional YAML
// file, PULSEFILTER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sweeney/pulse-filter/internal/gpio"
)

// EnvPrefix is the prefix for environment overrides, e.g. PULSEFILTER_THRESHOLD.
const EnvPrefix = "PULSEFILTER"

// DefaultThreshold is the minimum qualifying pulse width of the original board.
const DefaultThreshold = 53 * time.Microsecond

// Other defaults shared with the command-line flags.
const (
	DefaultHeartbeat = 15 * time.Minute
	DefaultRefresh   = time.Second
)

// Config is the daemon configuration. The threshold is read once at startup.
type Config struct {
	GPIO      GPIOConfig    `mapstructure:"gpio" yaml:"gpio"`
	Threshold time.Duration `mapstructure:"threshold" yaml:"threshold"`
	QueueSize int           `mapstructure:"queue_size" yaml:"queue_size"`
	// LockMemory pins the process in RAM to avoid page-fault latency.
	LockMemory bool          `mapstructure:"lock_memory" yaml:"lock_memory"`
	MQTT       MQTTConfig    `mapstructure:"mqtt" yaml:"mqtt"`
	HTTPAddr   string        `mapstructure:"http" yaml:"http"`
	Refresh    time.Duration `mapstructure:"refresh" yaml:"refresh"`
	Log        LogConfig     `mapstructure:"log" yaml:"log"`
}

// GPIOConfig selects the lines.
type GPIOConfig struct {
	Chip        string `mapstructure:"chip" yaml:"chip"`
	InputPin    int    `mapstructure:"input_pin" yaml:"input_pin"`
	OutputPin   int    `mapstructure:"output_pin" yaml:"output_pin"`
	LEDPin      int    `mapstructure:"led_pin" yaml:"led_pin"`
	PullUp      bool   `mapstructure:"pull_up" yaml:"pull_up"`
	ActiveLow   bool   `mapstructure:"active_low" yaml:"active_low"`
	EventBuffer int    `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// MQTTConfig configures system event publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker    string        `mapstructure:"broker" yaml:"broker"`
	Name      string        `mapstructure:"name" yaml:"name"`
	Heartbeat time.Duration `mapstructure:"heartbeat" yaml:"heartbeat"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("gpio.chip", gpio.DefaultChip)
	v.SetDefault("gpio.input_pin", gpio.DefaultPinInput)
	v.SetDefault("gpio.output_pin", gpio.DefaultPinOutput)
	v.SetDefault("gpio.led_pin", gpio.DefaultPinLED)
	v.SetDefault("gpio.pull_up", true)
	v.SetDefault("gpio.active_low", false)
	v.SetDefault("gpio.event_buffer", 0)
	v.SetDefault("threshold", DefaultThreshold)
	v.SetDefault("queue_size", 1024)
	v.SetDefault("lock_memory", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.name", "default")
	v.SetDefault("mqtt.heartbeat", DefaultHeartbeat)
	v.SetDefault("http", ":8080")
	v.SetDefault("refresh", DefaultRefresh)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// NewViper returns a viper instance with defaults and environment binding.
// If file is not empty it is read as the config file.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("threshold must be positive, got %v", c.Threshold))
	}
	if c.GPIO.Chip == "" {
		errs = append(errs, errors.New("gpio.chip must be set"))
	}
	if c.GPIO.InputPin < 0 {
		errs = append(errs, fmt.Errorf("gpio.input_pin must be >= 0, got %d", c.GPIO.InputPin))
	}
	if c.GPIO.OutputPin < 0 {
		errs = append(errs, fmt.Errorf("gpio.output_pin must be >= 0, got %d", c.GPIO.OutputPin))
	}
	if c.GPIO.InputPin == c.GPIO.OutputPin {
		errs = append(errs, fmt.Errorf("gpio.input_pin and gpio.output_pin are both %d", c.GPIO.InputPin))
	}
	if c.LEDEnabled() && (c.GPIO.LEDPin == c.GPIO.InputPin || c.GPIO.LEDPin == c.GPIO.OutputPin) {
		errs = append(errs, fmt.Errorf("gpio.led_pin %d is already in use", c.GPIO.LEDPin))
	}
	if c.GPIO.EventBuffer < 0 {
		errs = append(errs, fmt.Errorf("gpio.event_buffer must be >= 0, got %d", c.GPIO.EventBuffer))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue_size must be positive, got %d", c.QueueSize))
	}
	if c.Refresh <= 0 {
		errs = append(errs, fmt.Errorf("refresh must be positive, got %v", c.Refresh))
	}
	if c.MQTT.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("mqtt.heartbeat must be >= 0, got %v", c.MQTT.Heartbeat))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// LEDEnabled reports whether an indicator LED line is configured.
func (c Config) LEDEnabled() bool {
	return c.GPIO.LEDPin != gpio.PinDisabled
}

// InputOptions returns the input line options.
func (c Config) InputOptions() gpio.InputOptions {
	return gpio.InputOptions{
		PullUp:     c.GPIO.PullUp,
		ActiveLow:  c.GPIO.ActiveLow,
		BufferSize: c.GPIO.EventBuffer,
	}
}

// MarshalYAML renders durations in time.Duration syntax rather than
// nanoseconds so that the output can be fed back as a config file.
func (c Config) MarshalYAML() (any, error) {
	return map[string]any{
		"gpio": map[string]any{
			"chip":         c.GPIO.Chip,
			"input_pin":    c.GPIO.InputPin,
			"output_pin":   c.GPIO.OutputPin,
			"led_pin":      c.GPIO.LEDPin,
			"pull_up":      c.GPIO.PullUp,
			"active_low":   c.GPIO.ActiveLow,
			"event_buffer": c.GPIO.EventBuffer,
		},
		"threshold":   c.Threshold.String(),
		"queue_size":  c.QueueSize,
		"lock_memory": c.LockMemory,
		"mqtt": map[string]any{
			"broker":    c.MQTT.Broker,
			"name":      c.MQTT.Name,
			"heartbeat": c.MQTT.Heartbeat.String(),
		},
		"http":    c.HTTPAddr,
		"refresh": c.Refresh.String(),
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
	}, nil
}
