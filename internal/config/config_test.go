package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/pulse-filter/internal/gpio"
)

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, gpio.DefaultChip, cfg.GPIO.Chip)
	assert.Equal(t, gpio.DefaultPinInput, cfg.GPIO.InputPin)
	assert.Equal(t, gpio.DefaultPinOutput, cfg.GPIO.OutputPin)
	assert.Equal(t, gpio.DefaultPinLED, cfg.GPIO.LEDPin)
	assert.True(t, cfg.GPIO.PullUp)
	assert.True(t, cfg.LEDEnabled())
	assert.Equal(t, 15*time.Minute, cfg.MQTT.Heartbeat)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PULSEFILTER_THRESHOLD", "120us")
	t.Setenv("PULSEFILTER_GPIO_INPUT_PIN", "5")
	t.Setenv("PULSEFILTER_GPIO_LED_PIN", "-1")
	t.Setenv("PULSEFILTER_MQTT_BROKER", "tcp://broker:1883")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 120*time.Microsecond, cfg.Threshold)
	assert.Equal(t, 5, cfg.GPIO.InputPin)
	assert.False(t, cfg.LEDEnabled())
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse-filter.yaml")
	content := `
threshold: 80us
gpio:
  chip: gpiochip4
  input_pin: 2
  output_pin: 3
  led_pin: -1
  active_low: true
mqtt:
  broker: tcp://10.0.0.1:1883
  name: bench
  heartbeat: 1m
log:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 80*time.Microsecond, cfg.Threshold)
	assert.Equal(t, "gpiochip4", cfg.GPIO.Chip)
	assert.Equal(t, 2, cfg.GPIO.InputPin)
	assert.Equal(t, 3, cfg.GPIO.OutputPin)
	assert.True(t, cfg.GPIO.ActiveLow)
	assert.True(t, cfg.GPIO.PullUp, "unset keys keep defaults")
	assert.Equal(t, "bench", cfg.MQTT.Name)
	assert.Equal(t, time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, "console", cfg.Log.Format)

	opts := cfg.InputOptions()
	assert.True(t, opts.ActiveLow)
	assert.True(t, opts.PullUp)
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Threshold = 0 }},
		{"negative threshold", func(c *Config) { c.Threshold = -time.Microsecond }},
		{"empty chip", func(c *Config) { c.GPIO.Chip = "" }},
		{"negative input", func(c *Config) { c.GPIO.InputPin = -2 }},
		{"negative output", func(c *Config) { c.GPIO.OutputPin = -2 }},
		{"input equals output", func(c *Config) { c.GPIO.OutputPin = c.GPIO.InputPin }},
		{"led on output", func(c *Config) { c.GPIO.LEDPin = c.GPIO.OutputPin }},
		{"negative event buffer", func(c *Config) { c.GPIO.EventBuffer = -1 }},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }},
		{"zero refresh", func(c *Config) { c.Refresh = 0 }},
		{"negative heartbeat", func(c *Config) { c.MQTT.Heartbeat = -time.Second }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateLEDDisabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.GPIO.LEDPin = gpio.PinDisabled
	assert.NoError(t, cfg.Validate())
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	cfg := validConfig(t)
	cfg.Threshold = 75 * time.Microsecond
	cfg.MQTT.Broker = "tcp://broker:1883"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
