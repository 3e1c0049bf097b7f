// Package cmd implements the pulse-filter command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sweeney/pulse-filter/internal/config"
	"github.com/sweeney/pulse-filter/internal/gpio"
	"github.com/sweeney/pulse-filter/internal/observability"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=...".
var Version = "dev"

// app carries state shared by subcommands after flag parsing.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     config.Config
	log     *zap.Logger
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"chip":         "gpio.chip",
	"input-pin":    "gpio.input_pin",
	"output-pin":   "gpio.output_pin",
	"led-pin":      "gpio.led_pin",
	"pull-up":      "gpio.pull_up",
	"active-low":   "gpio.active_low",
	"event-buffer": "gpio.event_buffer",
	"threshold":    "threshold",
	"queue-size":   "queue_size",
	"lock-memory":  "lock_memory",
	"broker":       "mqtt.broker",
	"name":         "mqtt.name",
	"heartbeat":    "mqtt.heartbeat",
	"http":         "http",
	"refresh":      "refresh",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pulse-filter",
		Short: "Reproduce a GPIO input on an output, dropping pulses shorter than a threshold",
		Long: `pulse-filter watches one GPIO input line and mirrors it on an output line.
A high pulse reaches the output only if it lasts at least the threshold; its
rising edge is delayed by the threshold and its falling edge is passed through
immediately.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Flags())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	pf.String("chip", gpio.DefaultChip, "GPIO chip name")
	pf.Int("input-pin", gpio.DefaultPinInput, "input line offset")
	pf.Int("output-pin", gpio.DefaultPinOutput, "output line offset")
	pf.Int("led-pin", gpio.DefaultPinLED, "indicator LED line offset (-1 to disable)")
	pf.Bool("pull-up", true, "enable the input pull-up")
	pf.Bool("active-low", false, "treat a low input voltage as HIGH")
	pf.Int("event-buffer", 0, "kernel edge event buffer size (0 = kernel default)")
	pf.Duration("threshold", config.DefaultThreshold, "minimum qualifying pulse width")
	pf.Int("queue-size", 1024, "notification queue capacity")
	pf.Bool("lock-memory", false, "lock process memory to avoid page-fault latency")
	pf.String("broker", "", "MQTT broker address (empty to disable)")
	pf.String("name", "default", "daemon name used in MQTT topics")
	pf.Duration("heartbeat", config.DefaultHeartbeat, "heartbeat interval (0 to disable)")
	pf.String("http", ":8080", "HTTP status address (empty to disable)")
	pf.Duration("refresh", config.DefaultRefresh, "status refresh interval")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, console)")

	root.AddCommand(
		newRunCmd(a),
		newStateCmd(a),
		newSimulateCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init(flags *pflag.FlagSet) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.v = v
	a.cfg = cfg
	a.log = logger
	return nil
}
