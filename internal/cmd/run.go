package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/pulse-filter/internal/config"
	"github.com/sweeney/pulse-filter/internal/dispatch"
	"github.com/sweeney/pulse-filter/internal/gpio"
	"github.com/sweeney/pulse-filter/internal/mqtt"
	"github.com/sweeney/pulse-filter/internal/rt"
	"github.com/sweeney/pulse-filter/internal/status"
	"github.com/sweeney/pulse-filter/internal/web"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the filter on the configured GPIO lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a.cfg, a.log)
		},
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if cfg.LockMemory {
		if err := rt.LockMemory(); err != nil {
			return fmt.Errorf("lock memory: %w", err)
		}
		defer releaseMemory(rt.UnlockMemory, log)
		log.Info("process memory locked")
	}

	input, err := gpio.NewLineInput(cfg.GPIO.Chip, cfg.GPIO.InputPin, cfg.InputOptions())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer input.Close()

	sigOut, err := gpio.NewLineOutput(cfg.GPIO.Chip, cfg.GPIO.OutputPin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer sigOut.Close()

	outputs := gpio.Outputs{sigOut}
	if cfg.LEDEnabled() {
		led, err := gpio.NewLineOutput(cfg.GPIO.Chip, cfg.GPIO.LEDPin)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer led.Close()
		outputs = append(outputs, led)
	}

	instanceID := uuid.NewString()
	tracker := status.NewTracker(instanceID, time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	var publisher mqtt.Publisher = noopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			Name:     cfg.MQTT.Name,
			ClientID: "pulse-filter-" + cfg.MQTT.Name + "-" + instanceID[:8],
			Logger:   log,
		})
		defer p.Close()
		publisher = p
		mqttStatus = p
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", zap.String("addr", cfg.HTTPAddr))
	}

	loop := dispatch.NewLoop(input, outputs, cfg.Threshold,
		dispatch.WithLogger(log),
		dispatch.WithQueueSize(cfg.QueueSize))
	if err := input.Watch(loop.Edge); err != nil {
		return fmt.Errorf("watch input: %w", err)
	}

	log.Info("started",
		zap.String("instance", instanceID),
		zap.Duration("threshold", cfg.Threshold),
		zap.String("chip", cfg.GPIO.Chip),
		zap.Int("input", cfg.GPIO.InputPin),
		zap.Int("output", cfg.GPIO.OutputPin),
		zap.Int("led", cfg.GPIO.LEDPin))

	refresh := time.NewTicker(cfg.Refresh)
	defer refresh.Stop()

	var heartbeat <-chan time.Time
	if cfg.MQTT.Heartbeat > 0 {
		hb := time.NewTicker(cfg.MQTT.Heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(loop, runDeps{
		missed:     input.MissedEdges,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		log:        log,
		now:        time.Now,
		refresh:    refresh.C,
		heartbeat:  heartbeat,
		sig:        sigCh,
	})
}

func releaseMemory(unlock func() error, log *zap.Logger) {
	if err := unlock(); err != nil {
		log.Warn("failed to unlock memory", zap.Error(err))
	}
}

// runDeps are the collaborators of runLoop, injectable for tests.
type runDeps struct {
	missed     func() uint64
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	log        *zap.Logger
	now        func() time.Time
	refresh    <-chan time.Time
	heartbeat  <-chan time.Time // nil disables heartbeats
	sig        <-chan os.Signal
}

// runLoop runs the filter loop until a signal arrives, publishing lifecycle
// events and refreshing the status tracker in between.
func runLoop(loop *dispatch.Loop, d runDeps) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	d.tracker.SetRunning(true)
	refreshStatus(loop, d)
	publishStatus(d, mqtt.EventStartup, "", true)

	for {
		select {
		case s := <-d.sig:
			d.log.Info("shutting down", zap.String("signal", s.String()))
			cancel()
			<-loopErr
			d.tracker.SetRunning(false)
			refreshStatus(loop, d)
			publishStatus(d, mqtt.EventShutdown, signalName(s), true)
			return nil

		case err := <-loopErr:
			d.tracker.SetRunning(false)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("filter loop: %w", err)

		case <-d.refresh:
			refreshStatus(loop, d)

		case <-d.heartbeat:
			refreshStatus(loop, d)
			if net := readNetworkInfo(); net != nil {
				d.tracker.SetNetwork(net)
			}
			st := loop.Stats()
			d.log.Info("heartbeat",
				zap.String("state", string(st.State)),
				zap.Int("qualified", st.Counts.Qualified),
				zap.Int("suppressed", st.Counts.Suppressed))
			publishStatus(d, mqtt.EventHeartbeat, "", false)
		}
	}
}

func refreshStatus(loop *dispatch.Loop, d runDeps) {
	var missed uint64
	if d.missed != nil {
		missed = d.missed()
	}
	d.tracker.Update(loop.Stats(), missed)
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func publishStatus(d runDeps, event, reason string, retained bool) {
	snap := d.tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  d.now(),
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := d.publisher.PublishSystem(ev); err != nil {
		d.log.Warn("failed to publish system event", zap.String("event", event), zap.Error(err))
		return
	}
	d.log.Debug("published system event", zap.String("event", event))
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		Chip:        cfg.GPIO.Chip,
		InputPin:    cfg.GPIO.InputPin,
		OutputPin:   cfg.GPIO.OutputPin,
		LEDPin:      cfg.GPIO.LEDPin,
		Threshold:   cfg.Threshold,
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	}
}

// noopPublisher is used when no broker is configured.
type noopPublisher struct{}

func (noopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (noopPublisher) Close() error                         { return nil }
