package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DefaultBufferSize is the number of lifecycle messages kept while the broker
// is unreachable.
const DefaultBufferSize = 32

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	Name       string // daemon name, used in the topic
	ClientID   string
	BufferSize int
	Logger     *zap.Logger
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed after the next connect.
type RealPublisher struct {
	client paho.Client
	topic  string
	log    *zap.Logger

	mu        sync.Mutex
	buf       *ringBuffer
	connected bool // a connection has been established at least once
}

// NewRealPublisher creates a publisher for the given broker. It does not fail
// if the broker is unreachable; the client keeps retrying in the background.
func NewRealPublisher(o Options) *RealPublisher {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}

	p := &RealPublisher{
		topic: SystemTopic(o.Name),
		log:   o.Logger,
		buf:   newRingBuffer(o.BufferSize, o.Logger),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     EventShutdown,
		Reason:    ReasonDisconnect,
	})

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(p.topic, will, 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warn("mqtt connection lost", zap.Error(err))
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		p.log.Warn("mqtt broker not reachable yet, buffering", zap.String("broker", o.Broker))
	} else if err := token.Error(); err != nil {
		p.log.Warn("mqtt connect failed, retrying", zap.String("broker", o.Broker), zap.Error(err))
	}
	return p
}

// onConnect runs on paho's goroutine after every successful connect.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	pending := p.buf.drainAll()
	p.mu.Unlock()

	p.log.Info("mqtt connected", zap.Bool("reconnect", reconnect), zap.Int("buffered", len(pending)))

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
		if err := p.publish(bufferedMsg{topic: p.topic, payload: payload, qos: 1}); err != nil {
			p.log.Warn("publish reconnected event", zap.Error(err))
		}
	}
	for _, msg := range pending {
		if err := p.publish(msg); err != nil {
			p.log.Warn("replay buffered message", zap.Error(err))
		}
	}
}

// PublishSystem sends a system lifecycle event to the MQTT broker, or buffers
// it if the client is not connected.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	msg := bufferedMsg{topic: p.topic, payload: payload, qos: 1, retained: event.Retained}

	// The check and the push share p.mu with onConnect's drain, so a message
	// buffered here is replayed by the connect that makes the client open.
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
