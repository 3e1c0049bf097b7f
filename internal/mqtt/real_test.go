package mqtt

import (
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubClient overrides the paho.Client methods RealPublisher uses.
type stubClient struct {
	paho.Client

	mu        sync.Mutex
	open      bool
	onCheck   func() // runs once, inside the first IsConnectionOpen call
	published [][]byte
}

func (c *stubClient) IsConnectionOpen() bool {
	c.mu.Lock()
	open, hook := c.open, c.onCheck
	c.onCheck = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return open
}

func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, payload.([]byte))
	c.mu.Unlock()
	return doneToken{}
}

func (c *stubClient) Published() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func newTestPublisher(c *stubClient) *RealPublisher {
	return &RealPublisher{
		client: c,
		topic:  SystemTopic("test"),
		log:    zap.NewNop(),
		buf:    newRingBuffer(DefaultBufferSize, zap.NewNop()),
	}
}

func TestPublishSystemConnectedPublishesDirectly(t *testing.T) {
	c := &stubClient{open: true}
	p := newTestPublisher(c)

	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: EventHeartbeat}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Published() != 1 || p.buf.len() != 0 {
		t.Errorf("expected direct publish, got published=%d buffered=%d", c.Published(), p.buf.len())
	}
}

func TestPublishSystemDisconnectedBuffersUntilConnect(t *testing.T) {
	c := &stubClient{}
	p := newTestPublisher(c)

	p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: EventStartup, Retained: true})
	if c.Published() != 0 || p.buf.len() != 1 {
		t.Fatalf("expected message buffered, got published=%d buffered=%d", c.Published(), p.buf.len())
	}

	p.onConnect()
	if c.Published() != 1 || p.buf.len() != 0 {
		t.Errorf("expected buffered message replayed, got published=%d buffered=%d", c.Published(), p.buf.len())
	}
}

// A connect that completes between the open check and the push must still
// replay the message.
func TestPublishSystemConnectDuringCheckReplays(t *testing.T) {
	c := &stubClient{}
	p := newTestPublisher(c)

	connected := make(chan struct{})
	c.onCheck = func() {
		go func() {
			p.onConnect()
			close(connected)
		}()
		// Give onConnect the chance to drain before the push.
		time.Sleep(20 * time.Millisecond)
	}

	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: EventStartup}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("onConnect did not finish")
	}

	p.mu.Lock()
	buffered := p.buf.len()
	p.mu.Unlock()
	if buffered != 0 {
		t.Errorf("message stranded in buffer until next reconnect")
	}
	if c.Published() != 1 {
		t.Errorf("expected 1 published message, got %d", c.Published())
	}
}
