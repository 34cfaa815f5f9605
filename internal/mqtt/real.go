package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// bufferCapacity bounds the number of events held while the broker is
// unreachable. At one event per minute this is several hours of backlog.
const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker. Events published
// while disconnected are buffered and replayed on reconnection.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex
	buffer *eventBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
// An empty clientID gets a unique generated one, so several receivers can
// share a broker without kicking each other off.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = "msf-receiver-" + uuid.NewString()[:8]
	}

	p := &RealPublisher{buffer: newEventBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

	client := paho.NewClient(opts)
	p.client = client

	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect replays events buffered while the broker was unreachable.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	events := p.buffer.drainAll()
	p.mu.Unlock()

	if len(events) == 0 {
		return
	}
	log.Printf("mqtt: reconnected, replaying %d buffered events", len(events))
	for _, e := range events {
		topic, qos, retained, payload, err := e.message()
		if err != nil {
			log.Printf("mqtt: replay format: %v", err)
			continue
		}
		token := client.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", topic)
		} else if err := token.Error(); err != nil {
			log.Printf("mqtt: replay on %s: %v", topic, err)
		}
	}
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a decoded minute to the MQTT broker. While the broker is
// unreachable the minute is queued for replay instead.
func (p *RealPublisher) Publish(event TimeEvent) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.pushTime(event)
		p.mu.Unlock()
		return nil
	}

	payload, err := FormatTimePayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once): the next minute supersedes this one anyway.
	return p.send(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker. While the
// broker is unreachable the event is queued for replay instead.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.pushSystem(event)
		p.mu.Unlock()
		return nil
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
