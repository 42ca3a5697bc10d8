package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends a message to an MQTT broker.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
	Close() error
}

// PahoPublisher publishes to an actual MQTT broker.
type PahoPublisher struct {
	client paho.Client
}

// NewPahoPublisher connects to broker.
func NewPahoPublisher(broker, clientID string) (*PahoPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &PahoPublisher{client: client}, nil
}

// Publish sends payload with QoS 1.
func (p *PahoPublisher) Publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu       sync.Mutex
	Messages []FakeMessage
	// PublishError, if set, will be returned by Publish.
	PublishError error
	Closed       bool
}

// FakeMessage is one recorded publish.
type FakeMessage struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// Publish records the message.
func (f *FakePublisher) Publish(topic string, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Messages = append(f.Messages, FakeMessage{Topic: topic, Retained: retained, Payload: payload})
	return nil
}

// Close marks the publisher closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Published returns a copy of the recorded messages.
func (f *FakePublisher) Published() []FakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeMessage, len(f.Messages))
	copy(out, f.Messages)
	return out
}

// MQTTNotifier publishes the latest state of a place as a retained message,
// so late subscribers see the current state immediately.
type MQTTNotifier struct {
	publisher   Publisher
	payloads    *PayloadBuilder
	topicPrefix string
}

// NewMQTTNotifier creates an MQTT subscriber.
func NewMQTTNotifier(publisher Publisher, payloads *PayloadBuilder, topicPrefix string) *MQTTNotifier {
	return &MQTTNotifier{publisher: publisher, payloads: payloads, topicPrefix: topicPrefix}
}

// Name implements Subscriber.
func (n *MQTTNotifier) Name() string { return "mqtt" }

// Topic returns the topic a place's changes are published to.
func (n *MQTTNotifier) Topic(placeID string) string {
	return fmt.Sprintf("%s/%s/availability", n.topicPrefix, placeID)
}

// Notify implements Subscriber.
func (n *MQTTNotifier) Notify(ctx context.Context, change Change) error {
	payload, err := n.payloads.Build(ctx, change.PlaceID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return n.publisher.Publish(n.Topic(change.PlaceID), true, body)
}
