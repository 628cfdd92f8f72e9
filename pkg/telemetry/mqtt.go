package telemetry

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var _ Publisher = (*MQTT)(nil)

// MQTT publishes to an actual MQTT broker.
type MQTT struct {
	client paho.Client
	topic  string
}

// NewMQTT creates a publisher connected to the given broker. The client keeps
// reconnecting in the background if the broker goes away.
func NewMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTT{
		client: client,
		topic:  topic,
	}, nil
}

// Publish sends a status payload, retained so late subscribers see the last
// known state.
func (p *MQTT) Publish(payload []byte) error {
	// QoS 0 (at-most-once); the next snapshot supersedes a lost one
	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *MQTT) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
