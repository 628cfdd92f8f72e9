// Package telemetry publishes chamber status snapshots, typically to MQTT.
package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/measure"
)

// DefaultQueueSize is the number of snapshots buffered for publishing.
const DefaultQueueSize = 8

// Publisher sends one encoded payload.
type Publisher interface {
	// Publish sends a payload to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(payload []byte) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON status document.
type Payload struct {
	Timestamp     string              `json:"timestamp"`
	UptimeMs      int64               `json:"uptime_ms"`
	DS18B20Temp   measure.Measurement `json:"ds18b20_temp"`
	DHT22Temp     measure.Measurement `json:"dht22_temp"`
	DHT22Humi     measure.Measurement `json:"dht22_humi"`
	ValveOpen     bool                `json:"valve_open"`
	Threshold     float32             `json:"threshold"`
	OpenWhenAbove bool                `json:"open_when_above"`
	Status        string              `json:"status"`
}

// FormatPayload creates the JSON payload for a snapshot. Invalid readings
// are encoded as null.
func FormatPayload(s chamber.Snapshot) ([]byte, error) {
	return json.Marshal(Payload{
		Timestamp:     s.Time.UTC().Format(time.RFC3339),
		UptimeMs:      s.Uptime.Milliseconds(),
		DS18B20Temp:   s.Readings.DS18Temp,
		DHT22Temp:     s.Readings.DHT22Temp,
		DHT22Humi:     s.Readings.DHT22Humi,
		ValveOpen:     s.ValveOpen,
		Threshold:     s.Valve.Threshold,
		OpenWhenAbove: s.Valve.OpenWhenAbove,
		Status:        s.Status.String(),
	})
}

var _ chamber.Observer = (*Reporter)(nil)

// Reporter receives snapshots from the main loop and publishes them from its
// own goroutine, so a slow broker never stalls the loop.
type Reporter struct {
	pub   Publisher
	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// NewReporter starts publishing through pub.
func NewReporter(pub Publisher, queueSize int) *Reporter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	r := &Reporter{
		pub:   pub,
		queue: make(chan []byte, queueSize),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Observe encodes and queues a snapshot. A full queue drops it.
func (r *Reporter) Observe(s chamber.Snapshot) {
	payload, err := FormatPayload(s)
	if err != nil {
		log.Printf("Failed to format telemetry: %v", err)
		return
	}

	select {
	case r.queue <- payload:
	default:
		log.Printf("Telemetry queue full, dropping snapshot")
	}
}

// Close flushes the queue and closes the publisher. Observe must not be
// called afterwards.
func (r *Reporter) Close() error {
	var err error
	r.once.Do(func() {
		close(r.queue)
		<-r.done
		err = r.pub.Close()
	})
	return err
}

func (r *Reporter) run() {
	defer close(r.done)

	for payload := range r.queue {
		if err := r.pub.Publish(payload); err != nil {
			log.Printf("Telemetry publish error: %v", err)
		}
	}
}
