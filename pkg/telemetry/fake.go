package telemetry

import "sync"

var _ Publisher = (*Fake)(nil)

// Fake records published payloads for test assertions.
type Fake struct {
	mu sync.Mutex

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a Fake for testing.
func NewFake() *Fake {
	return &Fake{}
}

// Publish records the payload.
func (f *Fake) Publish(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Count returns the number of recorded payloads.
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Payloads)
}
