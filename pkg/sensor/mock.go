package sensor

import (
	"image/color"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/config"
	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/valve"
)

var (
	_ chamber.TemperatureSensor = (*Mock)(nil)
	_ chamber.ClimateSensor     = (*Mock)(nil)
	_ chamber.Actuator          = (*Mock)(nil)
	_ chamber.Indicator         = (*Mock)(nil)
)

// Mock simulates the chamber hardware for development without a board.
// Humidity relaxes towards the purged level while the valve lets N2 in and
// towards ambient otherwise.
type Mock struct {
	cfg *config.MockConfig
	now func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	humidity  float32
	valveOpen bool
	updated   time.Time
	color     color.RGBA
}

// NewMock creates a simulated chamber. now is usually time.Now.
func NewMock(cfg *config.MockConfig, now func() time.Time, seed int64) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	if now == nil {
		now = time.Now
	}

	return &Mock{
		cfg:      cfg,
		now:      now,
		rng:      rand.New(rand.NewSource(seed)),
		humidity: cfg.Humidity,
		updated:  now(),
	}
}

// Temperature simulates the DS18B20.
func (m *Mock) Temperature() measure.Measurement {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failed() {
		return measure.FromDS18B20(-127)
	}
	return measure.New(m.cfg.Temperature + m.noise())
}

// Climate simulates the DHT22.
func (m *Mock) Climate() (temperature, humidity measure.Measurement) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.advance()

	if m.failed() {
		return measure.Invalid, measure.Invalid
	}

	h := math32.Max(0, math32.Min(100, m.humidity+m.noise()))
	return measure.New(m.cfg.Temperature + m.noise()), measure.New(h)
}

// SetValve records the valve state driving the humidity model.
func (m *Mock) SetValve(cmd valve.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cmd.IsOpen() == m.valveOpen {
		return
	}
	m.advance()
	m.valveOpen = cmd.IsOpen()
	log.Printf("Mock valve %s", cmd)
}

// Show logs LED color changes.
func (m *Mock) Show(c color.RGBA, b indicator.Brightness) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c == m.color {
		return
	}
	m.color = c
	log.Printf("Mock LED color=%d,%d,%d brightness=%d", c.R, c.G, c.B, b)
}

// Humidity returns the noiseless simulated humidity.
func (m *Mock) Humidity() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	return m.humidity
}

// ValveOpen returns the last commanded valve state.
func (m *Mock) ValveOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valveOpen
}

// advance integrates the first-order humidity model up to now.
func (m *Mock) advance() {
	now := m.now()
	dt := float32(now.Sub(m.updated).Seconds())
	m.updated = now
	if dt <= 0 {
		return
	}

	target := m.cfg.Ambient
	if m.valveOpen {
		target = m.cfg.Purged
	}

	tau := float32(m.cfg.TimeConstant.Seconds())
	alpha := 1 - math32.Exp(-dt/tau)
	m.humidity += alpha * (target - m.humidity)
}

func (m *Mock) noise() float32 {
	if m.cfg.NoiseLevel == 0 {
		return 0
	}
	return (m.rng.Float32()*2 - 1) * m.cfg.NoiseLevel
}

func (m *Mock) failed() bool {
	return m.cfg.FailureRate > 0 && m.rng.Float32() < m.cfg.FailureRate
}
