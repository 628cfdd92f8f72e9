package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/measure"
)

var (
	_ chamber.TemperatureSensor = (*AsyncThermometer)(nil)
	_ chamber.ClimateSensor     = (*AsyncClimate)(nil)
)

// StaleAfter is how many sampling periods a cached reading stays valid
// without a completed read.
const StaleAfter = 3

// background repeats a blocking read in its own goroutine and keeps the
// latest result. A result older than maxAge is replaced by stale.
type background[T any] struct {
	read   func() T
	period time.Duration
	maxAge time.Duration
	stale  T

	mu      sync.RWMutex
	last    T
	updated time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func startBackground[T any](read func() T, stale T, period time.Duration) *background[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &background[T]{
		read:    read,
		period:  period,
		maxAge:  StaleAfter * period,
		stale:   stale,
		last:    stale,
		updated: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *background[T]) run() {
	defer close(b.done)

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	for {
		v := b.read()
		b.mu.Lock()
		b.last = v
		b.updated = time.Now()
		b.mu.Unlock()

		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// latest returns the cached result, or stale when no read completed within
// maxAge, e.g. while the sensor hangs.
func (b *background[T]) latest() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if time.Since(b.updated) > b.maxAge {
		return b.stale
	}
	return b.last
}

// close stops sampling. A read hung in the sensor is abandoned after maxAge.
func (b *background[T]) close() {
	b.cancel()
	select {
	case <-b.done:
	case <-time.After(b.maxAge):
	}
}

// AsyncThermometer serves the latest background reading of a blocking
// thermometer. Until the first read completes, and whenever no read has
// completed for StaleAfter periods, it reports Invalid.
type AsyncThermometer struct {
	bg *background[measure.Measurement]
}

// NewAsyncThermometer starts sampling src every period.
func NewAsyncThermometer(src chamber.TemperatureSensor, period time.Duration) *AsyncThermometer {
	return &AsyncThermometer{
		bg: startBackground(src.Temperature, measure.Invalid, period),
	}
}

// Temperature returns the cached reading without blocking.
func (a *AsyncThermometer) Temperature() measure.Measurement {
	return a.bg.latest()
}

// Close stops sampling and waits, bounded, for an in-flight read.
func (a *AsyncThermometer) Close() error {
	a.bg.close()
	return nil
}

type climate struct {
	temperature measure.Measurement
	humidity    measure.Measurement
}

// AsyncClimate is AsyncThermometer for temperature/humidity sensors.
type AsyncClimate struct {
	bg *background[climate]
}

// NewAsyncClimate starts sampling src every period.
func NewAsyncClimate(src chamber.ClimateSensor, period time.Duration) *AsyncClimate {
	read := func() climate {
		t, h := src.Climate()
		return climate{temperature: t, humidity: h}
	}
	return &AsyncClimate{
		bg: startBackground(read, climate{}, period),
	}
}

// Climate returns the cached readings without blocking.
func (a *AsyncClimate) Climate() (temperature, humidity measure.Measurement) {
	c := a.bg.latest()
	return c.temperature, c.humidity
}

// Close stops sampling and waits, bounded, for an in-flight read.
func (a *AsyncClimate) Close() error {
	a.bg.close()
	return nil
}
