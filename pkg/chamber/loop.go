// Package chamber ties the sensors, the valve policy, the status LED and the
// command channel into one cooperative loop.
//
// Every tick:
//  1. sample the DS18B20 when its schedule is due
//  2. sample the DHT22 when its schedule is due, then refresh the LED
//  3. re-decide the valve from the cached humidity (every tick)
//  4. handle at most one pending command line
//
// Nothing in a tick blocks. The loop is the only writer of State.
package chamber

import (
	"context"
	"time"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/poll"
	"github.com/itohio/ambre/pkg/protocol"
	"github.com/itohio/ambre/pkg/valve"
)

const (
	// DefaultDS18B20Period and DefaultDHT22Period are the sampling periods.
	// The DHT22 averages over 2 s by itself; it is the slow sensor.
	DefaultDS18B20Period = 1000 * time.Millisecond
	DefaultDHT22Period   = 2000 * time.Millisecond
)

// Options configures a Loop.
type Options struct {
	DS18B20Period time.Duration
	DHT22Period   time.Duration
	Valve         valve.Config
	Dim           indicator.Brightness
	Bright        indicator.Brightness
	// Idle is slept between ticks by Run. Zero spins.
	Idle time.Duration
}

// DefaultOptions mirrors the reference chamber.
func DefaultOptions() Options {
	return Options{
		DS18B20Period: DefaultDS18B20Period,
		DHT22Period:   DefaultDHT22Period,
		Valve:         valve.DefaultConfig(),
		Dim:           indicator.DefaultDim,
		Bright:        indicator.DefaultBright,
		Idle:          time.Millisecond,
	}
}

// Loop is the chamber main loop.
type Loop struct {
	opts  Options
	dev   Devices
	state State

	ds18   *poll.Schedule
	dht22  *poll.Schedule
	status *indicator.Indicator

	brightness indicator.Brightness
}

// New creates a loop booted at boot. Both schedules first fire one period
// after boot.
func New(opts Options, dev Devices, boot time.Time) *Loop {
	if opts.DS18B20Period <= 0 {
		opts.DS18B20Period = DefaultDS18B20Period
	}
	if opts.DHT22Period <= 0 {
		opts.DHT22Period = DefaultDHT22Period
	}
	opts.Valve.SetThreshold(opts.Valve.Threshold)

	ind := indicator.New(opts.Dim, opts.Bright)
	return &Loop{
		opts: opts,
		dev:  dev,
		state: State{
			Valve: opts.Valve,
			boot:  boot,
		},
		ds18:       poll.New(opts.DS18B20Period, boot),
		dht22:      poll.New(opts.DHT22Period, boot),
		status:     ind,
		brightness: ind.BootBrightness(),
	}
}

// Boot closes the valve and shows the booting color.
func (l *Loop) Boot() {
	l.dev.Valve.SetValve(valve.Closed)
	l.dev.LED.Show(l.status.Color(), l.brightness)
}

// Tick runs one loop iteration at now.
func (l *Loop) Tick(now time.Time) {
	s := &l.state

	if l.ds18.Poll(now) {
		s.DS18Temp = l.dev.DS18B20.Temperature()
		s.lastDS18 = now
		s.ds18Sampled = true
	}

	dhtFired := l.dht22.Poll(now)
	if dhtFired {
		s.DHT22Temp, s.DHT22Humi = l.dev.DHT22.Climate()
		s.dhtSampled = true

		l.status.Evaluate(s.Sampled(), s.Readings.All()...)
		l.brightness = l.status.Heartbeat()
		l.dev.LED.Show(l.status.Color(), l.brightness)
	}

	cmd := valve.Decide(s.DHT22Humi, s.Valve)
	s.ValveOpen = cmd.IsOpen()
	l.dev.Valve.SetValve(cmd)

	if dhtFired && l.dev.Observer != nil {
		l.dev.Observer.Observe(l.Snapshot(now))
	}

	if line, ok := l.dev.Link.Poll(); ok {
		if reply, ok := protocol.Dispatch(protocol.Parse(line), &s.Valve, s.status()); ok {
			l.dev.Link.WriteLine(reply)
		}
	}
}

// Run ticks until ctx is done, then closes the valve. clock is usually
// time.Now.
func (l *Loop) Run(ctx context.Context, clock func() time.Time) error {
	l.Boot()
	defer l.dev.Valve.SetValve(valve.Closed)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		l.Tick(clock())

		if l.opts.Idle > 0 {
			time.Sleep(l.opts.Idle)
		}
	}
}

// State returns a copy of the current state.
func (l *Loop) State() State {
	return l.state
}

// Indicator returns the current LED state.
func (l *Loop) Indicator() indicator.State {
	return l.status.State()
}

// Snapshot copies the state for observers.
func (l *Loop) Snapshot(now time.Time) Snapshot {
	s := &l.state
	return Snapshot{
		Time:       now,
		Uptime:     now.Sub(s.boot),
		Readings:   s.Readings,
		ValveOpen:  s.ValveOpen,
		Valve:      s.Valve,
		Status:     l.status.State(),
		Brightness: l.brightness,
	}
}
