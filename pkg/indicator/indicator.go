// Package indicator derives the status LED color and heartbeat brightness.
//
// The LED shows:
//   - Blue : booting, first readings not in yet
//   - Green: all readings valid
//   - Red  : at least one reading invalid
//
// Every evaluation alternates the brightness between dim and bright.
package indicator

import (
	"image/color"

	"github.com/itohio/ambre/pkg/measure"
)

// Brightness is the LED intensity [0 - 255].
type Brightness uint8

const (
	// DefaultDim and DefaultBright are the two heartbeat levels.
	DefaultDim    Brightness = 3
	DefaultBright Brightness = 8
)

var (
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// State is the indicator state. Booting is left exactly once.
type State uint8

const (
	Booting State = iota
	OK
	Error
)

func (s State) String() string {
	switch s {
	case OK:
		return "ok"
	case Error:
		return "error"
	default:
		return "booting"
	}
}

// Color returns the LED color for s.
func (s State) Color() color.RGBA {
	switch s {
	case OK:
		return Green
	case Error:
		return Red
	default:
		return Blue
	}
}

// Status is Error if any measurement is invalid, OK otherwise.
func Status(readings ...measure.Measurement) State {
	for _, m := range readings {
		if !m.Valid() {
			return Error
		}
	}
	return OK
}

// Indicator tracks the boot transition and the heartbeat toggle.
type Indicator struct {
	state  State
	toggle bool
	dim    Brightness
	bright Brightness
}

// New returns an indicator in the Booting state.
func New(dim, bright Brightness) *Indicator {
	return &Indicator{
		state:  Booting,
		dim:    dim,
		bright: bright,
	}
}

// State returns the current state.
func (ind *Indicator) State() State {
	return ind.state
}

// Color returns the current color.
func (ind *Indicator) Color() color.RGBA {
	return ind.state.Color()
}

// BootBrightness is the brightness shown while booting.
func (ind *Indicator) BootBrightness() Brightness {
	return ind.bright
}

// Evaluate re-derives the state from the latest readings. While booting,
// ready must be true (every reading sampled at least once) for the state to
// leave Booting; afterwards ready is ignored.
func (ind *Indicator) Evaluate(ready bool, readings ...measure.Measurement) State {
	if ind.state == Booting && !ready {
		return ind.state
	}
	ind.state = Status(readings...)
	return ind.state
}

// Heartbeat returns the next brightness level, alternating on every call.
func (ind *Indicator) Heartbeat() Brightness {
	b := ind.dim
	if ind.toggle {
		b = ind.bright
	}
	ind.toggle = !ind.toggle
	return b
}

// Scale applies brightness to c the way addressable LEDs with a global
// brightness setting do: full brightness (255) leaves c unchanged.
func Scale(c color.RGBA, b Brightness) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8((uint16(v) * (uint16(b) + 1)) >> 8)
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}
