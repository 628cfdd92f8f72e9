// Package valve maps the chamber humidity onto an open/closed solenoid valve
// command.
package valve

import (
	"github.com/chewxy/math32"
	"github.com/itohio/ambre/pkg/measure"
)

const (
	// MinThreshold and MaxThreshold bound the humidity threshold [%].
	MinThreshold float32 = 0
	MaxThreshold float32 = 100

	// DefaultThreshold is the boot-time humidity threshold [%].
	DefaultThreshold float32 = 50
)

// Command is the commanded valve state.
type Command uint8

const (
	Closed Command = iota
	Open
)

func (c Command) String() string {
	if c == Open {
		return "open"
	}
	return "closed"
}

// IsOpen reports whether c opens the valve.
func (c Command) IsOpen() bool {
	return c == Open
}

// Config is the threshold policy. It only lives in RAM.
type Config struct {
	Threshold     float32 `yaml:"threshold" json:"threshold"`
	OpenWhenAbove bool    `yaml:"open_when_above" json:"open_when_above"`
}

// DefaultConfig opens the valve above 50 % relative humidity.
func DefaultConfig() Config {
	return Config{
		Threshold:     DefaultThreshold,
		OpenWhenAbove: true,
	}
}

// Clamp limits x to [MinThreshold, MaxThreshold]. NaN clamps to MinThreshold.
func Clamp(x float32) float32 {
	if math32.IsNaN(x) {
		return MinThreshold
	}
	return math32.Max(MinThreshold, math32.Min(MaxThreshold, x))
}

// SetThreshold stores x clamped into range. Out-of-range input is never
// rejected.
func (c *Config) SetThreshold(x float32) {
	c.Threshold = Clamp(x)
}

// SetPolarity selects whether the valve opens above or below the threshold.
func (c *Config) SetPolarity(openWhenAbove bool) {
	c.OpenWhenAbove = openWhenAbove
}

// Decide returns the valve command for the given humidity.
//
// An invalid humidity always closes the valve. A humidity exactly at the
// threshold satisfies neither strict inequality and closes the valve under
// both polarities.
func Decide(humidity measure.Measurement, cfg Config) Command {
	var open, ok bool
	if cfg.OpenWhenAbove {
		open, ok = humidity.Greater(cfg.Threshold)
	} else {
		open, ok = humidity.Less(cfg.Threshold)
	}
	if !ok || !open {
		return Closed
	}
	return Open
}
