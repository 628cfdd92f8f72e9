// Package measure holds the value type every sensor reading is carried in.
package measure

import (
	"strconv"

	"github.com/chewxy/math32"
)

// DS18B20Disconnected is the lowest temperature the DS18B20 driver reports
// for a real reading. Anything at or below it is the driver's error code.
const DS18B20Disconnected float32 = -126

// Measurement is the outcome of one measurement attempt: either a physical
// value or invalid. The zero value is invalid.
type Measurement struct {
	value float32
	valid bool
}

// Invalid is the measurement of a failed read.
var Invalid = Measurement{}

// New wraps a physical value. NaN and infinities become Invalid.
func New(v float32) Measurement {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return Invalid
	}
	return Measurement{value: v, valid: true}
}

// FromDS18B20 converts a DS18B20 temperature in °C, remapping the driver's
// disconnected sentinel to Invalid.
func FromDS18B20(celsius float32) Measurement {
	if celsius <= DS18B20Disconnected {
		return Invalid
	}
	return New(celsius)
}

// Valid reports whether m carries a physical value.
func (m Measurement) Valid() bool {
	return m.valid
}

// Value returns the physical value and whether it is valid.
func (m Measurement) Value() (float32, bool) {
	return m.value, m.valid
}

// Greater reports m > x. ok is false when m is invalid, in which case the
// comparison has no answer.
func (m Measurement) Greater(x float32) (greater, ok bool) {
	if !m.valid {
		return false, false
	}
	return m.value > x, true
}

// Less reports m < x. ok is false when m is invalid.
func (m Measurement) Less(x float32) (less, ok bool) {
	if !m.valid {
		return false, false
	}
	return m.value < x, true
}

// Format renders the value with the given number of decimals, or "nan".
func (m Measurement) Format(decimals int) string {
	if !m.valid {
		return "nan"
	}
	return strconv.FormatFloat(float64(m.value), 'f', decimals, 32)
}

// String renders the value with one decimal.
func (m Measurement) String() string {
	return m.Format(1)
}

// MarshalJSON encodes an invalid measurement as null.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(m.value), 'f', -1, 32), nil
}
