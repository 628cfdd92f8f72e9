package indicator

import (
	"image/color"
	"testing"

	"github.com/itohio/ambre/pkg/measure"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	ok := measure.New(21)
	bad := measure.Invalid

	tests := []struct {
		name     string
		readings []measure.Measurement
		want     State
	}{
		{name: "all valid", readings: []measure.Measurement{ok, ok, ok}, want: OK},
		{name: "ds18 invalid", readings: []measure.Measurement{bad, ok, ok}, want: Error},
		{name: "dht temp invalid", readings: []measure.Measurement{ok, bad, ok}, want: Error},
		{name: "dht humi invalid", readings: []measure.Measurement{ok, ok, bad}, want: Error},
		{name: "all invalid", readings: []measure.Measurement{bad, bad, bad}, want: Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.readings...))
		})
	}
}

func TestStateColor(t *testing.T) {
	assert.Equal(t, Blue, Booting.Color())
	assert.Equal(t, Green, OK.Color())
	assert.Equal(t, Red, Error.Color())
}

func TestBootTransition(t *testing.T) {
	ind := New(DefaultDim, DefaultBright)
	assert.Equal(t, Booting, ind.State())
	assert.Equal(t, Blue, ind.Color())
	assert.Equal(t, DefaultBright, ind.BootBrightness())

	ok := measure.New(40)

	// Not all readings sampled yet: stays blue even though what we have is valid.
	assert.Equal(t, Booting, ind.Evaluate(false, ok, measure.Invalid, measure.Invalid))

	assert.Equal(t, OK, ind.Evaluate(true, ok, ok, ok))
	assert.Equal(t, Green, ind.Color())

	// Booting is never re-entered.
	assert.Equal(t, Error, ind.Evaluate(false, ok, measure.Invalid, ok))
	assert.Equal(t, Red, ind.Color())
	assert.Equal(t, OK, ind.Evaluate(false, ok, ok, ok))
}

func TestBootToRed(t *testing.T) {
	ind := New(DefaultDim, DefaultBright)
	assert.Equal(t, Error, ind.Evaluate(true, measure.New(20), measure.Invalid, measure.New(50)))
	assert.Equal(t, Red, ind.Color())
}

func TestHeartbeatAlternates(t *testing.T) {
	ind := New(1, 9)
	var got []Brightness
	for i := 0; i < 5; i++ {
		got = append(got, ind.Heartbeat())
	}
	assert.Equal(t, []Brightness{1, 9, 1, 9, 1}, got)
}

func TestHeartbeatIndependentOfColor(t *testing.T) {
	ind := New(DefaultDim, DefaultBright)
	first := ind.Heartbeat()
	ind.Evaluate(true, measure.Invalid)
	second := ind.Heartbeat()
	ind.Evaluate(true, measure.New(1))
	third := ind.Heartbeat()

	assert.Equal(t, DefaultDim, first)
	assert.Equal(t, DefaultBright, second)
	assert.Equal(t, DefaultDim, third)
}

func TestScale(t *testing.T) {
	tests := []struct {
		name string
		in   color.RGBA
		b    Brightness
		want color.RGBA
	}{
		{name: "bright blue", in: Blue, b: DefaultBright, want: color.RGBA{B: 8, A: 255}},
		{name: "dim green", in: Green, b: DefaultDim, want: color.RGBA{G: 3, A: 255}},
		{name: "full", in: Red, b: 255, want: Red},
		{name: "off", in: Red, b: 0, want: color.RGBA{A: 255}},
		{name: "mixed", in: color.RGBA{R: 128, G: 64, B: 255, A: 255}, b: 127, want: color.RGBA{R: 64, G: 32, B: 127, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scale(tt.in, tt.b))
		})
	}
}
