//go:build tinygo

package main

import (
	"image/color"
	"machine"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/protocol"
	"github.com/itohio/ambre/pkg/valve"
	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/ds18b20"
	"tinygo.org/x/drivers/ws2812"
)

var (
	_ chamber.TemperatureSensor = (*thermometer)(nil)
	_ chamber.ClimateSensor     = (*climate)(nil)
	_ chamber.Actuator          = (*valvePin)(nil)
	_ chamber.Indicator         = (*neoPixel)(nil)
	_ chamber.Transport         = (*serialLink)(nil)
)

// thermometer pipelines DS18B20 conversions: each sample returns the
// conversion started by the previous one and starts the next, so the loop
// never waits the 750ms conversion time.
type thermometer struct {
	dev ds18b20.Device
}

func (t *thermometer) Temperature() measure.Measurement {
	// Single sensor on the bus, nil ROM id skips addressing
	mc, err := t.dev.ReadTemperature(nil)
	t.dev.RequestTemperature(nil)
	if err != nil {
		return measure.Invalid
	}
	return measure.FromDS18B20(float32(mc) / 1000)
}

// climate reads the DHT22. A read takes a few milliseconds.
type climate struct {
	dev dht.Device
}

func (c *climate) Climate() (temperature, humidity measure.Measurement) {
	if err := c.dev.ReadMeasurements(); err != nil {
		return measure.Invalid, measure.Invalid
	}
	t, h, err := c.dev.Measurements()
	if err != nil {
		return measure.Invalid, measure.Invalid
	}
	// Both are reported in tenths
	return measure.New(float32(t) / 10), measure.New(float32(h) / 10)
}

type valvePin struct {
	pin machine.Pin
}

func (v *valvePin) SetValve(cmd valve.Command) {
	v.pin.Set(cmd.IsOpen())
}

type neoPixel struct {
	dev ws2812.Device
	buf [1]color.RGBA
}

func (n *neoPixel) Show(c color.RGBA, b indicator.Brightness) {
	n.buf[0] = indicator.Scale(c, b)
	n.dev.WriteColors(n.buf[:])
}

// serialLink assembles command lines from the USB serial port.
type serialLink struct {
	port machine.Serialer
	line protocol.LineBuffer
}

// Poll consumes buffered bytes up to the end of the first complete line.
func (s *serialLink) Poll() (string, bool) {
	for s.port.Buffered() > 0 {
		b, err := s.port.ReadByte()
		if err != nil {
			s.line.Reset()
			return "", false
		}
		if line, ok := s.line.Feed(b); ok {
			return line, true
		}
	}
	return "", false
}

func (s *serialLink) WriteLine(line string) {
	s.port.Write([]byte(line))
	s.port.Write([]byte{'\n'})
}
