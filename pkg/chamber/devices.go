package chamber

import (
	"image/color"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/valve"
)

// TemperatureSensor is a single-value thermometer such as the DS18B20.
// Temperature must not block longer than a tick; failures are reported as
// measure.Invalid.
type TemperatureSensor interface {
	Temperature() measure.Measurement
}

// ClimateSensor reads temperature and relative humidity in one go, like the
// DHT22.
type ClimateSensor interface {
	Climate() (temperature, humidity measure.Measurement)
}

// Actuator drives the solenoid valve output.
type Actuator interface {
	SetValve(cmd valve.Command)
}

// Indicator shows a color at a brightness on the status LED.
type Indicator interface {
	Show(c color.RGBA, b indicator.Brightness)
}

// Transport is the command channel. Poll must not block.
type Transport interface {
	Poll() (line string, ok bool)
	WriteLine(line string)
}

// Observer receives a snapshot after every DHT22 update.
type Observer interface {
	Observe(s Snapshot)
}

// Devices is everything the loop talks to. Observer may be nil.
type Devices struct {
	DS18B20  TemperatureSensor
	DHT22    ClimateSensor
	Valve    Actuator
	LED      Indicator
	Link     Transport
	Observer Observer
}
