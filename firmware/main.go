//go:build tinygo

//go:generate tinygo flash -target=feather-m4

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/valve"
	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/ds18b20"
	"tinygo.org/x/drivers/onewire"
	"tinygo.org/x/drivers/ws2812"
)

var (
	serial = machine.Serial
)

func main() {
	// Configure the valve first so it is closed as early as possible
	PIN_VALVE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_VALVE.Low()

	PIN_NEOPIXEL.Configure(machine.PinConfig{Mode: machine.PinOutput})

	serial.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	thermometer := newThermometer(PIN_DS18B20)
	climate := newClimate(PIN_DHT22)

	dev := chamber.Devices{
		DS18B20: thermometer,
		DHT22:   climate,
		Valve:   &valvePin{pin: PIN_VALVE},
		LED:     &neoPixel{dev: ws2812.New(PIN_NEOPIXEL)},
		Link:    &serialLink{port: serial},
	}

	opts := chamber.DefaultOptions()
	opts.DS18B20Period = DS18B20_PERIOD
	opts.DHT22Period = DHT22_PERIOD
	opts.Valve = valve.Config{
		Threshold:     DEFAULT_THRESHOLD,
		OpenWhenAbove: DEFAULT_OPEN_WHEN_ABOVE,
	}
	opts.Dim = indicator.DefaultDim
	opts.Bright = indicator.DefaultBright
	opts.Idle = LOOP_IDLE

	loop := chamber.New(opts, dev, time.Now())

	// Never returns
	loop.Run(context.Background(), time.Now)
}

func newThermometer(pin machine.Pin) *thermometer {
	bus := onewire.New(pin)
	t := &thermometer{dev: ds18b20.New(bus)}
	// Start the first conversion so a result is ready by the first sample
	t.dev.RequestTemperature(nil)
	return t
}

func newClimate(pin machine.Pin) *climate {
	return &climate{dev: dht.New(pin, dht.DHT22)}
}
