//go:build tinygo

package main

import (
	"time"

	"machine"
)

const (
	// Sampling configuration
	DS18B20_PERIOD = 1000 * time.Millisecond // DS18B20 conversion takes up to 750ms at 12 bits
	DHT22_PERIOD   = 2000 * time.Millisecond // DHT22 averages over 2s internally
	LOOP_IDLE      = 100 * time.Microsecond  // Sleep between loop iterations

	// Valve defaults, changed at runtime over serial
	DEFAULT_THRESHOLD       = 50   // Relative humidity (%)
	DEFAULT_OPEN_WHEN_ABOVE = true // Purge with N2 when too humid

	// Sensor pins
	PIN_DS18B20 = machine.D5
	PIN_DHT22   = machine.D6

	// Solenoid valve driver
	PIN_VALVE = machine.D12

	// Status NeoPixel
	PIN_NEOPIXEL = machine.NEOPIXEL

	// Serial configuration
	// Status line: "4294967295\t-55.0\t-40.0\t100.0\t1\n" = ~32 bytes max
	// Replies are sent only on request, so 115200 is plenty.
	UART_BAUD_RATE = 115200
)
