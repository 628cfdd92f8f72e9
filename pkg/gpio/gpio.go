// Package gpio drives the solenoid valve and the RGB status LED from a Linux
// GPIO character device. Other platforms get a stub that refuses to open.
package gpio

import (
	"image/color"

	"github.com/itohio/ambre/pkg/indicator"
)

// Pins names the GPIO lines the chamber is wired to.
type Pins struct {
	Chip     string
	Valve    int
	LEDRed   int
	LEDGreen int
	LEDBlue  int
}

// levels maps a color and brightness onto on/off levels for a plain RGB LED
// without PWM: a channel is lit when both its component and the brightness
// are non-zero.
func levels(c color.RGBA, b indicator.Brightness) (r, g, bl int) {
	if b == 0 {
		return 0, 0, 0
	}
	return level(c.R), level(c.G), level(c.B)
}

func level(v uint8) int {
	if v > 0 {
		return 1
	}
	return 0
}
