//go:build linux

package gpio

import (
	"fmt"
	"image/color"
	"log"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/valve"
	"github.com/warthog618/go-gpiocdev"
)

var (
	_ chamber.Actuator  = (*Board)(nil)
	_ chamber.Indicator = (*Board)(nil)
)

// Board owns the valve and LED output lines.
type Board struct {
	chip  *gpiocdev.Chip
	valve *gpiocdev.Line
	led   *gpiocdev.Lines

	valveLevel int
	ledLevels  [3]int
}

// Open requests the output lines. The valve starts closed and the LED dark.
func Open(pins Pins) (*Board, error) {
	chip, err := gpiocdev.NewChip(pins.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	valveLine, err := chip.RequestLine(pins.Valve, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request valve line %d: %w", pins.Valve, err)
	}

	ledLines, err := chip.RequestLines([]int{pins.LEDRed, pins.LEDGreen, pins.LEDBlue}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		valveLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request LED lines: %w", err)
	}

	return &Board{
		chip:  chip,
		valve: valveLine,
		led:   ledLines,
	}, nil
}

// SetValve drives the valve line. The loop calls this every tick, so only
// changes reach the hardware.
func (b *Board) SetValve(cmd valve.Command) {
	v := 0
	if cmd.IsOpen() {
		v = 1
	}
	if v == b.valveLevel {
		return
	}
	if err := b.valve.SetValue(v); err != nil {
		log.Printf("Failed to set valve %s: %v", cmd, err)
		return
	}
	b.valveLevel = v
}

// Show lights the LED channels.
func (b *Board) Show(c color.RGBA, br indicator.Brightness) {
	r, g, bl := levels(c, br)
	next := [3]int{r, g, bl}
	if next == b.ledLevels {
		return
	}
	if err := b.led.SetValues(next[:]); err != nil {
		log.Printf("Failed to set LED: %v", err)
		return
	}
	b.ledLevels = next
}

// Close closes the valve, switches the LED off and releases the lines.
func (b *Board) Close() error {
	var errs []error

	if b.valve != nil {
		if err := b.valve.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("close valve: %w", err))
		}
		if err := b.valve.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release valve line: %w", err))
		}
	}
	if b.led != nil {
		if err := b.led.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("switch LED off: %w", err))
		}
		if err := b.led.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release LED lines: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
