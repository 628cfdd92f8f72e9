//go:build !linux

package gpio

import (
	"errors"
	"image/color"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/valve"
)

// Board is not available on non-Linux platforms.
type Board struct{}

// Open returns an error on non-Linux platforms.
func Open(pins Pins) (*Board, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetValve is not implemented on non-Linux platforms.
func (b *Board) SetValve(cmd valve.Command) {}

// Show is not implemented on non-Linux platforms.
func (b *Board) Show(c color.RGBA, br indicator.Brightness) {}

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error {
	return nil
}
