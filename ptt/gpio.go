package ptt

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

/*-------------------------------------------------------------
 *
 * Purpose:	PTT via a GPIO output line, as used by CM108/CM119
 *		style USB sound fobs and homebrew relay interfaces.
 *
 *--------------------------------------------------------------*/

// GPIOKeyer drives a single gpiocdev output line high for key-down,
// low for key-up.
type GPIOKeyer struct {
	line *gpiocdev.Line
}

// NewGPIOKeyer requests offset on chip (e.g. "gpiochip0", 17) as an
// output line, initially low (unkeyed).
func NewGPIOKeyer(chip string, offset int) (*GPIOKeyer, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("ptt: request gpio line %s:%d: %w", chip, offset, err)
	}

	return &GPIOKeyer{line: line}, nil
}

func (k *GPIOKeyer) KeyOn() error {
	return k.line.SetValue(1)
}

func (k *GPIOKeyer) KeyOff() error {
	return k.line.SetValue(0)
}

// Close releases the GPIO line. Not part of the Keyer interface -
// callers that own a *GPIOKeyer should call it on shutdown.
func (k *GPIOKeyer) Close() error {
	return k.line.Close()
}
