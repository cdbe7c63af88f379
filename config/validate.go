package config

import (
	"fmt"
	"math"

	"github.com/kd9xyz/oliviamodem/params"
)

// Validate rejects any configuration violating the core invariants.
// This is the boundary check; internal construction after Validate
// never re-checks these.
func (c Config) Validate() error {
	if c.Symbols < 2 || c.Symbols > 256 {
		return fmt.Errorf("%w: got %d", ErrSymbolCountOutOfRange, c.Symbols)
	}

	if c.Symbols&(c.Symbols-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrSymbolsNotPowerOfTwo, c.Symbols)
	}

	if c.Attenuation < 1 {
		return fmt.Errorf("%w: got %d", ErrAttenuationTooLow, c.Attenuation)
	}

	switch c.PTTBackend {
	case "", "none", "gpio", "hamlib":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPTTBackend, c.PTTBackend)
	}

	return nil
}

// ToParams validates c and derives the immutable tuning parameters
// every DSP/coding stage shares.
func (c Config) ToParams() (params.Params, error) {
	if err := c.Validate(); err != nil {
		return params.Params{}, err
	}

	fsep := float64(c.Bandwidth) / float64(c.Symbols)
	wlen := int(math.Ceil(float64(c.SampleRate) / fsep))
	spb := int(math.Round(math.Log2(float64(c.Symbols))))

	return params.Params{
		SampleRate:         c.SampleRate,
		Symbols:            c.Symbols,
		SPB:                spb,
		Bandwidth:          c.Bandwidth,
		CentreFreq:         c.CentreFreq,
		Fsep:               fsep,
		Wlen:               wlen,
		Attenuation:        c.Attenuation,
		Preamble:           c.Preamble,
		BlockThreshold:     c.BlockThreshold,
		StrictToneBinning:  c.StrictToneBinning,
		AutoScaleThreshold: c.AutoScaleThreshold,
	}, nil
}
