// Package params holds the derived, immutable tuning constants shared
// by every stage of the Olivia pipeline (dsp, block, txpipeline,
// rxpipeline). Values here are computed once from a validated config
// and never change for the lifetime of a modem instance.
package params

// Params is the set of numbers every DSP and coding stage needs to
// agree on bit-exactly. It is produced by config.Config.ToParams and
// passed by value, never mutated after construction.
type Params struct {
	SampleRate int // Hz
	Symbols    int // N, power of two
	SPB        int // bits/characters per block row, log2(Symbols)
	Bandwidth  int // Hz
	CentreFreq int // Hz
	Fsep       float64
	Wlen       int // samples per symbol window

	Attenuation    int
	Preamble       bool
	BlockThreshold float64

	// StrictToneBinning, when true, uses the corrected (non-off-by-one)
	// tone-to-bin mapping. When false (the default) it preserves the
	// reference implementation's off-by-one for bit-exact interop.
	StrictToneBinning bool

	// AutoScaleThreshold scales BlockThreshold for each row by that
	// row's mean absolute WHT coefficient divided by sqrt(64), which
	// lowers the threshold for rows whose energy sits in few
	// coefficients (see block.Decode).
	AutoScaleThreshold bool
}
