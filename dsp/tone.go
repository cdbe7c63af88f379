package dsp

import (
	"math"
	"math/rand"

	"github.com/kd9xyz/oliviamodem/params"
)

/*-------------------------------------------------------------
 *
 * Name:	Tone
 *
 * Purpose:	Synthesise the shaped sinusoid for one tone number.
 *
 * Inputs:	p    - tuning parameters (sample rate, centre freq,
 *			bandwidth, tone separation).
 *		tone - tone index in [0, p.Symbols).
 *		rng  - source of the randomised starting phase; tests
 *			supply a seeded one so results are reproducible.
 *
 * Returns:	approximately 2*p.Wlen shaped samples (ceil(2*SampleRate/Fsep)).
 *
 *--------------------------------------------------------------*/

func Tone(p params.Params, tone int, rng *rand.Rand) []float32 {
	freq := float64(p.CentreFreq) - float64(p.Bandwidth)/2 + p.Fsep/2 + p.Fsep*float64(tone)

	length := int(math.Ceil(2 * float64(p.SampleRate) / p.Fsep))

	phase := math.Pi / 2
	if rng.Intn(2) == 0 {
		phase = -phase
	}

	shape := ShapeWindow(length)

	out := make([]float32, length)
	for n := 0; n < length; n++ {
		t := float64(n) / float64(p.SampleRate)
		out[n] = float32(math.Sin(2*math.Pi*freq*t+phase) * shape[n])
	}

	return out
}
