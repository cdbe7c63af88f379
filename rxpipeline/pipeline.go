// Package rxpipeline recovers characters from a live audio stream:
// windowed sample acquisition, per-symbol tone detection, a rolling
// 64-symbol buffer, decode attempts, and block realignment when a
// decode fails.
package rxpipeline

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/kd9xyz/oliviamodem/block"
	"github.com/kd9xyz/oliviamodem/dsp"
	"github.com/kd9xyz/oliviamodem/params"
)

// InputStream is the contract rxpipeline needs from an audio input:
// a blocking read of exactly len(buf) samples. audioio.Input
// satisfies this; tests substitute an in-memory fake.
type InputStream interface {
	Read(buf []float32) error
}

/*-------------------------------------------------------------
 *
 * Purpose:	Continuously read one symbol window at a time,
 *		detect its tone by magnitude spectrum, and attempt
 *		to decode a block every time the rolling buffer of
 *		detected symbols reaches 64.
 *
 *--------------------------------------------------------------*/

// Pipeline owns rxSyms; it is touched only by the goroutine running
// Run.
type Pipeline struct {
	p   params.Params
	fft *fourier.FFT

	logger    *log.Logger
	onMessage func(string)

	rxSyms []int
}

func New(p params.Params, logger *log.Logger, onMessage func(string)) *Pipeline {
	return &Pipeline{
		p:         p,
		fft:       fourier.NewFFT(p.Wlen),
		logger:    logger,
		onMessage: onMessage,
		rxSyms:    make([]int, 0, blockLen),
	}
}

const blockLen = 64

// Run blocks, reading windows from input and feeding the block
// decoder, until ctx is cancelled or input.Read returns an error.
func (rp *Pipeline) Run(ctx context.Context, input InputStream) error {
	window := make([]float32, rp.p.Wlen)
	real := make([]float64, rp.p.Wlen)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := input.Read(window); err != nil {
			return fmt.Errorf("rxpipeline: read window: %w", err)
		}

		for i, v := range window {
			real[i] = float64(v)
		}

		coeffs := rp.fft.Coefficients(nil, real)

		sym := dsp.Degray(rp.detectTone(coeffs))
		rp.rxSyms = append(rp.rxSyms, sym)

		if len(rp.rxSyms) == blockLen {
			rp.tryDecode()
		}
	}
}

func (rp *Pipeline) detectTone(coeffs []complex128) int {
	mix := 0
	best := -1.0

	for i := 0; i < rp.p.Symbols; i++ {
		bin := rp.binIndex(i)
		if bin < 0 || bin >= len(coeffs) {
			continue
		}

		mag := cmplx.Abs(coeffs[bin])
		if mag > best {
			best = mag
			mix = i
		}
	}

	return mix
}

// binIndex reproduces the reference tone-to-bin mapping, off-by-one
// included by default (see params.Params.StrictToneBinning).
func (rp *Pipeline) binIndex(toneIndex int) int {
	offset := toneIndex
	if !rp.p.StrictToneBinning {
		offset = toneIndex + 1
	}

	ix := float64(rp.p.CentreFreq) - float64(rp.p.Bandwidth)/2 + rp.p.Fsep/2 + rp.p.Fsep*float64(offset)

	return int(math.Round(ix * float64(rp.p.Wlen) / float64(rp.p.SampleRate)))
}

func (rp *Pipeline) tryDecode() {
	text, doubt := block.Decode(rp.p, rp.rxSyms)

	if doubt == 0 {
		rp.rxSyms = rp.rxSyms[:0]

		if text != "" && rp.onMessage != nil {
			rp.onMessage(text)
		}

		return
	}

	// Block-rolling resynchronisation: slide the window by one symbol
	// period and try again next time the buffer fills.
	rp.rxSyms = append(rp.rxSyms[:0], rp.rxSyms[1:]...)
}
