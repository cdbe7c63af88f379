// Package txpipeline turns outgoing messages into enqueued waveform
// blocks: preamble, one block per SPB-character piece, and a trailing
// tail, each scaled by the configured attenuation.
package txpipeline

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/kd9xyz/oliviamodem/block"
	"github.com/kd9xyz/oliviamodem/dsp"
	"github.com/kd9xyz/oliviamodem/params"
	"github.com/kd9xyz/oliviamodem/ptt"
	"github.com/kd9xyz/oliviamodem/txqueue"
)

// blockKind tags what generateBlock should produce - the Go
// replacement for the reference implementation's "piece is None means
// trailing tail" sentinel.
type blockKind int

const (
	blockData blockKind = iota
	blockTail
)

type blockSpec struct {
	kind  blockKind
	piece []byte
}

/*-------------------------------------------------------------
 *
 * Purpose:	Message framing and waveform synthesis for the
 *		transmit side: preamble, data blocks with
 *		inter-symbol overlap, and a trailing tail.
 *
 *--------------------------------------------------------------*/

// Pipeline owns the inter-block overlap buffer (trail) and is only
// ever touched by the goroutine calling Send - never concurrently
// with the audio output callback, which only reads from the queue.
type Pipeline struct {
	p     params.Params
	queue *txqueue.Queue
	rng   *rand.Rand
	keyer ptt.Keyer

	logger   *log.Logger
	tsFormat string

	trail []float32
}

func New(p params.Params, queue *txqueue.Queue, rng *rand.Rand, keyer ptt.Keyer, logger *log.Logger, tsFormat string) *Pipeline {
	if keyer == nil {
		keyer = ptt.NoopKeyer{}
	}

	return &Pipeline{
		p:        p,
		queue:    queue,
		rng:      rng,
		keyer:    keyer,
		logger:   logger,
		tsFormat: tsFormat,
		trail:    make([]float32, p.Wlen),
	}
}

/*-------------------------------------------------------------
 *
 * Name:	Send
 *
 * Purpose:	Enqueue the full transmit waveform for a message:
 *		an optional preamble, one block per SPB-character
 *		piece (the last padded with NUL), and a trailing
 *		tail. Keys PTT on before the first enqueue and off
 *		after the last.
 *
 *--------------------------------------------------------------*/

func (tp *Pipeline) Send(message string) error {
	if err := tp.keyer.KeyOn(); err != nil {
		return fmt.Errorf("txpipeline: ptt key on: %w", err)
	}

	tp.logTransmit(message)

	if tp.p.Preamble {
		tp.enqueue(tp.generatePreamble())
	}

	msg := []byte(message)
	for i := 0; i < len(msg); i += tp.p.SPB {
		piece := make([]byte, tp.p.SPB)
		end := min(i+tp.p.SPB, len(msg))
		copy(piece, msg[i:end])

		tp.enqueue(tp.generateBlock(blockSpec{kind: blockData, piece: piece}))
	}

	tp.enqueue(tp.generateBlock(blockSpec{kind: blockTail}))

	if err := tp.keyer.KeyOff(); err != nil {
		return fmt.Errorf("txpipeline: ptt key off: %w", err)
	}

	return nil
}

func (tp *Pipeline) logTransmit(message string) {
	if tp.logger == nil {
		return
	}

	ts := time.Now().Format(time.RFC3339)
	if tp.tsFormat != "" {
		if formatted, err := strftime.Format(tp.tsFormat, time.Now()); err == nil {
			ts = formatted
		}
	}

	tp.logger.Info("transmitting", "at", ts, "chars", len(message))
}

func (tp *Pipeline) enqueue(samples []float32) {
	if tp.p.Attenuation > 1 {
		a := float32(tp.p.Attenuation)
		for i := range samples {
			samples[i] /= a
		}
	}

	tp.queue.Push(samples)
}

/*-------------------------------------------------------------
 *
 * Name:	generateBlock
 *
 * Purpose:	Produce one 64*Wlen sample block: a data block built
 *		from the block codec plus tone synthesis, or (for
 *		blockTail) the trailing tail spliced after the
 *		outgoing overlap from the previous block.
 *
 *--------------------------------------------------------------*/

func (tp *Pipeline) generateBlock(b blockSpec) []float32 {
	scratch := make([]float32, 65*tp.p.Wlen)

	for i, v := range tp.trail {
		scratch[i] += v
	}

	if b.kind == blockTail {
		tp.trail = make([]float32, tp.p.Wlen)

		tail := tp.generateTail()
		if tp.p.Wlen+len(tail) <= 64*tp.p.Wlen {
			for i, v := range tail {
				scratch[tp.p.Wlen+i] += v
			}
		}

		return scratch[:64*tp.p.Wlen]
	}

	syms := block.Encode(tp.p, b.piece)

	for i, sym := range syms {
		tone := dsp.Tone(tp.p, dsp.Gray(sym), tp.rng)

		start := i * tp.p.Wlen
		for j, v := range tone {
			if start+j < len(scratch) {
				scratch[start+j] += v
			}
		}
	}

	tp.trail = append([]float32(nil), scratch[64*tp.p.Wlen:65*tp.p.Wlen]...)

	return scratch[:64*tp.p.Wlen]
}

/*-------------------------------------------------------------
 *
 * Name:	generateTail / generatePreamble
 *
 * Purpose:	The four-segment shaped-sinusoid burst marking start
 *		and end of a transmission: lowest tone, highest tone,
 *		lowest tone, highest tone, each a quarter second.
 *
 *--------------------------------------------------------------*/

func (tp *Pipeline) generateTail() []float32 {
	wf := make([]float32, tp.p.SampleRate)

	quarter := tp.p.SampleRate / 4
	lowest := float64(tp.p.CentreFreq) - float64(tp.p.Bandwidth)/2 + tp.p.Fsep/2
	highest := float64(tp.p.CentreFreq) + float64(tp.p.Bandwidth)/2 - tp.p.Fsep/2

	low := tp.shapedSegment(lowest, quarter)
	high := tp.shapedSegment(highest, quarter)

	copy(wf[0:quarter], low)
	copy(wf[quarter:2*quarter], high)
	copy(wf[2*quarter:3*quarter], low)
	copy(wf[3*quarter:4*quarter], high)

	return wf
}

func (tp *Pipeline) shapedSegment(freq float64, n int) []float32 {
	shape := dsp.ShapeWindow(n)

	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(tp.p.SampleRate)
		out[i] = float32(sinHalf(freq, t) * shape[i])
	}

	return out
}

func (tp *Pipeline) generatePreamble() []float32 {
	wf := make([]float32, 64*tp.p.Wlen)

	tail := tp.generateTail()
	if len(tail) < len(wf) {
		copy(wf[len(wf)-len(tail):], tail)
	}

	return wf
}
