package rxpipeline

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd9xyz/oliviamodem/params"
	"github.com/kd9xyz/oliviamodem/txpipeline"
	"github.com/kd9xyz/oliviamodem/txqueue"
)

func loopbackParams() params.Params {
	return params.Params{
		SampleRate:     8000,
		Symbols:        32,
		SPB:            5,
		Bandwidth:      1000,
		CentreFreq:     1500,
		Fsep:           1000.0 / 32,
		Wlen:           256,
		Attenuation:    1,
		Preamble:       false,
		BlockThreshold: 20,
	}
}

// concatStream feeds pre-generated samples to the receiver window by
// window, then returns errStreamDone.
type concatStream struct {
	samples []float32
	pos     int
}

var errStreamDone = errors.New("rxpipeline test: stream exhausted")

func (s *concatStream) Read(buf []float32) error {
	if s.pos+len(buf) > len(s.samples) {
		return errStreamDone
	}

	copy(buf, s.samples[s.pos:s.pos+len(buf)])
	s.pos += len(buf)

	return nil
}

func txLoopback(t *testing.T, p params.Params, message string) []float32 {
	t.Helper()

	q := txqueue.New()
	tp := txpipeline.New(p, q, rand.New(rand.NewSource(42)), nil, nil, "")
	require.NoError(t, tp.Send(message))

	var samples []float32
	for {
		b, ok := q.TryPop()
		if !ok {
			break
		}
		samples = append(samples, b...)
	}

	return samples
}

// TestLoopbackDecodesMessage is scenario E4: looping TxPipeline
// output directly into RxPipeline for a noiseless channel recovers
// the original message via exactly one host callback.
func TestLoopbackDecodesMessage(t *testing.T) {
	p := loopbackParams()
	samples := txLoopback(t, p, "TEST5")

	var got []string
	rp := New(p, nil, func(msg string) { got = append(got, msg) })

	stream := &concatStream{samples: samples}
	err := rp.Run(context.Background(), stream)
	require.ErrorIs(t, err, errStreamDone)

	require.Len(t, got, 1)
	assert.Equal(t, "TEST5", got[0])
}

// TestLoopbackStripsPadding is scenario E5: "HI" padded to "HI\0\0\0"
// decodes back to "HI" with NULs stripped.
func TestLoopbackStripsPadding(t *testing.T) {
	p := loopbackParams()
	samples := txLoopback(t, p, "HI")

	var got []string
	rp := New(p, nil, func(msg string) { got = append(got, msg) })

	stream := &concatStream{samples: samples}
	err := rp.Run(context.Background(), stream)
	require.ErrorIs(t, err, errStreamDone)

	require.Len(t, got, 1)
	assert.Equal(t, "HI", got[0])
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p := loopbackParams()
	rp := New(p, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &concatStream{samples: make([]float32, 100*p.Wlen)}
	err := rp.Run(ctx, stream)
	assert.ErrorIs(t, err, context.Canceled)
}
