package txpipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd9xyz/oliviamodem/params"
	"github.com/kd9xyz/oliviamodem/txqueue"
)

func testParams() params.Params {
	return params.Params{
		SampleRate:     8000,
		Symbols:        32,
		SPB:            5,
		Bandwidth:      1000,
		CentreFreq:     1500,
		Fsep:           1000.0 / 32,
		Wlen:           256,
		Attenuation:    1,
		Preamble:       true,
		BlockThreshold: 24,
	}
}

type countingKeyer struct {
	ons, offs int
}

func (k *countingKeyer) KeyOn() error  { k.ons++; return nil }
func (k *countingKeyer) KeyOff() error { k.offs++; return nil }

func drain(q *txqueue.Queue) [][]float32 {
	var blocks [][]float32
	for {
		b, ok := q.TryPop()
		if !ok {
			return blocks
		}
		blocks = append(blocks, b)
	}
}

// TestSendEmptyMessageBlockCount is scenario E1: send("") with
// preamble enabled enqueues exactly a preamble block and a tail
// block.
func TestSendEmptyMessageBlockCount(t *testing.T) {
	p := testParams()
	q := txqueue.New()
	keyer := &countingKeyer{}
	tp := New(p, q, rand.New(rand.NewSource(1)), keyer, nil, "")

	require.NoError(t, tp.Send(""))

	blocks := drain(q)
	require.Len(t, blocks, 2)

	for _, b := range blocks {
		assert.Equal(t, 64*p.Wlen, len(b))
	}

	assert.Equal(t, 1, keyer.ons)
	assert.Equal(t, 1, keyer.offs)
}

// TestSendOnePieceBlockCount is scenario E2: "hello" is exactly one
// SPB=5 piece, so preamble + 1 data block + tail = 3 blocks.
func TestSendOnePieceBlockCount(t *testing.T) {
	p := testParams()
	q := txqueue.New()
	tp := New(p, q, rand.New(rand.NewSource(1)), nil, nil, "")

	require.NoError(t, tp.Send("hello"))

	assert.Len(t, drain(q), 3)
}

// TestSendTwoPieceBlockCount is scenario E3: "hello!" is 6 characters,
// splitting into 2 pieces (the second padded with NUL), so
// preamble + 2 data blocks + tail = 4 blocks.
func TestSendTwoPieceBlockCount(t *testing.T) {
	p := testParams()
	q := txqueue.New()
	tp := New(p, q, rand.New(rand.NewSource(1)), nil, nil, "")

	require.NoError(t, tp.Send("hello!"))

	assert.Len(t, drain(q), 4)
}

func TestEveryEnqueuedBlockIsExactSize(t *testing.T) {
	p := testParams()
	q := txqueue.New()
	tp := New(p, q, rand.New(rand.NewSource(1)), nil, nil, "")

	require.NoError(t, tp.Send("a longer message spanning several blocks of payload"))

	for _, b := range drain(q) {
		assert.Equal(t, 64*p.Wlen, len(b))
	}
}

// TestPreambleTailPlacement is property 6: generatePreamble is all
// zeros for the leading samples and a shaped tail thereafter, since
// sample_rate (8000) < 64*wlen (16384) for these test params.
func TestPreambleTailPlacement(t *testing.T) {
	p := testParams()
	require.Less(t, p.SampleRate, 64*p.Wlen)

	q := txqueue.New()
	tp := New(p, q, rand.New(rand.NewSource(1)), nil, nil, "")

	preamble := tp.generatePreamble()
	leadingZeros := 64*p.Wlen - p.SampleRate

	for i := 0; i < leadingZeros; i++ {
		assert.Equalf(t, float32(0), preamble[i], "index %d", i)
	}

	nonZeroFound := false
	for i := leadingZeros; i < len(preamble); i++ {
		if preamble[i] != 0 {
			nonZeroFound = true
			break
		}
	}
	assert.True(t, nonZeroFound, "expected a non-zero shaped tail")
}
