package audioio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

/*-------------------------------------------------------------
 *
 * Name:	Output
 *
 * Purpose:	Mono f32 output stream, blocksize 64*Wlen, driven by
 *		a pull callback invoked by the host audio subsystem.
 *		The callback never blocks: it dequeues one block from
 *		source, or writes silence if none is ready.
 *
 *--------------------------------------------------------------*/

type Output struct {
	stream *portaudio.Stream
	source func() ([]float32, bool)
	onState func(transmitting bool)
}

func OpenOutput(deviceName string, sampleRate float64, blockSize int, source func() ([]float32, bool), onState func(bool)) (*Output, error) {
	dev, err := findDevice(deviceName, false)
	if err != nil {
		return nil, err
	}

	out := &Output{source: source, onState: onState}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = blockSize

	stream, err := portaudio.OpenStream(params, out.fill)
	if err != nil {
		return nil, fmt.Errorf("audioio: open output stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audioio: start output stream: %w", err)
	}

	out.stream = stream

	return out, nil
}

// fill is the PortAudio callback: must not block and must complete
// within one buffer period.
func (o *Output) fill(buf []float32) {
	block, ok := o.source()
	if !ok {
		for i := range buf {
			buf[i] = 0
		}

		if o.onState != nil {
			o.onState(false)
		}

		return
	}

	n := copy(buf, block)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}

	if o.onState != nil {
		o.onState(true)
	}
}

func (o *Output) Close() error {
	return o.stream.Close()
}
