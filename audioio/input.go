package audioio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

/*-------------------------------------------------------------
 *
 * Name:	Input
 *
 * Purpose:	Mono f32 input stream, blocksize Wlen. The receive
 *		task calls Read once per symbol window; Read blocks
 *		until the audio driver delivers a full window.
 *
 *--------------------------------------------------------------*/

type Input struct {
	stream *portaudio.Stream
	buf    []float32
}

func OpenInput(deviceName string, sampleRate float64, wlen int) (*Input, error) {
	dev, err := findDevice(deviceName, true)
	if err != nil {
		return nil, err
	}

	in := &Input{buf: make([]float32, wlen)}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = wlen

	stream, err := portaudio.OpenStream(params, in.buf)
	if err != nil {
		return nil, fmt.Errorf("audioio: open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audioio: start input stream: %w", err)
	}

	in.stream = stream

	return in, nil
}

// Read blocks until one wlen-sample window has been captured and
// copies it into dst.
func (in *Input) Read(dst []float32) error {
	if err := in.stream.Read(); err != nil {
		return fmt.Errorf("audioio: read input stream: %w", err)
	}

	copy(dst, in.buf)

	return nil
}

func (in *Input) Close() error {
	return in.stream.Close()
}
