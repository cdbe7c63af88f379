// Package audioio adapts PortAudio streams to the fixed-block
// contracts the Olivia pipelines need: wlen-sample blocking reads on
// input, 64*wlen-sample pull callbacks on output.
package audioio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Interface to the sound card. Two streams: an input
 *		stream the receive task reads fixed windows from, and
 *		an output stream the host audio subsystem pulls fixed
 *		blocks from via a non-blocking callback.
 *
 *---------------------------------------------------------------*/

func init() {
	// PortAudio is initialized once for the process lifetime; streams
	// are opened and closed per Controller.Start/Stop, not the library
	// itself.
	_ = portaudio.Initialize()
}

func findDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	if name == "" {
		host, err := portaudio.DefaultHostApi()
		if err != nil {
			return nil, fmt.Errorf("audioio: default host api: %w", err)
		}

		if input {
			return host.DefaultInputDevice, nil
		}

		return host.DefaultOutputDevice, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audioio: enumerate devices: %w", err)
	}

	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}

	return nil, fmt.Errorf("audioio: no such device %q", name)
}
