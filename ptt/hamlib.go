package ptt

import (
	"fmt"

	hamlib "github.com/xylo04/goHamlib"
)

/*-------------------------------------------------------------
 *
 * Purpose:	PTT via Hamlib CAT control, for radios keyed over a
 *		serial or USB CAT interface rather than a dedicated
 *		PTT line. The Go-native successor to the original
 *		reference implementation's "rigctl" subprocess bridge.
 *
 *--------------------------------------------------------------*/

// HamlibKeyer toggles PTT on a rig opened through Hamlib's Go binding.
type HamlibKeyer struct {
	rig *hamlib.Rig
}

// NewHamlibKeyer opens the given Hamlib rig model on device (e.g.
// "/dev/ttyUSB0" or a rigctld host:port).
func NewHamlibKeyer(model int, device string) (*HamlibKeyer, error) {
	rig := hamlib.RigInit(model)
	if rig == nil {
		return nil, fmt.Errorf("ptt: unknown hamlib rig model %d", model)
	}

	rig.SetConf("rig_pathname", device)

	if err := rig.Open(); err != nil {
		return nil, fmt.Errorf("ptt: hamlib open %s: %w", device, err)
	}

	return &HamlibKeyer{rig: rig}, nil
}

func (k *HamlibKeyer) KeyOn() error {
	return k.rig.SetPTT(hamlib.RIG_VFO_CURR, hamlib.RIG_PTT_ON)
}

func (k *HamlibKeyer) KeyOff() error {
	return k.rig.SetPTT(hamlib.RIG_VFO_CURR, hamlib.RIG_PTT_OFF)
}

// Close shuts down the rig connection.
func (k *HamlibKeyer) Close() error {
	return k.rig.Close()
}
