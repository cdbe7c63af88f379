package block

import (
	"math"
	"strings"

	"github.com/kd9xyz/oliviamodem/dsp"
	"github.com/kd9xyz/oliviamodem/params"
)

// rmsNormalizer sets the scale of AutoScaleThreshold's energy
// normalisation: sqrt(blockLen), the RMS of the FWHT of any +-1 row.
// rowEnergy (the mean absolute coefficient) never exceeds that, so the
// scaled threshold is at most BlockThreshold; a clean one-hot row has
// energy 1 and is compared against BlockThreshold/8.
const rmsNormalizer = 8.0

/*-------------------------------------------------------------
 *
 * Name:	Decode
 *
 * Purpose:	Recover a block's characters from 64 detected,
 *		already inverse-Gray-mapped symbol numbers.
 *
 * Inputs:	p    - tuning parameters.
 *		syms - 64 symbol numbers in [0, p.Symbols).
 *
 * Returns:	the decoded string (NULs stripped) and the doubt
 *		count - rows whose WHT peak fell below the confidence
 *		threshold. The block is only "accepted" by callers
 *		when doubt == 0.
 *
 *--------------------------------------------------------------*/

func Decode(p params.Params, syms []int) (string, int) {
	if len(syms) != blockLen {
		panic("block: Decode requires exactly 64 symbols")
	}

	var out strings.Builder

	doubt := 0

	for i := 0; i < p.SPB; i++ {
		var row [blockLen]float64

		for j := 0; j < blockLen; j++ {
			bit := (syms[j] >> uint((i+j)%p.SPB)) & 1
			if bit == 1 {
				row[j] = -1
			} else {
				row[j] = 1
			}
		}

		rowSlice := row[:]
		dsp.Scramble(rowSlice, i) // descramble: the scrambler is its own inverse
		dsp.FWHT(rowSlice)

		c := 0
		best := math.Abs(row[0])

		for j := 1; j < blockLen; j++ {
			if math.Abs(row[j]) > best {
				best = math.Abs(row[j])
				c = j
			}
		}

		threshold := p.BlockThreshold
		if p.AutoScaleThreshold {
			threshold = p.BlockThreshold * rowEnergy(rowSlice) / rmsNormalizer
		}

		if best < threshold {
			doubt++
		}

		if row[c] < 0 {
			c += 64
		}

		if c != 0 {
			out.WriteByte(byte(c))
		}
	}

	return out.String(), doubt
}

func rowEnergy(row []float64) float64 {
	sum := 0.0
	for _, v := range row {
		sum += math.Abs(v)
	}

	return sum / float64(len(row))
}
