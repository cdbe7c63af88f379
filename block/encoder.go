// Package block implements the Olivia block codec: a block is 64
// consecutive symbols carrying SPB 7-bit characters, built from a
// redundancy transform, a scrambler and a bit-interleave schedule.
// Gray mapping of symbols to tones is done by txpipeline and
// rxpipeline, not here.
package block

import (
	"github.com/kd9xyz/oliviamodem/dsp"
	"github.com/kd9xyz/oliviamodem/params"
)

const blockLen = 64

/*-------------------------------------------------------------
 *
 * Name:	Encode
 *
 * Purpose:	Turn one block's worth of characters into 64 symbol
 *		numbers ready for tone synthesis.
 *
 * Inputs:	p     - tuning parameters (SPB determines piece length).
 *		piece - exactly p.SPB bytes; any byte > 127 is treated
 *			as 0 (NUL padding).
 *
 * Returns:	64 symbol numbers in [0, p.Symbols).
 *
 *--------------------------------------------------------------*/

func Encode(p params.Params, piece []byte) [blockLen]int {
	if len(piece) != p.SPB {
		panic("block: Encode requires exactly SPB bytes")
	}

	w := make([][blockLen]float64, p.SPB)

	for i := 0; i < p.SPB; i++ {
		q := int(piece[i])
		if q > 127 {
			q = 0
		}

		if q < 64 {
			w[i][q] = 1
		} else {
			w[i][q-64] = -1
		}

		row := w[i][:]
		dsp.IFWHT(row)
		dsp.Scramble(row, i)
	}

	// Bit-interleave: row = (100*spb + bis - sym) mod spb.
	var syms [blockLen]int

	for sym := 0; sym < blockLen; sym++ {
		v := 0

		for bis := 0; bis < p.SPB; bis++ {
			row := (100*p.SPB + bis - sym) % p.SPB

			bit := 0
			if w[row][sym] < 0 {
				bit = 1
			}

			v |= bit << uint(bis)
		}

		syms[sym] = v
	}

	return syms
}
