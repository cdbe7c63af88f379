package txpipeline

import "math"

// sinHalf is the half-amplitude sinusoid used for tail segments
// (Purpose section 4.7: "amplitude 0.5 (pre-shape)").
func sinHalf(freq, t float64) float64 {
	return math.Sin(2*math.Pi*freq*t) / 2
}
