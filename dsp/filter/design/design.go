package design

import (
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
	"github.com/ItzJonatan/Set-List-Pro/dsp/filter/biquad"
)

// ShelfQ is the quality factor of a shelf with slope S = 1, the fixed
// slope of the host shelving filters.
const ShelfQ = 1 / math.Sqrt2

// prelude holds the intermediate terms every cookbook design shares.
type prelude struct {
	cos   float64 // cos(w0)
	alpha float64 // sin(w0) / 2Q
	amp   float64 // 10^(gain/40)
}

// newPrelude returns false for frequencies outside (0, Nyquist) or an
// unusable sample rate. Non-positive Q falls back to ShelfQ.
func newPrelude(freq, q, gainDB, sampleRate float64) (prelude, bool) {
	if !(sampleRate > 0) || !core.IsFinite(sampleRate) {
		return prelude{}, false
	}
	if !(freq > 0) || freq >= sampleRate/2 || !core.IsFinite(freq) {
		return prelude{}, false
	}
	if !(q > 0) || !core.IsFinite(q) {
		q = ShelfQ
	}
	w0 := 2 * math.Pi * freq / sampleRate
	return prelude{
		cos:   math.Cos(w0),
		alpha: math.Sin(w0) / (2 * q),
		amp:   math.Pow(10, gainDB/40),
	}, true
}

// ResonantLowpass designs the lowpass of the host graph, whose resonance
// is given in dB: 0 dB is a Q = 1 corner and positive values raise a peak
// of that height at the cutoff. A cutoff at or above Nyquist passes the
// signal unchanged.
func ResonantLowpass(freq, resonanceDB, sampleRate float64) biquad.Coefficients {
	if sampleRate > 0 && freq >= sampleRate/2 {
		return biquad.Identity()
	}
	p, ok := newPrelude(freq, core.DBToLinear(resonanceDB), 0, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	b1 := 1 - p.cos
	return normalize(b1/2, b1, b1/2, 1+p.alpha, -2*p.cos, 1-p.alpha)
}

// Peak designs a peaking band with gainDB at freq.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, q, gainDB, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	return normalize(
		1+p.alpha*p.amp, -2*p.cos, 1-p.alpha*p.amp,
		1+p.alpha/p.amp, -2*p.cos, 1-p.alpha/p.amp,
	)
}

// LowShelf designs a low shelf with gainDB below freq.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, q, gainDB, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	a := p.amp
	beta := 2 * math.Sqrt(a) * p.alpha
	up, down := (a+1)-(a-1)*p.cos, (a+1)+(a-1)*p.cos
	return normalize(
		a*(up+beta), 2*a*((a-1)-(a+1)*p.cos), a*(up-beta),
		down+beta, -2*((a-1)+(a+1)*p.cos), down-beta,
	)
}

// HighShelf designs a high shelf with gainDB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, q, gainDB, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}
	a := p.amp
	beta := 2 * math.Sqrt(a) * p.alpha
	up, down := (a+1)+(a-1)*p.cos, (a+1)-(a-1)*p.cos
	return normalize(
		a*(up+beta), -2*a*((a-1)+(a+1)*p.cos), a*(up-beta),
		down+beta, 2*((a-1)-(a+1)*p.cos), down-beta,
	)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return biquad.Coefficients{}
	}
	return biquad.Coefficients{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}
