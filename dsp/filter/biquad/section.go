package biquad

import (
	"math"
	"math/cmplx"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
)

// Coefficients of one second-order section, normalized so a0 = 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity returns pass-through coefficients.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// MagnitudeDB returns the gain of the section at freqHz in dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freqHz/sampleRate))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return core.LinearToDB(cmplx.Abs(num / den))
}

// Section runs Coefficients in transposed direct form II.
type Section struct {
	Coefficients

	s1, s2 float64
}

// NewSection returns a section at rest.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients changes the transfer function and keeps the state, so
// swept parameters do not click.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = s.B1*x - s.A1*y + s.s2
	s.s2 = s.B2*x - s.A2*y
	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2
	for i, x := range buf {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		buf[i] = y
	}
	s.s1, s.s2 = core.FlushDenormals(s1), core.FlushDenormals(s2)
}

// Reset clears the state.
func (s *Section) Reset() {
	s.s1, s.s2 = 0, 0
}

// State returns the two state variables.
func (s *Section) State() [2]float64 {
	return [2]float64{s.s1, s.s2}
}
