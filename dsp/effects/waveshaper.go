package effects

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	// DistortionCurveSize is the number of points in a generated curve.
	DistortionCurveSize = 44100

	minDistortionAmount = 0.0
	maxDistortionAmount = 1000.0
)

// DistortionCurve returns an n-point transfer curve over x in [-1, 1]:
//
//	curve[i] = (3+k) * x * 20deg / (pi + k*|x|),  x = 2i/n - 1
//
// k = 0 yields a linear (odd-symmetric) curve; larger k bends it into a
// harder clip.
func DistortionCurve(amount float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	const deg = math.Pi / 180
	curve := make([]float64, n)
	for i := range curve {
		x := float64(i)*2/float64(n) - 1
		curve[i] = (3 + amount) * x * 20 * deg / (math.Pi + amount*math.Abs(x))
	}
	return curve
}

// Waveshaper maps each input sample through a transfer curve. Point i of an
// n-point curve is the output for x = 2i/n - 1; inputs between points are
// interpolated linearly and inputs past either end hold the end value.
//
// The curve pointer is swapped atomically, so a new curve can be built on a
// control goroutine and installed while audio is running.
type Waveshaper struct {
	amount float64
	curve  atomic.Pointer[[]float64]
}

// NewWaveshaper returns a waveshaper with the curve for amount.
func NewWaveshaper(amount float64) (*Waveshaper, error) {
	w := &Waveshaper{}
	if err := w.SetAmount(amount); err != nil {
		return nil, err
	}
	return w, nil
}

// SetAmount regenerates the curve for a new distortion amount. The change
// is immediate: curves are never blended.
func (w *Waveshaper) SetAmount(amount float64) error {
	if amount < minDistortionAmount || amount > maxDistortionAmount ||
		math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("distortion amount must be in [%g, %g]: %f",
			minDistortionAmount, maxDistortionAmount, amount)
	}
	curve := DistortionCurve(amount, DistortionCurveSize)
	w.amount = amount
	w.curve.Store(&curve)
	return nil
}

// SetCurve installs an arbitrary transfer curve. A nil or empty curve
// makes the shaper pass samples through unchanged.
func (w *Waveshaper) SetCurve(curve []float64) {
	w.curve.Store(&curve)
}

// Amount returns the distortion amount of the last generated curve.
func (w *Waveshaper) Amount() float64 { return w.amount }

// Curve returns the active curve. Callers must not modify it.
func (w *Waveshaper) Curve() []float64 {
	if p := w.curve.Load(); p != nil {
		return *p
	}
	return nil
}

// ProcessSample shapes one sample.
func (w *Waveshaper) ProcessSample(x float64) float64 {
	return shape(w.Curve(), x)
}

// ProcessInPlace shapes buf in place.
func (w *Waveshaper) ProcessInPlace(buf []float64) {
	curve := w.Curve()
	for i, x := range buf {
		buf[i] = shape(curve, x)
	}
}

func shape(curve []float64, x float64) float64 {
	n := len(curve)
	if n == 0 {
		return x
	}
	if n == 1 {
		return curve[0]
	}

	// same grid as DistortionCurve: point i sits at x = 2i/n - 1, so x = 0
	// reads curve[n/2] exactly
	v := float64(n) * 0.5 * (x + 1)
	if !(v > 0) {
		return curve[0]
	}
	if v >= float64(n-1) {
		return curve[n-1]
	}

	k := int(v)
	f := v - float64(k)
	return curve[k] + (curve[k+1]-curve[k])*f
}
