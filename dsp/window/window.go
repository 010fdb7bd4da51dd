package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Kind selects a cosine-sum window.
type Kind int

const (
	Rectangular Kind = iota
	Hann
	Blackman
)

// terms of w(x) = sum_k c[k] cos(2 pi k x), x in [0, 1]
var terms = map[Kind][]float64{
	Rectangular: {1},
	Hann:        {0.5, -0.5},
	Blackman:    {0.42, -0.5, 0.08},
}

func (k Kind) String() string {
	switch k {
	case Rectangular:
		return "rectangular"
	case Hann:
		return "hann"
	case Blackman:
		return "blackman"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// New returns n coefficients of kind. Periodic windows (denominator n, as
// used for FFT framing) repeat seamlessly; symmetric ones (n-1) peak at
// the centre.
func New(kind Kind, n int, periodic bool) ([]float64, error) {
	c, ok := terms[kind]
	if !ok {
		return nil, fmt.Errorf("unknown window kind: %v", kind)
	}
	if n <= 0 {
		return nil, fmt.Errorf("window size must be > 0: %d", n)
	}

	den := float64(n - 1)
	if periodic || n == 1 {
		den = float64(max(n, 1))
	}

	w := make([]float64, n)
	for i := range w {
		phase := 2 * math.Pi * float64(i) / den
		for k, ck := range c {
			w[i] += ck * math.Cos(float64(k)*phase)
		}
	}
	return w, nil
}

// Apply multiplies buf by w element-wise.
func Apply(buf, w []float64) error {
	if len(buf) != len(w) {
		return fmt.Errorf("window length %d does not match frame length %d", len(w), len(buf))
	}
	vecmath.MulBlockInPlace(buf, w)
	return nil
}
