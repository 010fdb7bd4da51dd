package interp

// Mode names a fractional-read interpolator.
type Mode int

const (
	// Linear blends the two surrounding samples.
	Linear Mode = iota
	// Hermite fits a Catmull-Rom cubic through four samples.
	Hermite
)

var modeNames = [...]string{Linear: "linear", Hermite: "hermite"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// Linear2 returns the point a fraction t of the way from x0 to x1.
func Linear2(t, x0, x1 float64) float64 {
	return (1-t)*x0 + t*x1
}

// Hermite4 evaluates the cubic through x0 and x1 whose slopes at those
// points are taken from the neighbours xm1 and x2. t runs from 0 at x0
// to 1 at x1.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	slope0 := (x1 - xm1) / 2
	slope1 := (x2 - x0) / 2
	d := x1 - x0
	a := slope0 + slope1 - 2*d
	b := 3*d - 2*slope0 - slope1
	return x0 + t*(slope0+t*(b+t*a))
}
