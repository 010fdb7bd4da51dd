package tonal

// Chroma counts voiced windows per pitch class.
type Chroma [12]int

// Add counts one occurrence of p.
func (c *Chroma) Add(p PitchClass) {
	c[p.normalize()]++
}

// Total returns the number of counted occurrences.
func (c Chroma) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Rotated returns the histogram as floats starting at root, so index j
// holds the count of root+j.
func (c Chroma) Rotated(root PitchClass) []float64 {
	out := make([]float64, 12)
	r := int(root.normalize())
	for j := range out {
		out[j] = float64(c[(r+j)%12])
	}
	return out
}

// Observation is one voiced analysis window.
type Observation struct {
	Time  float64 // window start in seconds
	Freq  float64
	Class PitchClass
}

// Accumulator collects voiced windows inside a frequency band into a
// histogram and an ordered observation list.
type Accumulator struct {
	minFreq, maxFreq float64
	hist             Chroma
	obs              []Observation
}

// NewAccumulator accepts frequencies strictly between minFreq and maxFreq.
func NewAccumulator(minFreq, maxFreq float64) *Accumulator {
	return &Accumulator{minFreq: minFreq, maxFreq: maxFreq}
}

// Observe records freq detected at time t. Frequencies outside the band,
// including the unvoiced sentinel, are ignored.
func (a *Accumulator) Observe(t, freq float64) (Observation, bool) {
	if !(freq > a.minFreq && freq < a.maxFreq) {
		return Observation{}, false
	}
	p, ok := ClassOf(freq)
	if !ok {
		return Observation{}, false
	}

	o := Observation{Time: t, Freq: freq, Class: p}
	a.hist.Add(p)
	a.obs = append(a.obs, o)
	return o, true
}

// Chroma returns the histogram so far.
func (a *Accumulator) Chroma() Chroma { return a.hist }

// Observations returns the recorded observations in time order. The slice
// must not be modified.
func (a *Accumulator) Observations() []Observation { return a.obs }

// Reset clears the histogram and observations.
func (a *Accumulator) Reset() {
	a.hist = Chroma{}
	a.obs = a.obs[:0]
}
