package tonal

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mode is major or minor.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "Minor"
	}
	return "Major"
}

// Krumhansl-Schmuckler key profiles, indexed by interval above the tonic.
var (
	MajorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	MinorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Key is a tonal centre. The zero Key is not Known.
type Key struct {
	Root  PitchClass
	Mode  Mode
	Known bool
}

// Unknown is reported when no voiced window was seen.
var Unknown = Key{}

// NewKey returns a known key.
func NewKey(root PitchClass, mode Mode) Key {
	return Key{Root: root.normalize(), Mode: mode, Known: true}
}

func (k Key) String() string {
	if !k.Known {
		return "Unknown"
	}
	return fmt.Sprintf("%s %s", k.Root.Name(), k.Mode)
}

// Transpose shifts a known key by semitones; Unknown stays Unknown.
func (k Key) Transpose(semitones int) Key {
	if !k.Known {
		return k
	}
	return NewKey(k.Root.Transpose(semitones), k.Mode)
}

// Scores returns the profile correlation of hist against every root, for
// major and minor.
func Scores(hist Chroma) (major, minor [12]float64) {
	majorProfile := MajorProfile[:]
	minorProfile := MinorProfile[:]
	for r := range 12 {
		rotated := hist.Rotated(PitchClass(r))
		major[r] = floats.Dot(rotated, majorProfile)
		minor[r] = floats.Dot(rotated, minorProfile)
	}
	return major, minor
}

// EstimateKey returns the best-correlated key. Roots are visited from C
// upward, major before minor; a later candidate must score strictly higher
// to win. An empty histogram yields Unknown.
func EstimateKey(hist Chroma) Key {
	if hist.Total() == 0 {
		return Unknown
	}

	major, minor := Scores(hist)
	best := Unknown
	bestScore := 0.0
	for r := range 12 {
		if !best.Known || major[r] > bestScore {
			best, bestScore = NewKey(PitchClass(r), Major), major[r]
		}
		if minor[r] > bestScore {
			best, bestScore = NewKey(PitchClass(r), Minor), minor[r]
		}
	}
	return best
}
