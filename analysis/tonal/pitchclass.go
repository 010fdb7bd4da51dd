package tonal

import (
	"math"

	"github.com/ItzJonatan/Set-List-Pro/dsp/core"
)

// PitchClass is a note name independent of octave, 0 = C through 11 = B.
type PitchClass int

// Pitch classes.
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the sharp spelling of the pitch class.
func (p PitchClass) Name() string {
	return noteNames[p.normalize()]
}

func (p PitchClass) String() string { return p.Name() }

// Transpose returns the pitch class shifted by semitones.
func (p PitchClass) Transpose(semitones int) PitchClass {
	return (p + PitchClass(semitones)).normalize()
}

func (p PitchClass) normalize() PitchClass {
	return ((p % 12) + 12) % 12
}

// ClassOf returns the pitch class nearest to freq in equal temperament
// (A4 = 440 Hz). Halfway cases round upward. The result is false for
// non-positive or non-finite frequencies.
func ClassOf(freq float64) (PitchClass, bool) {
	if freq <= 0 || !core.IsFinite(freq) {
		return 0, false
	}
	midi := int(math.Floor(core.HzToMidi(freq) + 0.5))
	return PitchClass(midi).normalize(), true
}
