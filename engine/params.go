package engine

import (
	"fmt"
	"math"
	"strings"
)

// Param identifies a user-facing effect parameter.
type Param int

const (
	MasterVolume Param = iota
	Low
	Mid
	High
	Distortion
	DelayTime
	DelayFeedback
	FilterFreq
	Resonance
	Release
	Pitch
	TremoloDepth
	TremoloRate

	paramCount
)

// Descriptor describes a parameter's range and how changes are applied.
type Descriptor struct {
	Param    Param
	Name     string
	Min      float64
	Max      float64
	Default  float64
	Unit     string
	Smoothed bool // false: changes apply at once
}

var descriptors = [paramCount]Descriptor{
	{MasterVolume, "masterVolume", 0, 1.5, 1, "lin", true},
	{Low, "low", -20, 20, 0, "dB", true},
	{Mid, "mid", -20, 20, 0, "dB", true},
	{High, "high", -20, 20, 0, "dB", true},
	{Distortion, "distortion", 0, 100, 0, "k", false},
	{DelayTime, "delayTime", 0, 5, 0, "s", true},
	{DelayFeedback, "delayFeedback", 0, 0.9, 0, "lin", true},
	{FilterFreq, "filterFreq", 20, 20000, 20000, "Hz", true},
	{Resonance, "resonance", 0, 20, 0, "dB", true},
	{Release, "release", 0, 1, 0.25, "s", true},
	{Pitch, "pitch", -12, 12, 0, "st", true},
	{TremoloDepth, "tremoloDepth", 0, 1, 0, "lin", true},
	{TremoloRate, "tremoloRate", 0, 20, 4, "Hz", true},
}

// Descriptors returns the parameter table in display order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors[:])
	return out
}

// Lookup resolves a parameter name, ignoring case.
func Lookup(name string) (Param, error) {
	for _, d := range descriptors {
		if strings.EqualFold(d.Name, name) {
			return d.Param, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// Descriptor returns the table entry for p.
func (p Param) Descriptor() (Descriptor, bool) {
	if p < 0 || p >= paramCount {
		return Descriptor{}, false
	}
	return descriptors[p], true
}

func (p Param) String() string {
	if d, ok := p.Descriptor(); ok {
		return d.Name
	}
	return fmt.Sprintf("Param(%d)", int(p))
}

// Clamp limits v to the parameter range. NaN and infinities are rejected.
func (d Descriptor) Clamp(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrInvalidValue, d.Name, v)
	}
	return math.Max(d.Min, math.Min(d.Max, v)), nil
}

// ParamValue is a parameter with its current target.
type ParamValue struct {
	Descriptor
	Value float64
}
