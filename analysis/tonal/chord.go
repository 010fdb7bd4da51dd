package tonal

import (
	"math"
	"sort"
)

// DefaultDebounceSeconds is the minimum spacing between chord events.
const DefaultDebounceSeconds = 1.5

// Quality is the triad type implied by a scale degree.
type Quality int

const (
	QualityMajor Quality = iota
	QualityMinor
	QualityDiminished
)

// Suffix returns the chord-symbol suffix: "", "m" or "dim".
func (q Quality) Suffix() string {
	switch q {
	case QualityMinor:
		return "m"
	case QualityDiminished:
		return "dim"
	default:
		return ""
	}
}

func (q Quality) String() string {
	switch q {
	case QualityMinor:
		return "minor"
	case QualityDiminished:
		return "diminished"
	default:
		return "major"
	}
}

// QualityOf returns the diatonic triad quality of root in key. Degrees
// outside the diatonic set fall back to the key's own mode.
func QualityOf(key Key, root PitchClass) Quality {
	interval := (root - key.Root).normalize()
	if key.Mode == Minor {
		switch interval {
		case 0, 5, 7:
			return QualityMinor
		case 3, 8, 10:
			return QualityMajor
		case 2:
			return QualityDiminished
		default:
			return QualityMinor
		}
	}

	switch interval {
	case 0, 5, 7:
		return QualityMajor
	case 2, 4, 9:
		return QualityMinor
	case 11:
		return QualityDiminished
	default:
		return QualityMajor
	}
}

// ChordEvent marks the start of a chord in the timeline.
type ChordEvent struct {
	Time    float64
	Root    PitchClass
	Quality Quality
}

// Name returns the chord symbol, e.g. "F#m".
func (e ChordEvent) Name() string {
	return e.Root.Name() + e.Quality.Suffix()
}

func (e ChordEvent) String() string { return e.Name() }

// LabelerOption configures a Labeler.
type LabelerOption func(*Labeler)

// WithDebounce sets the minimum time between emitted events. Negative
// values are treated as zero.
func WithDebounce(seconds float64) LabelerOption {
	return func(l *Labeler) {
		l.debounce = math.Max(seconds, 0)
	}
}

// Labeler converts observations into chord events one at a time. An event
// is emitted when the chord name changes and more than the debounce
// interval has passed since the previous event.
type Labeler struct {
	key      Key
	debounce float64
	lastName string
	lastTime float64
}

// NewLabeler returns a labeler for key.
func NewLabeler(key Key, opts ...LabelerOption) *Labeler {
	l := &Labeler{key: key, debounce: DefaultDebounceSeconds}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.Reset()
	return l
}

// Key returns the key chords are labeled against.
func (l *Labeler) Key() Key { return l.key }

// Observe returns the event triggered by o, if any. Unknown keys never
// produce events.
func (l *Labeler) Observe(o Observation) (ChordEvent, bool) {
	if !l.key.Known {
		return ChordEvent{}, false
	}

	ev := ChordEvent{Time: o.Time, Root: o.Class.normalize(), Quality: QualityOf(l.key, o.Class)}
	name := ev.Name()
	if name == l.lastName || !(o.Time-l.lastTime > l.debounce) {
		return ChordEvent{}, false
	}

	l.lastName = name
	l.lastTime = o.Time
	return ev, true
}

// Reset forgets the previous event.
func (l *Labeler) Reset() {
	l.lastName = ""
	l.lastTime = math.Inf(-1)
}

// LabelChords labels a complete observation sequence.
func LabelChords(key Key, observations []Observation, opts ...LabelerOption) []ChordEvent {
	l := NewLabeler(key, opts...)
	var events []ChordEvent
	for _, o := range observations {
		if ev, ok := l.Observe(o); ok {
			events = append(events, ev)
		}
	}
	return events
}

// ChordAt returns the event sounding at time t: the last event starting at
// or before t.
func ChordAt(events []ChordEvent, t float64) (ChordEvent, bool) {
	i := sort.Search(len(events), func(i int) bool { return events[i].Time > t })
	if i == 0 {
		return ChordEvent{}, false
	}
	return events[i-1], true
}
