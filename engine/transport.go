package engine

import "fmt"

// State is the transport state.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event drives the transport.
type Event int

const (
	EventLoad Event = iota
	EventPlay
	EventPause
	EventStop
	EventEnd
	EventSeek
)

func (e Event) String() string {
	switch e {
	case EventLoad:
		return "load"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventStop:
		return "stop"
	case EventEnd:
		return "end"
	case EventSeek:
		return "seek"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	Idle: {
		EventLoad: Loading,
	},
	Loading: {
		EventLoad: Loading,
		EventPlay: Playing,
		EventStop: Idle,
		EventSeek: Loading,
	},
	Playing: {
		EventLoad:  Loading,
		EventPause: Paused,
		EventStop:  Idle,
		EventEnd:   Ended,
		EventSeek:  Playing,
	},
	Paused: {
		EventLoad: Loading,
		EventPlay: Playing,
		EventStop: Idle,
		EventSeek: Paused,
	},
	// seeking back from the end leaves the source paused at the new position
	Ended: {
		EventLoad: Loading,
		EventPlay: Playing,
		EventStop: Idle,
		EventSeek: Paused,
	},
}

// Next returns the state reached from s on ev.
func Next(s State, ev Event) (State, error) {
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev, s)
}

// Transport tracks the playback state of one engine.
type Transport struct {
	state State
}

// State returns the current state.
func (t *Transport) State() State { return t.state }

// Fire applies ev. On an invalid event the state is left unchanged.
func (t *Transport) Fire(ev Event) (State, error) {
	next, err := Next(t.state, ev)
	if err != nil {
		return t.state, err
	}
	t.state = next
	return next, nil
}
