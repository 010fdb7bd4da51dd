package engine

import "errors"

var (
	// ErrNoOutput reports an engine that cannot produce audio with the
	// requested output format.
	ErrNoOutput = errors.New("engine: no usable output")
	// ErrTornDown reports use of an engine after Teardown.
	ErrTornDown = errors.New("engine: torn down")
	// ErrUnknownParameter reports a parameter name outside the table.
	ErrUnknownParameter = errors.New("engine: unknown parameter")
	// ErrInvalidValue reports a NaN or infinite parameter value.
	ErrInvalidValue = errors.New("engine: invalid parameter value")
	// ErrInvalidTransition reports a transport command not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("engine: invalid transport transition")
	// ErrNoSource reports a load without a source.
	ErrNoSource = errors.New("engine: no source")
	// ErrNotSeekable reports a seek on a source that cannot reposition.
	ErrNotSeekable = errors.New("engine: source is not seekable")
)
