// Package audio decodes source files into mono sample buffers and adapts
// them to the render contract used by the engine.
//
// Only WAV is decodable. Unrecognised or unsupported containers and
// corrupt data are reported as capability errors ([ErrUnsupportedFormat],
// [ErrDecode]); microphone permission problems as [ErrCaptureDenied].
package audio
