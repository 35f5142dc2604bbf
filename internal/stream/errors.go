package stream

import (
	"errors"
	"fmt"
)

// Expected control-flow errors. Callers match these with errors.Is and use
// them to drive fallback chains (e.g. resume → start → load+start).
var (
	ErrNoTrack        = errors.New("no track loaded")
	ErrNotActive      = errors.New("stream not active")
	ErrAlreadyRunning = errors.New("stream already running")
	ErrIsPaused       = errors.New("stream is paused, stop it first")
)

// DecodeError reports a track that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DeviceError reports a failure of the audio output device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
