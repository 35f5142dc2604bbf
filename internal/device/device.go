// internal/device/device.go
// Package device abstracts the audio output. An Output hands back one
// Stream per opened source; the Stream is the unit of start/stop control.
//
// Notification contract: done fires exactly once per activation, whatever
// ends it. A commanded Deactivate fires done inline before returning, with
// the device already quiesced. A natural drain fires done from a device
// goroutine once the source reports end of stream.
package device

import (
	"github.com/gopxl/beep/v2"
)

// Output is an audio device that plays sample streams.
type Output interface {
	// Open prepares src for playback at the given format. The returned
	// Stream starts inactive. done is called per the package contract.
	Open(format beep.Format, src beep.Streamer, done func()) (Stream, error)

	// Close releases the device.
	Close() error
}

// Stream is one playable source bound to the output.
type Stream interface {
	// Activate starts pulling samples from the source.
	Activate() error

	// Deactivate stops pulling and fires done inline. Calling it on an
	// inactive stream is a no-op.
	Deactivate() error

	// Close releases the stream without firing done.
	Close() error

	// Active reports whether the device is currently pulling samples.
	Active() bool
}
