// internal/stream/interface.go
package stream

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Session is one open decoder session. It is read by the device callback
// while a stream is active and by the command thread otherwise, never both
// at once; the Manager's blocking teardown enforces that.
type Session interface {
	// Read fills buf with the next frames and returns how many frames it
	// produced. At end of data it returns 0 with a nil error; decoders
	// may also keep reporting the final position instead, which callers
	// must treat the same.
	Read(buf [][2]float64) (int, error)

	// Seek moves the read position to the given frame.
	Seek(frame int) error

	// Tell returns the current read position in frames.
	Tell() int

	// TotalFrames returns the total length in frames.
	TotalFrames() int

	// Format describes the decoded audio (sample rate, channel count).
	Format() beep.Format

	// Close releases the session. Read must not be called afterwards.
	Close() error
}

// Meta is tag-derived metadata for a track. Zero values mean the tag is
// absent and fallbacks apply.
type Meta struct {
	Title    string
	Duration time.Duration
}

// Opener opens decoder sessions for track locations.
type Opener interface {
	Open(path string) (Session, Meta, error)
}

// ProgressFunc receives throttled position updates from the device callback.
// It runs on the device goroutine and must not call back into the playback
// stack; formatting and allocation are fine.
type ProgressFunc func(t *Track, frame int)
