// internal/playback/events.go
package playback

import "github.com/hbarrett/cadence/internal/stream"

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous stream.State
	Current  stream.State
}

// TrackChange is emitted when a different track is loaded.
//
// Emitted by:
//   - Load: commanded loads
//   - auto-advance: when a track ends naturally or is skipped
//
// NOT emitted by pause, resume or stop; those only move state.
type TrackChange struct {
	PreviousIndex int
	Index         int
	Path          string
	Title         string
	DurationSec   float64
}

// PositionChange is emitted when a seek moves the playback position.
// Continuous progress during playback goes through the progress callback
// instead, throttled at the stream layer.
type PositionChange struct {
	Frame int
	Total int
}

// ErrorEvent is emitted when an operation fails outside a command call,
// such as a stream aborting mid-track or an exhausted auto-advance.
type ErrorEvent struct {
	Operation string
	Path      string
	Err       error
}
