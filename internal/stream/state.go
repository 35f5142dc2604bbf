// internal/stream/state.go
package stream

// State represents the stream state machine.
//
// The machine has four states with the following valid transitions:
//
//	┌──────────┐      load       ┌──────────┐
//	│ Unloaded │ ───────────────▶│  Stopped │◀──────────┐
//	└──────────┘                 └──────────┘           │
//	                              ▲   │                 │
//	                         stop │   │ start           │ stop
//	                              │   ▼                 │
//	                             ┌──────────┐           │
//	                             │  Playing │           │
//	                             └──────────┘           │
//	                              │   ▲                 │
//	                        pause │   │ resume          │
//	                              ▼   │                 │
//	                             ┌──────────┐           │
//	                             │  Paused  │───────────┘
//	                             └──────────┘
//
// Valid transitions:
//   - Unloaded → Stopped (via Load)
//   - Stopped  → Playing (via Start)
//   - Playing  → Paused  (via PauseResume)
//   - Playing  → Stopped (via Stop, position reset to 0)
//   - Paused   → Playing (via PauseResume)
//   - Paused   → Stopped (via Stop, position reset to 0)
//
// Load is accepted in every state; from Playing or Paused it tears the
// active stream down first. Start while Paused is rejected so a paused
// position is never discarded without an explicit Stop.
type State int

const (
	Unloaded State = iota
	Stopped
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Unloaded:
		return "Unloaded"
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Loaded returns true if a track is loaded (any state but Unloaded).
func (s State) Loaded() bool {
	return s != Unloaded
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanStart returns true if the state allows starting from frame 0.
func (s State) CanStart() bool {
	return s == Stopped
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}
