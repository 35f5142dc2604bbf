// internal/stream/manager.go
package stream

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/hbarrett/cadence/internal/device"
)

// Config holds the collaborators and knobs for a Manager.
type Config struct {
	Opener Opener
	Output device.Output

	// Gain is shared with the owner so volume changes reach the device
	// callback without going through the Manager. Nil means unity gain.
	Gain *Gain

	// Progress is the throttled position callback, invoked every
	// ProgressEvery device callbacks (default 2). May be nil.
	Progress      ProgressFunc
	ProgressEvery int

	// OnStreamDone is the stream finished notification. The device fires
	// it once per activation, for any stop reason: inline from a blocking
	// Deactivate, or from a device goroutine when the track drains
	// naturally. The argument is the track the stream was bound to.
	OnStreamDone func(*Track)
}

// Manager is the stream state machine. It owns the live Track and its device
// stream and enforces which operations are legal in which state.
//
// Manager is not safe for concurrent use; the playback controller serializes
// access. The device callback never calls into the Manager.
type Manager struct {
	opener Opener
	output device.Output
	gain   *Gain

	progress      ProgressFunc
	progressEvery int
	onStreamDone  func(*Track)

	state State
	track *Track
	src   *source
	strm  device.Stream
}

// NewManager creates a Manager in the Unloaded state.
func NewManager(cfg Config) *Manager {
	gain := cfg.Gain
	if gain == nil {
		gain = NewGain(1)
	}
	return &Manager{
		opener:        cfg.Opener,
		output:        cfg.Output,
		gain:          gain,
		progress:      cfg.Progress,
		progressEvery: cfg.ProgressEvery,
		onStreamDone:  cfg.OnStreamDone,
		state:         Unloaded,
	}
}

// Load opens the track at path and binds it to a fresh device stream,
// leaving the machine Stopped. An active stream is fully torn down first.
// On failure the previous track, if any, remains loaded and Stopped.
func (m *Manager) Load(path string) error {
	if m.state.IsActive() {
		if err := m.strm.Deactivate(); err != nil {
			return m.fail("deactivate", err)
		}
		m.rewind()
		m.state = Stopped
	}

	session, meta, err := m.opener.Open(path)
	if err != nil {
		return &DecodeError{Path: path, Err: err}
	}

	track := NewTrack(path, session, meta)
	src := newSource(track, m.gain, m.progress, m.progressEvery)
	strm, err := m.output.Open(track.Format(), src, func() {
		if m.onStreamDone != nil {
			m.onStreamDone(track)
		}
	})
	if err != nil {
		track.Close()
		return &DeviceError{Op: "open", Err: err}
	}

	m.closeCurrent()
	m.track = track
	m.src = src
	m.strm = strm
	m.state = Stopped

	zlog.Debug().Msgf("stream: loaded %q (%.1fs, %d frames @ %d Hz)",
		track.Title, track.DurationSec, track.TotalFrames(), track.SampleRate())
	return nil
}

// Start activates the stream from the session's current position, normally
// frame 0. Only legal while Stopped.
func (m *Manager) Start() error {
	switch m.state {
	case Unloaded:
		return ErrNoTrack
	case Playing:
		return ErrAlreadyRunning
	case Paused:
		return ErrIsPaused
	}

	m.src.reset()
	if err := m.strm.Activate(); err != nil {
		return m.fail("activate", err)
	}
	m.state = Playing
	zlog.Debug().Msgf("stream: playing %q", m.track.Title)
	return nil
}

// Stop deactivates the stream and rewinds to frame 0, so a later Start
// plays from the beginning. Deactivation blocks until the device has
// stopped invoking the callback.
func (m *Manager) Stop() error {
	switch m.state {
	case Unloaded:
		return ErrNoTrack
	case Stopped:
		return ErrNotActive
	}

	if err := m.strm.Deactivate(); err != nil {
		return m.fail("deactivate", err)
	}
	m.rewind()
	m.state = Stopped
	zlog.Debug().Msgf("stream: stopped %q", m.track.Title)
	return nil
}

// PauseResume toggles between Playing and Paused. Pausing deactivates the
// stream but keeps the session position; resuming reactivates from it.
func (m *Manager) PauseResume() error {
	switch m.state {
	case Unloaded:
		return ErrNoTrack
	case Stopped:
		// Mirror the device-level stop even though nothing is running.
		_ = m.strm.Deactivate()
		return ErrNotActive
	case Playing:
		if err := m.strm.Deactivate(); err != nil {
			return m.fail("deactivate", err)
		}
		m.state = Paused
		zlog.Debug().Msgf("stream: paused %q at frame %d", m.track.Title, m.track.Position())
		return nil
	default: // Paused
		if err := m.strm.Activate(); err != nil {
			return m.fail("activate", err)
		}
		m.state = Playing
		zlog.Debug().Msgf("stream: resumed %q at frame %d", m.track.Title, m.track.Position())
		return nil
	}
}

// SeekTo moves the session to the given frame, clamped to the track bounds.
// Legal while Stopped or Paused; while Playing the caller pauses first so
// the device never reads a session mid-seek.
func (m *Manager) SeekTo(frame int) error {
	switch m.state {
	case Unloaded:
		return ErrNoTrack
	case Playing:
		return ErrAlreadyRunning
	}

	if frame < 0 {
		frame = 0
	}
	if total := m.track.TotalFrames(); frame > total {
		frame = total
	}
	if err := m.track.seek(frame); err != nil {
		return &DecodeError{Path: m.track.Path, Err: err}
	}
	m.src.reset()
	return nil
}

// FinishStream reconciles the machine after the device reported the stream
// inactive on its own (natural end of track or a mid-stream failure). The
// machine lands Stopped with the position rewound; no-op unless active.
func (m *Manager) FinishStream() {
	if !m.state.IsActive() {
		return
	}
	m.rewind()
	m.state = Stopped
}

// StreamErr returns the error recorded by the device callback, if the
// current stream ended on a session read failure.
func (m *Manager) StreamErr() error {
	if m.src == nil {
		return nil
	}
	return m.src.Err()
}

// State returns the current machine state.
func (m *Manager) State() State {
	return m.state
}

// Current returns the loaded track, or nil while Unloaded.
func (m *Manager) Current() *Track {
	return m.track
}

// Close tears down the stream and session and returns to Unloaded.
func (m *Manager) Close() error {
	if m.state == Unloaded {
		return nil
	}
	if m.state.IsActive() {
		_ = m.strm.Deactivate()
	}
	m.closeCurrent()
	m.track = nil
	m.src = nil
	m.strm = nil
	m.state = Unloaded
	return nil
}

// rewind seeks the inactive session back to frame 0 and rearms the
// source. Seek failures only leave the position where it was.
func (m *Manager) rewind() {
	if err := m.track.seek(0); err != nil {
		zlog.Warn().Msgf("stream: rewind %q: %v", m.track.Path, err)
	}
	m.src.reset()
}

func (m *Manager) closeCurrent() {
	if m.strm != nil {
		if err := m.strm.Close(); err != nil {
			zlog.Warn().Msgf("stream: close stream: %v", err)
		}
	}
	if m.track != nil {
		if err := m.track.Close(); err != nil {
			zlog.Warn().Msgf("stream: close %q: %v", m.track.Path, err)
		}
	}
}

// fail wraps a device failure and forces the machine to a safe state: the
// stream is considered dead, the position rewound, the machine Stopped.
func (m *Manager) fail(op string, err error) error {
	if m.track != nil {
		m.rewind()
		m.state = Stopped
	}
	return &DeviceError{Op: op, Err: err}
}
