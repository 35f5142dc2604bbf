package stream

import (
	"math"
	"path/filepath"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Track owns the decoder session for one audio file plus its derived
// metadata. Exactly one Track is live per Manager at a time.
type Track struct {
	Path string

	// Title is the tag title, or the file name when the tag is absent.
	Title string

	// DurationSec is the duration in seconds rounded to one decimal. It
	// prefers the tag value and falls back to total frames over sample
	// rate; display formatting and progress ratios rely on the rounding.
	DurationSec float64

	session Session
	format  beep.Format

	// pos mirrors the session's read position. The device callback stores
	// it after every read so observers never touch the session itself.
	pos atomic.Int64
}

// NewTrack builds a Track around an open session.
func NewTrack(path string, session Session, meta Meta) *Track {
	title := meta.Title
	if title == "" {
		title = filepath.Base(path)
	}

	format := session.Format()
	var dur float64
	if meta.Duration > 0 {
		dur = roundTenth(meta.Duration.Seconds())
	} else if format.SampleRate > 0 {
		dur = roundTenth(float64(session.TotalFrames()) / float64(format.SampleRate))
	}

	t := &Track{
		Path:        path,
		Title:       title,
		DurationSec: dur,
		session:     session,
		format:      format,
	}
	t.pos.Store(int64(session.Tell()))
	return t
}

// Position returns the last observed frame position. Safe to call from any
// goroutine.
func (t *Track) Position() int {
	return int(t.pos.Load())
}

// TotalFrames returns the track length in frames.
func (t *Track) TotalFrames() int {
	return t.session.TotalFrames()
}

// SampleRate returns the decoded sample rate.
func (t *Track) SampleRate() beep.SampleRate {
	return t.format.SampleRate
}

// Channels returns the source channel count.
func (t *Track) Channels() int {
	return t.format.NumChannels
}

// Format returns the decoded audio format.
func (t *Track) Format() beep.Format {
	return t.format
}

// Close releases the decoder session. Idempotent.
func (t *Track) Close() error {
	if t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

func (t *Track) setPosition(frame int) {
	t.pos.Store(int64(frame))
}

// seek moves the session to the given frame and syncs the observer. Only
// valid while no device stream is pulling from the session.
func (t *Track) seek(frame int) error {
	if err := t.session.Seek(frame); err != nil {
		return err
	}
	t.setPosition(t.session.Tell())
	return nil
}

func roundTenth(seconds float64) float64 {
	return math.Round(seconds*10) / 10
}
