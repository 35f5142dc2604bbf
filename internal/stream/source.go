package stream

import (
	"github.com/gopxl/beep/v2"
)

// defaultProgressEvery throttles the progress callback to every other
// device callback, frequent enough for smooth display updates.
const defaultProgressEvery = 2

var _ beep.Streamer = (*source)(nil)

// source feeds one track's frames to the audio device. The device goroutine
// calls Stream once per buffer; everything here must stay allocation-free.
//
// End of stream is detected by the session position not advancing between
// two consecutive calls. That tolerates decoders which keep repeating the
// final position instead of signalling an explicit end.
type source struct {
	track    *Track
	gain     *Gain
	progress ProgressFunc
	every    uint64

	calls   uint64
	lastPos int
	drained bool
	err     error
}

func newSource(t *Track, gain *Gain, progress ProgressFunc, every int) *source {
	if every <= 0 {
		every = defaultProgressEvery
	}
	return &source{
		track:    t,
		gain:     gain,
		progress: progress,
		every:    uint64(every),
		lastPos:  -1,
	}
}

// Stream implements beep.Streamer.
func (s *source) Stream(samples [][2]float64) (int, bool) {
	if s.drained {
		return 0, false
	}
	s.calls++

	n, err := s.track.session.Read(samples)

	if v := s.gain.Value(); v != 1 {
		for i := range n {
			samples[i][0] *= v
			samples[i][1] *= v
		}
	}

	pos := s.track.session.Tell()
	s.track.setPosition(pos)

	if err != nil {
		s.err = err
		s.drained = true
		clear(samples[n:])
		return n, false
	}

	if pos == s.lastPos {
		// No forward progress: the decoder is out of data. Silence the
		// shortfall and end the stream after this call.
		s.drained = true
		clear(samples[n:])
		return n, false
	}
	s.lastPos = pos

	if s.progress != nil && (s.calls-1)%s.every == 0 {
		s.progress(s.track, pos)
	}

	return n, true
}

// Err implements beep.Streamer. A non-nil error means the stream ended on a
// session read failure rather than at end of data.
func (s *source) Err() error {
	return s.err
}

// reset rearms a drained source so the stream can be activated again. Called
// on every transition into Stopped and after seeks.
func (s *source) reset() {
	s.calls = 0
	s.lastPos = -1
	s.drained = false
	s.err = nil
}
