// internal/device/speaker.go
package device

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"
)

const defaultBuffer = 100 * time.Millisecond

// Speaker drives the system audio device through gopxl/beep's speaker.
// The speaker is initialized lazily on the first Open and re-initialized
// whenever a source arrives at a different sample rate.
type Speaker struct {
	mu     sync.Mutex
	buffer time.Duration
	rate   beep.SampleRate
	inited bool
}

// NewSpeaker creates a speaker output with the given device buffer length.
func NewSpeaker(buffer time.Duration) *Speaker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Speaker{buffer: buffer}
}

func (s *Speaker) Open(format beep.Format, src beep.Streamer, done func()) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inited || s.rate != format.SampleRate {
		if s.inited {
			speaker.Close()
		}
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(s.buffer)); err != nil {
			return nil, err
		}
		s.rate = format.SampleRate
		s.inited = true
		zlog.Debug().Msgf("device: speaker at %d Hz, buffer %s", format.SampleRate, s.buffer)
	}
	return &speakerStream{src: src, done: done}, nil
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		speaker.Close()
		s.inited = false
	}
	return nil
}

// speakerStream plays one source on the shared speaker. Each Activate
// submits a fresh sequence because the speaker drops drained streamers.
type speakerStream struct {
	mu     sync.Mutex
	src    beep.Streamer
	done   func()
	active bool
	closed bool
}

func (st *speakerStream) Activate() error {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return errors.New("stream closed")
	}
	if st.active {
		st.mu.Unlock()
		return nil
	}
	st.active = true
	st.mu.Unlock()
	speaker.Play(beep.Seq(st.src, beep.Callback(st.onDrained)))
	return nil
}

// onDrained runs inside the speaker lock when the source ends. Finishing
// is hopped to a goroutine so done can touch the speaker again.
func (st *speakerStream) onDrained() {
	go st.finish()
}

func (st *speakerStream) finish() {
	st.mu.Lock()
	if !st.active {
		st.mu.Unlock()
		return
	}
	st.active = false
	done := st.done
	st.mu.Unlock()
	if done != nil {
		done()
	}
}

func (st *speakerStream) Deactivate() error {
	st.mu.Lock()
	if !st.active {
		st.mu.Unlock()
		return nil
	}
	st.active = false
	done := st.done
	st.mu.Unlock()

	// Clear blocks until the mixer is no longer pulling from the source,
	// so the stream is fully quiesced before done observes the stop.
	speaker.Clear()
	if done != nil {
		done()
	}
	return nil
}

func (st *speakerStream) Close() error {
	st.mu.Lock()
	wasActive := st.active
	st.active = false
	st.closed = true
	st.mu.Unlock()
	if wasActive {
		speaker.Clear()
	}
	return nil
}

func (st *speakerStream) Active() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}

var (
	_ Output = (*Speaker)(nil)
	_ Stream = (*speakerStream)(nil)
)
