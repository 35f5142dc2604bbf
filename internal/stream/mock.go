// internal/stream/mock.go
package stream

import (
	"fmt"

	"github.com/gopxl/beep/v2"
)

// MockSession is a test double for Session producing synthetic frames. The
// sample value of frame i is SampleFor(i), so tests can verify gain scaling
// against known raw values.
type MockSession struct {
	total     int
	rate      beep.SampleRate
	channels  int
	pos       int
	perRead   int // cap frames returned per Read, 0 means fill the buffer
	readErr   error
	errAfter  int // reads remaining until readErr fires, <0 disables
	seekErr   error
	closed    bool
	readCalls int
}

// NewMockSession creates a session of total frames at the given rate.
func NewMockSession(total int, rate beep.SampleRate) *MockSession {
	return &MockSession{total: total, rate: rate, channels: 2, errAfter: -1}
}

// SampleFor returns the raw sample value the mock produces for a frame.
func SampleFor(frame int) float64 {
	return float64(frame%100) / 100
}

func (m *MockSession) Read(buf [][2]float64) (int, error) {
	m.readCalls++
	if m.readErr != nil && m.errAfter >= 0 {
		if m.errAfter == 0 {
			return 0, m.readErr
		}
		m.errAfter--
	}
	n := len(buf)
	if m.perRead > 0 && n > m.perRead {
		n = m.perRead
	}
	if remaining := m.total - m.pos; n > remaining {
		n = remaining
	}
	for i := range n {
		v := SampleFor(m.pos + i)
		buf[i] = [2]float64{v, v}
	}
	m.pos += n
	return n, nil
}

func (m *MockSession) Seek(frame int) error {
	if m.seekErr != nil {
		return m.seekErr
	}
	if frame < 0 {
		frame = 0
	}
	if frame > m.total {
		frame = m.total
	}
	m.pos = frame
	return nil
}

func (m *MockSession) Tell() int { return m.pos }

func (m *MockSession) TotalFrames() int { return m.total }

func (m *MockSession) Format() beep.Format {
	return beep.Format{SampleRate: m.rate, NumChannels: m.channels, Precision: 2}
}

func (m *MockSession) Close() error {
	m.closed = true
	return nil
}

// Test helpers

// SetPerRead caps how many frames a single Read returns.
func (m *MockSession) SetPerRead(n int) { m.perRead = n }

// FailReadsAfter makes Read fail with err once n more reads have happened.
func (m *MockSession) FailReadsAfter(n int, err error) {
	m.readErr = err
	m.errAfter = n
}

// SetSeekError makes Seek fail with err.
func (m *MockSession) SetSeekError(err error) { m.seekErr = err }

func (m *MockSession) Closed() bool { return m.closed }

func (m *MockSession) ReadCalls() int { return m.readCalls }

// MockOpener is a test double for Opener backed by scripted sessions.
type MockOpener struct {
	sessions  map[string]*MockSession
	metas     map[string]Meta
	errs      map[string]error
	openCalls []string
}

// NewMockOpener creates an empty opener; Add scripts the known paths.
func NewMockOpener() *MockOpener {
	return &MockOpener{
		sessions: make(map[string]*MockSession),
		metas:    make(map[string]Meta),
		errs:     make(map[string]error),
	}
}

// Add scripts a path to open the given session and metadata.
func (o *MockOpener) Add(path string, session *MockSession, meta Meta) {
	o.sessions[path] = session
	o.metas[path] = meta
}

// AddTrack scripts a path to a fresh session of total frames at rate.
func (o *MockOpener) AddTrack(path string, total int, rate beep.SampleRate) *MockSession {
	s := NewMockSession(total, rate)
	o.Add(path, s, Meta{})
	return s
}

// SetOpenError makes opening path fail with err.
func (o *MockOpener) SetOpenError(path string, err error) {
	o.errs[path] = err
}

// Open returns the scripted session for path, rewound and reopened the
// way a fresh decode would be. Scripted errors persist across opens, so a
// bad track stays bad on every attempt.
func (o *MockOpener) Open(path string) (Session, Meta, error) {
	o.openCalls = append(o.openCalls, path)
	if err := o.errs[path]; err != nil {
		return nil, Meta{}, err
	}
	s, ok := o.sessions[path]
	if !ok {
		return nil, Meta{}, fmt.Errorf("no such track: %s", path)
	}
	s.pos = 0
	s.closed = false
	return s, o.metas[path], nil
}

// OpenCalls returns the paths passed to Open, in order.
func (o *MockOpener) OpenCalls() []string { return o.openCalls }

// Session returns the scripted session for path, or nil.
func (o *MockOpener) Session(path string) *MockSession { return o.sessions[path] }

// Verify the mocks implement the interfaces at compile time.
var (
	_ Session = (*MockSession)(nil)
	_ Opener  = (*MockOpener)(nil)
)
