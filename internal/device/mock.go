// internal/device/mock.go
package device

import (
	"errors"
	"sync"

	"github.com/gopxl/beep/v2"
)

// MockOutput is a test double for Output. Opened streams are MockStreams
// whose Pump method stands in for the device pulling samples.
type MockOutput struct {
	mu      sync.Mutex
	openErr error
	streams []*MockStream
	closed  bool
}

func NewMockOutput() *MockOutput {
	return &MockOutput{}
}

// SetOpenError makes the next Opens fail with err.
func (o *MockOutput) SetOpenError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openErr = err
}

func (o *MockOutput) Open(format beep.Format, src beep.Streamer, done func()) (Stream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	st := &MockStream{src: src, done: done, format: format}
	o.streams = append(o.streams, st)
	return st, nil
}

func (o *MockOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// OpenCount returns how many streams have been opened.
func (o *MockOutput) OpenCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streams)
}

// LastStream returns the most recently opened stream, or nil.
func (o *MockOutput) LastStream() *MockStream {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.streams) == 0 {
		return nil
	}
	return o.streams[len(o.streams)-1]
}

func (o *MockOutput) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// MockStream is a test double for Stream. Tests drive playback by calling
// Pump, which pulls from the source exactly like the device would and
// fires done when the source reports end of stream.
type MockStream struct {
	mu            sync.Mutex
	src           beep.Streamer
	done          func()
	format        beep.Format
	active        bool
	closed        bool
	activateErr   error
	deactivateErr error
	activations   int
	doneCount     int
}

func (m *MockStream) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activateErr != nil {
		return m.activateErr
	}
	if m.closed {
		return errors.New("stream closed")
	}
	if !m.active {
		m.active = true
		m.activations++
	}
	return nil
}

func (m *MockStream) Deactivate() error {
	m.mu.Lock()
	if m.deactivateErr != nil {
		m.mu.Unlock()
		return m.deactivateErr
	}
	if !m.active {
		m.mu.Unlock()
		return nil
	}
	m.active = false
	m.doneCount++
	done := m.done
	m.mu.Unlock()
	if done != nil {
		done()
	}
	return nil
}

func (m *MockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.closed = true
	return nil
}

func (m *MockStream) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Pump pulls up to frames samples from the source. If the source reports
// end of stream the pump deactivates and fires done, like a real device
// draining. Returns the number of frames produced.
func (m *MockStream) Pump(frames int) int {
	m.mu.Lock()
	if !m.active || m.closed {
		m.mu.Unlock()
		return 0
	}
	src := m.src
	m.mu.Unlock()

	buf := make([][2]float64, frames)
	n, ok := src.Stream(buf)
	if !ok {
		m.finish()
	}
	return n
}

// Drain pumps in chunks until the stream deactivates, returning the total
// frames produced. The iteration cap guards tests against a source that
// never ends.
func (m *MockStream) Drain(chunk int) int {
	total := 0
	for i := 0; i < 1<<20 && m.Active(); i++ {
		total += m.Pump(chunk)
	}
	return total
}

func (m *MockStream) finish() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.doneCount++
	done := m.done
	m.mu.Unlock()
	if done != nil {
		done()
	}
}

// Test helpers

func (m *MockStream) SetActivateError(err error)   { m.activateErr = err }
func (m *MockStream) SetDeactivateError(err error) { m.deactivateErr = err }

// DoneCount returns how many times done has fired.
func (m *MockStream) DoneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doneCount
}

// Activations returns how many times the stream went active.
func (m *MockStream) Activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations
}

func (m *MockStream) Format() beep.Format { return m.format }

func (m *MockStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	_ Output = (*MockOutput)(nil)
	_ Stream = (*MockStream)(nil)
)
