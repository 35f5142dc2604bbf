// internal/decode/session.go
package decode

import (
	"errors"
	"io"

	"github.com/gopxl/beep/v2"

	"github.com/hbarrett/cadence/internal/stream"
)

var errSessionClosed = errors.New("session closed")

// Session adapts a beep decoder to the frame session the stream package
// drives. End of stream surfaces as a zero-frame read with a nil error;
// decoder failures surface as the error itself.
type Session struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	file     io.Closer
}

func NewSession(streamer beep.StreamSeekCloser, format beep.Format, file io.Closer) *Session {
	return &Session{streamer: streamer, format: format, file: file}
}

func (s *Session) Read(buf [][2]float64) (int, error) {
	if s.streamer == nil {
		return 0, errSessionClosed
	}
	n, ok := s.streamer.Stream(buf)
	if !ok {
		if err := s.streamer.Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *Session) Seek(frame int) error {
	if s.streamer == nil {
		return errSessionClosed
	}
	if frame < 0 {
		frame = 0
	}
	if l := s.streamer.Len(); frame > l {
		frame = l
	}
	return s.streamer.Seek(frame)
}

func (s *Session) Tell() int {
	if s.streamer == nil {
		return 0
	}
	return s.streamer.Position()
}

func (s *Session) TotalFrames() int {
	if s.streamer == nil {
		return 0
	}
	return s.streamer.Len()
}

func (s *Session) Format() beep.Format {
	return s.format
}

func (s *Session) Close() error {
	if s.streamer == nil {
		return nil
	}
	err := s.streamer.Close()
	if s.file != nil {
		// Some decoders close the file on streamer Close and some do
		// not, so close it again and ignore the result.
		_ = s.file.Close()
	}
	s.streamer = nil
	s.file = nil
	return err
}

var _ stream.Session = (*Session)(nil)
