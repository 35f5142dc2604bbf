// internal/playback/controller.go
// Package playback drives the stream manager through a playlist: commands
// from the application on one side, finished notifications from the audio
// device on the other.
package playback

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hbarrett/cadence/internal/device"
	"github.com/hbarrett/cadence/internal/stream"
)

const defaultSeekFraction = 0.05

// ErrClosed is returned by commands after Close.
var ErrClosed = errors.New("controller closed")

// Catalog resolves playlist indices to playable paths.
type Catalog interface {
	Len() int
	Resolve(i int) (string, error)
}

// Config carries the dependencies and initial settings for a Controller.
type Config struct {
	Catalog Catalog
	Opener  stream.Opener
	Output  device.Output

	// Progress receives throttled position updates during playback.
	Progress stream.ProgressFunc
	// ProgressEvery is the device callback throttle, in callbacks.
	ProgressEvery int
	// Volume is the initial linear volume in [0, 1].
	Volume float64
	// SeekFraction is the step used by SeekForward and SeekBackward,
	// as a fraction of the track's total frames.
	SeekFraction float64
}

// Controller is the playback facade the application holds. Commands are
// serialized under one lock; the volume multiplier is the only value the
// device callback reads while a command runs, and it is atomic.
//
// Auto-advance suppression is a dedicated flag rather than a piggy-backed
// state bit: every commanded deactivation sets it before touching the
// device, so the inline finished notification never advances, and it is
// cleared only when playback (re)starts.
type Controller struct {
	mu      sync.RWMutex
	catalog Catalog
	manager *stream.Manager
	cursor  Cursor
	gain    *stream.Gain

	seekFraction float64
	index        int
	suppress     atomic.Bool
	closed       bool

	subsMu sync.RWMutex
	subs   []*Subscription
}

// Status is a snapshot of the current playback status.
type Status struct {
	State       stream.State
	Index       int
	Title       string
	Path        string
	Frame       int
	TotalFrames int
	DurationSec float64
	Volume      float64
}

func New(cfg Config) *Controller {
	if cfg.SeekFraction <= 0 {
		cfg.SeekFraction = defaultSeekFraction
	}
	c := &Controller{
		catalog:      cfg.Catalog,
		gain:         stream.NewGain(lo.Clamp(cfg.Volume, 0, 1)),
		seekFraction: cfg.SeekFraction,
		index:        -1,
	}
	c.manager = stream.NewManager(stream.Config{
		Opener:        cfg.Opener,
		Output:        cfg.Output,
		Gain:          c.gain,
		Progress:      cfg.Progress,
		ProgressEvery: cfg.ProgressEvery,
		OnStreamDone:  c.trackDone,
	})
	return c
}

// Load loads the catalog entry at index, stopping current playback first.
func (c *Controller) Load(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.loadLocked(index)
}

// TogglePlayPause pauses a playing stream and resumes a paused one. On a
// stopped stream it starts playback; with nothing loaded it loads the
// current catalog entry (or the first) and starts that.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	state := c.manager.State()
	if state == stream.Playing {
		c.suppress.Store(true)
	}
	err := c.manager.PauseResume()
	switch {
	case err == nil:
		if state == stream.Playing {
			c.emitState(state, stream.Paused)
		} else {
			c.suppress.Store(false)
			c.emitState(state, stream.Playing)
		}
		return nil
	case errors.Is(err, stream.ErrNotActive):
		return c.startLocked()
	case errors.Is(err, stream.ErrNoTrack):
		index := c.index
		if index < 0 {
			index = 0
		}
		if err := c.loadLocked(index); err != nil {
			return err
		}
		return c.startLocked()
	default:
		return err
	}
}

// Stop halts playback and rewinds to the beginning of the track. With
// autoAdvance set it then moves on to the next catalog entry and plays it.
func (c *Controller) Stop(autoAdvance bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	prev := c.manager.State()
	c.suppress.Store(true)
	if err := c.manager.Stop(); err != nil {
		return err
	}
	c.emitState(prev, stream.Stopped)
	if autoAdvance {
		return c.advanceLocked()
	}
	return nil
}

// SkipNext stops the current track, if any, and plays the next catalog
// entry.
func (c *Controller) SkipNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if prev := c.manager.State(); prev.IsActive() {
		c.suppress.Store(true)
		if err := c.manager.Stop(); err != nil {
			return err
		}
		c.emitState(prev, stream.Stopped)
	}
	return c.advanceLocked()
}

// SeekRelative moves the position by deltaFraction of the track's total
// frames, clamped to the track bounds. On a playing stream the device is
// paused around the seek and resumed after.
func (c *Controller) SeekRelative(deltaFraction float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	t := c.manager.Current()
	if t == nil {
		return stream.ErrNoTrack
	}

	resume := false
	if c.manager.State() == stream.Playing {
		c.suppress.Store(true)
		if err := c.manager.PauseResume(); err != nil {
			return err
		}
		resume = true
	}

	total := t.TotalFrames()
	delta := int(math.Round(deltaFraction * float64(total)))
	target := lo.Clamp(t.Position()+delta, 0, total)
	if err := c.manager.SeekTo(target); err != nil {
		return err
	}
	c.emitPosition(target, total)

	if resume {
		if err := c.manager.PauseResume(); err != nil {
			return err
		}
		c.suppress.Store(false)
	}
	return nil
}

// SeekForward seeks ahead by the configured seek fraction.
func (c *Controller) SeekForward() error {
	return c.SeekRelative(c.seekFraction)
}

// SeekBackward seeks back by the configured seek fraction.
func (c *Controller) SeekBackward() error {
	return c.SeekRelative(-c.seekFraction)
}

// SetVolume sets the linear volume, clamped to [0, 1], and returns the
// value applied. Safe to call at any time, including during playback.
func (c *Controller) SetVolume(v float64) float64 {
	v = lo.Clamp(v, 0, 1)
	c.gain.Set(v)
	return v
}

// Volume returns the current linear volume.
func (c *Controller) Volume() float64 {
	return c.gain.Value()
}

// Status returns a snapshot of the playback status.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		State:  c.manager.State(),
		Index:  c.index,
		Volume: c.gain.Value(),
	}
	if t := c.manager.Current(); t != nil {
		st.Title = t.Title
		st.Path = t.Path
		st.Frame = t.Position()
		st.TotalFrames = t.TotalFrames()
		st.DurationSec = t.DurationSec
	}
	return st
}

// State returns the current playback state.
func (c *Controller) State() stream.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manager.State()
}

// Index returns the catalog index of the loaded track, or -1 with no
// track loaded.
func (c *Controller) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Title returns the loaded track's display title, or "" with no track.
func (c *Controller) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t := c.manager.Current(); t != nil {
		return t.Title
	}
	return ""
}

// Position returns the current frame position within the loaded track.
func (c *Controller) Position() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t := c.manager.Current(); t != nil {
		return t.Position()
	}
	return 0
}

// TotalFrames returns the loaded track's length in frames.
func (c *Controller) TotalFrames() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t := c.manager.Current(); t != nil {
		return t.TotalFrames()
	}
	return 0
}

// DurationSec returns the loaded track's duration in seconds, rounded
// to one decimal place.
func (c *Controller) DurationSec() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t := c.manager.Current(); t != nil {
		return t.DurationSec
	}
	return 0
}

// Subscribe registers a new event subscriber.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Unsubscribe removes a subscriber and closes its Done channel.
func (c *Controller) Unsubscribe(sub *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close stops playback, releases the stream and signals all subscribers.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.suppress.Store(true)
	err := c.manager.Close()
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
	return err
}

// trackDone is the finished notification handler. It runs inline on the
// command goroutine for commanded stops, where suppression makes it a
// no-op before any lock, and on a device goroutine for natural ends.
func (c *Controller) trackDone(t *stream.Track) {
	if c.suppress.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || t == nil || t != c.manager.Current() || c.suppress.Load() {
		return
	}

	prev := c.manager.State()
	streamErr := c.manager.StreamErr()
	c.manager.FinishStream()
	c.emitState(prev, stream.Stopped)

	if streamErr != nil {
		zlog.Error().Err(streamErr).Msgf("playback: stream aborted: %s", t.Path)
		c.emitError("stream", t.Path, streamErr)
		return
	}

	zlog.Debug().Msgf("playback: track finished: %s", t.Title)
	if err := c.advanceLocked(); err != nil {
		if errors.Is(err, stream.ErrNoTrack) {
			return
		}
		zlog.Error().Err(err).Msg("playback: auto-advance failed")
		c.emitError("advance", "", err)
	}
}

// advanceLocked loads and starts the next playable catalog entry. Entries
// that fail to load are skipped; the walk gives up after one full catalog
// round so a directory of unreadable files cannot loop forever.
func (c *Controller) advanceLocked() error {
	length := c.catalog.Len()
	if length == 0 {
		return stream.ErrNoTrack
	}

	var lastErr error
	for attempt := 0; attempt < length; attempt++ {
		next, ok := c.cursor.Next(length, c.index)
		if !ok {
			return stream.ErrNoTrack
		}
		if err := c.loadLocked(next); err != nil {
			zlog.Warn().Err(err).Msgf("playback: skipping entry %d", next)
			lastErr = err
			continue
		}
		return c.startLocked()
	}
	return lastErr
}

func (c *Controller) loadLocked(index int) error {
	path, err := c.catalog.Resolve(index)
	if err != nil {
		return err
	}

	c.suppress.Store(true)
	if err := c.manager.Load(path); err != nil {
		return err
	}

	prev := c.index
	c.index = index
	c.cursor.Invalidate()

	t := c.manager.Current()
	zlog.Debug().Msgf("playback: loaded %d: %s", index, t.Title)
	c.emitTrack(TrackChange{
		PreviousIndex: prev,
		Index:         index,
		Path:          t.Path,
		Title:         t.Title,
		DurationSec:   t.DurationSec,
	})
	return nil
}

func (c *Controller) startLocked() error {
	prev := c.manager.State()
	if err := c.manager.Start(); err != nil {
		return err
	}
	c.suppress.Store(false)
	c.emitState(prev, stream.Playing)
	return nil
}

func (c *Controller) emitState(prev, cur stream.State) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(StateChange{Previous: prev, Current: cur})
	}
}

func (c *Controller) emitTrack(e TrackChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendTrack(e)
	}
}

func (c *Controller) emitPosition(frame, total int) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendPosition(PositionChange{Frame: frame, Total: total})
	}
}

func (c *Controller) emitError(op, path string, err error) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(ErrorEvent{Operation: op, Path: path, Err: err})
	}
}
