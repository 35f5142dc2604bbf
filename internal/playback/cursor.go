// internal/playback/cursor.go
package playback

// Cursor walks catalog indices in order, wrapping past the last index to
// zero. It is restartable: after Invalidate, or whenever the catalog
// length changes, the next advance re-anchors on the index passed as
// current. Between anchors, consecutive calls keep walking forward, which
// is what lets auto-advance step over consecutive unreadable tracks.
type Cursor struct {
	length int
	pos    int
	valid  bool
}

// Next returns the index following current in catalog order. ok is false
// when the catalog is empty.
func (c *Cursor) Next(length, current int) (int, bool) {
	if length <= 0 {
		c.valid = false
		return 0, false
	}
	if !c.valid || c.length != length {
		c.length = length
		c.pos = current
		if c.pos < 0 || c.pos >= length {
			c.pos = -1
		}
		c.valid = true
	}
	c.pos = (c.pos + 1) % length
	return c.pos, true
}

// Invalidate forces the next call to re-anchor on the current index.
func (c *Cursor) Invalidate() {
	c.valid = false
}
