// internal/decode/meta.go
package decode

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"github.com/hbarrett/cadence/internal/stream"
)

// readMeta collects the title and duration stored in the file's tags.
// Both are best effort; the caller falls back to the filename and the
// decoded stream length.
func readMeta(path string) stream.Meta {
	var meta stream.Meta

	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			meta.Title = strings.TrimSpace(m.Title())
		}
		f.Close()
	}

	if props, err := taglib.ReadProperties(path); err == nil {
		meta.Duration = props.Length
	}

	return meta
}
