package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhowden/tag"
)

// Tags is the display metadata of a source file.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags reads embedded metadata and rewinds r. Files without tags
// return empty Tags and no error.
func ReadTags(r io.ReadSeeker) (Tags, error) {
	defer r.Seek(0, io.SeekStart) //nolint:errcheck

	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Tags{}, nil
		}
		return Tags{}, fmt.Errorf("read tags: %w", err)
	}
	return Tags{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}, nil
}
