package tags

import (
	"fmt"
	"io"

	"github.com/dhowden/tag"
)

// QuickTags is the minimal descriptive metadata extracted from a track.
type QuickTags struct {
	TrackName      string
	LeadArtistName string
	AlbumName      string
	// PlaytimeMs is -1 when the duration is unknown. Frame headers are not
	// parsed here, so plain tag reads always report -1.
	PlaytimeMs int64
}

// Reader extracts quick tags from audio streams.
type Reader struct{}

// New returns a tag reader.
func New() *Reader { return &Reader{} }

// ReadQuickTags reads ID3/Vorbis/MP4 metadata from an audio stream.
// The stream position is left unspecified afterwards.
func (r *Reader) ReadQuickTags(stream io.ReadSeeker) (QuickTags, error) {
	if stream == nil {
		return QuickTags{PlaytimeMs: -1}, fmt.Errorf("no stream")
	}
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return QuickTags{PlaytimeMs: -1}, err
	}

	m, err := tag.ReadFrom(stream)
	if err != nil {
		return QuickTags{PlaytimeMs: -1}, fmt.Errorf("reading tags: %w", err)
	}

	return QuickTags{
		TrackName:      m.Title(),
		LeadArtistName: m.Artist(),
		AlbumName:      m.Album(),
		PlaytimeMs:     -1,
	}, nil
}
