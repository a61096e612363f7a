package playlist

import (
	"io"
	"strings"
)

// fakeIndex is an in-memory LibraryIndex for tests.
type fakeIndex struct {
	info  map[string]TrackInfo // lowercase URL -> metadata
	plays map[string]int       // lowercase URL -> play count
	meta  map[string]string    // "artist|track" lowercase -> URL
	canon map[string]string    // lowercase URL -> stored casing
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		info:  make(map[string]TrackInfo),
		plays: make(map[string]int),
		meta:  make(map[string]string),
		canon: make(map[string]string),
	}
}

func (f *fakeIndex) addTrack(url string, ti TrackInfo) {
	key := strings.ToLower(url)
	f.info[key] = ti
	f.canon[key] = url
	f.meta[strings.ToLower(ti.LeadArtistName+"|"+ti.TrackName)] = url
}

func (f *fakeIndex) QuickInfo(url string) (TrackInfo, bool) {
	ti, ok := f.info[strings.ToLower(url)]
	return ti, ok
}

func (f *fakeIndex) URLByMetadata(artist, album, track string) string {
	url := f.meta[strings.ToLower(artist+"|"+track)]
	if url != "" && album != "" {
		if ti, ok := f.info[strings.ToLower(url)]; ok && !strings.EqualFold(ti.AlbumName, album) {
			return ""
		}
	}
	return url
}

func (f *fakeIndex) CanonicalURL(url string) string {
	if stored, ok := f.canon[strings.ToLower(url)]; ok {
		return stored
	}
	return url
}

func (f *fakeIndex) PlayCount(url string) (int, bool) {
	count, ok := f.plays[strings.ToLower(url)]
	return count, ok
}

// fakeFS serves locators from a map and records every open.
type fakeFS struct {
	files map[string]string // locator -> content
	opens []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: make(map[string]string)}
}

type fakeFile struct {
	loc string
	r   io.ReadSeeker
}

func (f *fakeFile) Location() string       { return f.loc }
func (f *fakeFile) Stream() io.ReadSeeker  { return f.r }
func (f *fakeFile) Close() error           { return nil }

func (f *fakeFS) Open(locator string) (File, error) {
	f.opens = append(f.opens, locator)
	content, ok := f.files[locator]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &fakeFile{loc: locator, r: strings.NewReader(content)}, nil
}

// fakeTags maps stream content to metadata.
type fakeTags struct {
	byContent map[string]TrackInfo
}

func (f *fakeTags) ReadQuickTags(stream io.ReadSeeker) (TrackInfo, error) {
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return TrackInfo{}, err
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return TrackInfo{}, err
	}
	if ti, ok := f.byContent[string(data)]; ok {
		return ti, nil
	}
	return TrackInfo{}, io.ErrUnexpectedEOF
}
