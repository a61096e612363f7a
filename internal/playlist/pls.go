package playlist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// plsMaxIndex bounds the FileN indices accepted on import; PLS indices
// are sparse and attacker-controlled, so huge values must not blow up
// the collection pass.
const plsMaxIndex = 0xFFFF

// importPLS parses PLS text. FileN, TitleN and LengthN lines for the
// same N are collected first since the format does not guarantee their
// order, then entries are added by ascending index.
func (p *Playlist) importPLS(text, containerPath string, maxEntries int) {
	refs := make(map[int]Ref)

	// PLS indices start at 1.
	update := func(index int, f func(*Ref)) {
		if index < 1 || index > plsMaxIndex {
			return
		}
		r := refs[index]
		f(&r)
		refs[index] = r
	}

	for _, line := range splitLines(text) {
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key, value := strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:])

		switch {
		case hasFoldPrefix(key, "File"):
			if n, err := strconv.Atoi(key[4:]); err == nil {
				update(n, func(r *Ref) { r.URL = value })
			}
		case hasFoldPrefix(key, "Title"):
			if n, err := strconv.Atoi(key[5:]); err == nil {
				update(n, func(r *Ref) { r.Artist, r.Track = splitArtistTitle(value) })
			}
		case hasFoldPrefix(key, "Length"):
			if n, err := strconv.Atoi(key[6:]); err == nil {
				if secs, convErr := strconv.Atoi(value); convErr == nil && secs > 0 {
					update(n, func(r *Ref) { r.PlaytimeMs = int64(secs) * 1000 })
				}
			}
		}
	}

	indices := make([]int, 0, len(refs))
	for n := range refs {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	for _, n := range indices {
		ref := refs[n]
		if ref.URL == "" {
			continue
		}
		if maxEntries > 0 && p.Len() >= maxEntries {
			return
		}
		ref.ContainerPath = containerPath
		p.Add(ref, false, -1)
	}
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// exportPLS renders PLS text. NumberOfEntries and Version terminate the
// file; some players refuse playlists without the trailer.
func (p *Playlist) exportPLS(res *Resolver, containerFile string, progress ProgressFunc) string {
	var b strings.Builder
	b.WriteString("[playlist]\n")
	if p.name != "" {
		fmt.Fprintf(&b, "PlaylistName=%s\n", p.name)
	}

	written := 0
	for _, e := range p.entries {
		if !exportable(e) {
			continue
		}
		if progress != nil && !progress(e.URL()) {
			break
		}
		written++
		fmt.Fprintf(&b, "File%d=%s\n", written, e.LocalFile(containerFile))

		artist, track := e.LeadArtistName(res), e.TrackName(res)
		title := track
		if artist != "" {
			title = artist + " - " + track
		}
		if title != "" {
			fmt.Fprintf(&b, "Title%d=%s\n", written, title)
		}

		secs := int64(-1)
		if ms := e.PlaytimeMs(res); ms > 0 {
			secs = ms / 1000
		}
		fmt.Fprintf(&b, "Length%d=%d\n", written, secs)
	}

	fmt.Fprintf(&b, "NumberOfEntries=%d\n", written)
	b.WriteString("Version=2\n")
	return b.String()
}
