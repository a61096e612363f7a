package playlist

import (
	"fmt"
	"strconv"
	"strings"
)

// importM3U parses M3U/M3U8 text. Only #EXTINF comments are meaningful;
// they carry a duration in seconds and an "Artist - Title" display
// string that become hints for the following URL line.
func (p *Playlist) importM3U(text, containerPath string, maxEntries int) {
	var pending Ref
	for _, line := range splitLines(text) {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if rest, ok := strings.CutPrefix(line, "#EXTINF:"); ok {
				pending = Ref{}
				if comma := strings.Index(rest, ","); comma != -1 {
					if secs, err := strconv.Atoi(strings.TrimSpace(rest[:comma])); err == nil && secs > 0 {
						pending.PlaytimeMs = int64(secs) * 1000
					}
					pending.Artist, pending.Track = splitArtistTitle(rest[comma+1:])
				}
			}
			continue
		}

		if maxEntries > 0 && p.Len() >= maxEntries {
			return
		}
		pending.URL = line
		pending.ContainerPath = containerPath
		p.Add(pending, false, -1)
		pending = Ref{}
	}
}

// exportM3U renders M3U text. With SaveM3UNoExtInf set only the bare
// URLs are written.
func (p *Playlist) exportM3U(res *Resolver, containerFile string, flags SaveFlags, progress ProgressFunc) string {
	var b strings.Builder
	extInf := flags&SaveM3UNoExtInf == 0
	if extInf {
		b.WriteString("#EXTM3U\n")
	}

	for _, e := range p.entries {
		if !exportable(e) {
			continue
		}
		if progress != nil && !progress(e.URL()) {
			break
		}
		if extInf {
			secs := int64(-1)
			if ms := e.PlaytimeMs(res); ms > 0 {
				secs = ms / 1000
			}
			artist, track := e.LeadArtistName(res), e.TrackName(res)
			if artist != "" || track != "" {
				fmt.Fprintf(&b, "#EXTINF:%d,%s - %s\n", secs, artist, track)
			}
		}
		b.WriteString(e.LocalFile(containerFile))
		b.WriteByte('\n')
	}
	return b.String()
}
