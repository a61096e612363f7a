package playlist

import (
	"fmt"
	"strings"
)

// importCUE parses a cue sheet. Only FILE commands produce entries; a
// file referenced by several TRACK blocks is added once. Sheet-level
// PERFORMER and TITLE commands seen before the first FILE become artist
// and album hints for every entry.
func (p *Playlist) importCUE(text, containerPath string, maxEntries int) {
	var sheetArtist, sheetAlbum string
	sawFile := false

	for _, line := range splitLines(text) {
		// Some sheets indent or separate commands with tabs.
		line = strings.ReplaceAll(line, "\t", " ")
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToUpper(cmd) {
		case "PERFORMER":
			if !sawFile {
				sheetArtist = unquote(rest)
			}
		case "TITLE":
			if !sawFile {
				sheetAlbum = unquote(rest)
			}
		case "FILE":
			sawFile = true
			url := cueFileArg(rest)
			if url == "" || p.GetPosByURL(url) != -1 {
				continue
			}
			if maxEntries > 0 && p.Len() >= maxEntries {
				return
			}
			p.Add(Ref{
				URL:           url,
				ContainerPath: containerPath,
				Artist:        sheetArtist,
				Album:         sheetAlbum,
			}, false, -1)
		}
	}
}

// cueFileArg extracts the file name from a FILE command argument,
// dropping the trailing type keyword (WAVE, MP3, BINARY, ...).
func cueFileArg(arg string) string {
	if strings.HasPrefix(arg, "\"") {
		if end := strings.Index(arg[1:], "\""); end != -1 {
			return arg[1 : 1+end]
		}
		return strings.TrimPrefix(arg, "\"")
	}
	if i := strings.LastIndex(arg, " "); i != -1 {
		return strings.TrimSpace(arg[:i])
	}
	return arg
}

// exportCUE renders a cue sheet with one FILE/TRACK block per entry.
// Track numbers are zero-padded to two digits through 99 and written
// unpadded from 100 on.
func (p *Playlist) exportCUE(res *Resolver, containerFile string, progress ProgressFunc) string {
	var b strings.Builder
	if artist := p.OverallArtist(res); artist != "" {
		fmt.Fprintf(&b, "PERFORMER \"%s\"\n", artist)
	}
	if album := p.OverallAlbum(res); album != "" {
		fmt.Fprintf(&b, "TITLE \"%s\"\n", album)
	}

	trackNo := 0
	for _, e := range p.entries {
		if !exportable(e) {
			continue
		}
		if progress != nil && !progress(e.URL()) {
			break
		}
		trackNo++
		fmt.Fprintf(&b, "FILE \"%s\" WAVE\n", e.LocalFile(containerFile))
		fmt.Fprintf(&b, "  TRACK %02d AUDIO\n", trackNo)
		if track := e.TrackName(res); track != "" {
			fmt.Fprintf(&b, "    TITLE \"%s\"\n", track)
		}
		if artist := e.LeadArtistName(res); artist != "" {
			fmt.Fprintf(&b, "    PERFORMER \"%s\"\n", artist)
		}
		b.WriteString("    INDEX 01 00:00:00\n")
	}
	return b.String()
}
