package playlist

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// importXSPF parses the XML playlist family: XSPF, iTunes library XML
// and Windows Media Player WPL. Instead of three XML parsers the text is
// lightly normalized so a single tag scanner handles all of them, which
// also keeps slightly broken files importable. Tracks without a location
// but with both an artist and a title get a synthesized stub URL so
// their metadata survives the import; the real file is found later by
// the metadata fallback during verification.
func (p *Playlist) importXSPF(text, containerPath string, maxEntries int) {
	// iTunes XML expresses fields as <key>Name</key><string>value</string>
	// pairs. Promoting the keys to element names lets the scanner below
	// treat them like XSPF tags.
	text = strings.ReplaceAll(text, "<key>", "<")
	text = strings.ReplaceAll(text, "</key>", ">")

	var cur Ref
	curHas := false
	pendingKey := ""

	// Entries are flushed on the closing track boundary; fields seen
	// outside any track (the playlist's own title, say) never make an
	// entry on their own.
	flush := func() {
		if curHas {
			if cur.URL == "" && cur.Artist != "" && cur.Track != "" {
				cur.URL = stubURL(cur.Artist, cur.Album, cur.Track)
			}
			if cur.URL != "" {
				cur.ContainerPath = containerPath
				p.Add(cur, false, -1)
			}
		}
		cur = Ref{}
		curHas = false
		pendingKey = ""
	}

	setField := func(key, value string) {
		if value == "" {
			return
		}
		switch key {
		case "location":
			cur.URL = value
			curHas = true
		case "title", "name":
			cur.Track = value
			curHas = true
		case "creator", "artist":
			cur.Artist = value
			curHas = true
		case "album":
			cur.Album = value
			curHas = true
		case "duration", "total time":
			if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
				cur.PlaytimeMs = ms
			}
		}
	}

	for _, tok := range strings.Split(text, "<") {
		if maxEntries > 0 && p.Len() >= maxEntries {
			return
		}
		tag, value, _ := strings.Cut(tok, ">")
		tag = strings.ToLower(strings.TrimSpace(tag))
		value = html.UnescapeString(strings.TrimSpace(value))

		switch {
		case tag == "/track" || tag == "/dict":
			flush()
		case strings.HasPrefix(tag, "media"):
			// WPL: <media src="...">
			if src, ok := xmlAttr(tok, "src"); ok {
				flush()
				cur.URL = html.UnescapeString(src)
				curHas = true
				flush()
			}
		case strings.HasPrefix(tag, "string") || strings.HasPrefix(tag, "integer"):
			// iTunes: value element following a promoted key.
			setField(pendingKey, value)
			pendingKey = ""
		case tag == "location" || tag == "title" || tag == "name" ||
			tag == "creator" || tag == "artist" || tag == "album" ||
			tag == "duration" || tag == "total time":
			if value != "" {
				setField(tag, value)
			} else {
				pendingKey = tag
			}
		}
	}
	flush()
}

// xmlAttr pulls a double-quoted attribute value out of a raw tag token.
func xmlAttr(tok, name string) (string, bool) {
	marker := name + "=\""
	i := strings.Index(tok, marker)
	if i == -1 {
		return "", false
	}
	rest := tok[i+len(marker):]
	end := strings.Index(rest, "\"")
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

// stubURL synthesizes a placeholder URL for a track that has metadata
// but no location.
func stubURL(artist, album, track string) string {
	return fmt.Sprintf("stub://%s-%s-%s.mp3", stubToken(artist), stubToken(album), stubToken(track))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

// exportXSPF renders an XSPF 1.0 document. Entry URLs are written
// absolute; XSPF locations are URIs, not paths.
func (p *Playlist) exportXSPF(res *Resolver, progress ProgressFunc) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<playlist version=\"1\" xmlns=\"http://xspf.org/ns/0/\">\n")
	fmt.Fprintf(&b, "  <date>%s</date>\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("  <meta rel=\"generator\">jukebox</meta>\n")
	b.WriteString("  <trackList>\n")

	for _, e := range p.entries {
		if !exportable(e) {
			continue
		}
		if progress != nil && !progress(e.URL()) {
			break
		}
		b.WriteString("    <track>\n")
		fmt.Fprintf(&b, "      <location>%s</location>\n", xmlEscaper.Replace(e.URL()))
		if track := e.TrackName(res); track != "" {
			fmt.Fprintf(&b, "      <title>%s</title>\n", xmlEscaper.Replace(track))
		}
		if artist := e.LeadArtistName(res); artist != "" {
			fmt.Fprintf(&b, "      <creator>%s</creator>\n", xmlEscaper.Replace(artist))
		}
		if album := e.AlbumName(res); album != "" {
			fmt.Fprintf(&b, "      <album>%s</album>\n", xmlEscaper.Replace(album))
		}
		if ms := e.PlaytimeMs(res); ms > 0 {
			fmt.Fprintf(&b, "      <duration>%d</duration>\n", ms)
		}
		b.WriteString("    </track>\n")
	}

	b.WriteString("  </trackList>\n")
	b.WriteString("</playlist>\n")
	return b.String()
}
