package playlist

import (
	"strings"
)

// splitLines breaks decoded playlist text into trimmed lines. Codecs
// never care about line endings or surrounding whitespace, so both are
// stripped here once.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.Trim(l, " \t\r"))
	}
	return lines
}

// splitArtistTitle splits an "Artist - Title" string. The spaced dash is
// preferred; a bare dash is the fallback for sloppy files. Without any
// separator the whole string is the title.
func splitArtistTitle(s string) (artist, track string) {
	sep := " - "
	i := strings.Index(s, sep)
	if i == -1 {
		sep = "-"
		i = strings.Index(s, sep)
	}
	if i == -1 {
		return "", strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
}

// unquote strips one pair of surrounding double quotes if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// sanitizeFileName replaces characters that are unsafe in file names on
// common filesystems.
func sanitizeFileName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// stubToken reduces a metadata field to a token usable inside a stub
// URL: lowercase, alphanumerics kept, everything else collapsed to
// single dashes.
func stubToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
