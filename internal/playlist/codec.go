package playlist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"jukebox/internal/logging"
	"jukebox/internal/metrics"
	"jukebox/internal/vfs"
)

// Format identifies a playlist container format.
type Format int

const (
	FormatM3U Format = iota
	FormatM3U8
	FormatPLS
	FormatCUE
	FormatXSPF
)

// String returns the format name as used in logs and metrics labels.
func (f Format) String() string {
	switch f {
	case FormatM3U8:
		return "m3u8"
	case FormatPLS:
		return "pls"
	case FormatCUE:
		return "cue"
	case FormatXSPF:
		return "xspf"
	default:
		return "m3u"
	}
}

// FormatForFile picks the format from the file extension. Unknown
// extensions fall back to M3U, the most forgiving format.
func FormatForFile(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u8":
		return FormatM3U8
	case ".pls":
		return FormatPLS
	case ".cue":
		return FormatCUE
	case ".xspf", ".xml", ".wpl":
		return FormatXSPF
	default:
		return FormatM3U
	}
}

// SaveFlags tweak export behaviour.
type SaveFlags uint32

const (
	// SaveM3UNoExtInf writes plain M3U without #EXTINF lines.
	SaveM3UNoExtInf SaveFlags = 1 << iota
)

// ProgressFunc is called once per entry during export with the entry's
// URL. Returning false cancels the export; everything written so far is
// kept.
type ProgressFunc func(url string) bool

// AddFromFile reads a playlist file and appends its references to p.
// References are recorded as-is; nothing is resolved or validated here.
// A positive maxEntries caps the playlist size; parsing stops as soon
// as the cap is reached.
func (p *Playlist) AddFromFile(res *Resolver, path string, maxEntries int) error {
	format := FormatForFile(path)

	err := p.addFromFile(res, path, format, maxEntries)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.PlaylistImportsTotal.WithLabelValues(format.String(), status).Inc()
	return err
}

func (p *Playlist) addFromFile(res *Resolver, path string, format Format, maxEntries int) error {
	if res == nil || res.FS == nil {
		return fmt.Errorf("no filesystem to read %q", path)
	}
	f, err := res.FS.Open(path)
	if err != nil {
		return fmt.Errorf("open playlist %q: %w", path, err)
	}
	defer f.Close()

	stream := f.Stream()
	if stream == nil {
		return fmt.Errorf("playlist %q has no readable content", path)
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("read playlist %q: %w", path, err)
	}

	containerPath := f.Location()
	if strings.HasPrefix(containerPath, "file:") {
		if fp, convErr := vfs.URLToFileName(containerPath); convErr == nil {
			containerPath = fp
		}
	}

	before := p.Len()
	switch format {
	case FormatM3U, FormatM3U8:
		p.importM3U(decodeForFormat(raw, format), containerPath, maxEntries)
	case FormatPLS:
		p.importPLS(decodeForFormat(raw, format), containerPath, maxEntries)
	case FormatCUE:
		p.importCUE(decodeForFormat(raw, format), containerPath, maxEntries)
	case FormatXSPF:
		p.importXSPF(decodeForFormat(raw, format), containerPath, maxEntries)
	}
	added := p.Len() - before

	if p.url == "" {
		p.url = vfs.FileNameToURL(containerPath)
	}
	if p.name == "" {
		base := filepath.Base(containerPath)
		p.name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	metrics.PlaylistEntriesAdded.Add(float64(added))
	logging.Debug("imported %d entries from %q (%s)", added, path, format)
	return nil
}

// SaveAsFile exports the playlist to path in the format implied by the
// extension. A cancelled progress callback truncates the export but the
// partial file is still written.
func (p *Playlist) SaveAsFile(res *Resolver, path string, flags SaveFlags, progress ProgressFunc) error {
	format := FormatForFile(path)

	err := p.saveAsFile(res, path, format, flags, progress)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.PlaylistExportsTotal.WithLabelValues(format.String(), status).Inc()
	return err
}

func (p *Playlist) saveAsFile(res *Resolver, path string, format Format, flags SaveFlags, progress ProgressFunc) error {
	content := p.Export(res, format, path, flags, progress)
	if err := os.WriteFile(path, encodeForFormat(content, format), 0o644); err != nil {
		return fmt.Errorf("write playlist %q: %w", path, err)
	}
	p.url = vfs.FileNameToURL(path)
	return nil
}

// Export renders the playlist in the given format. containerFile, when
// non-empty, is the file the output is destined for; local entry URLs
// are written relative to its directory. Unresolved entries are skipped.
func (p *Playlist) Export(res *Resolver, format Format, containerFile string, flags SaveFlags, progress ProgressFunc) string {
	switch format {
	case FormatPLS:
		return p.exportPLS(res, containerFile, progress)
	case FormatCUE:
		return p.exportCUE(res, containerFile, progress)
	case FormatXSPF:
		return p.exportXSPF(res, progress)
	default:
		return p.exportM3U(res, containerFile, flags, progress)
	}
}

// exportable reports whether the entry should appear in saved files.
// Entries that failed verification point nowhere and are dropped.
func exportable(e *Entry) bool {
	return !e.urlVerified || e.urlOk
}

// decodeForFormat turns raw file bytes into a string. M3U8 and the
// XSPF family are UTF-8 (a BOM is honoured for any Unicode flavour);
// the legacy formats are ISO-8859-1.
func decodeForFormat(raw []byte, format Format) string {
	switch format {
	case FormatM3U8, FormatXSPF:
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		if out, _, err := transform.String(dec, string(raw)); err == nil {
			return out
		}
		return string(raw)
	default:
		if out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
		return string(raw)
	}
}

// encodeForFormat is the inverse of decodeForFormat. ISO-8859-1 cannot
// carry all of Unicode; unmappable runes degrade to '?'. UTF-8 output is
// written with a BOM so legacy players detect the encoding.
func encodeForFormat(content string, format Format) []byte {
	switch format {
	case FormatM3U8, FormatXSPF:
		out := make([]byte, 0, len(content)+3)
		out = append(out, 0xEF, 0xBB, 0xBF)
		return append(out, content...)
	default:
		out := make([]byte, 0, len(content))
		for _, r := range content {
			if r > 0xFF {
				out = append(out, '?')
			} else {
				out = append(out, byte(r))
			}
		}
		return out
	}
}
