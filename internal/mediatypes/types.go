package mediatypes

import "strings"

// FileType represents the type of a file found in the music directory.
type FileType string

const (
	// FileTypeFolder represents a directory.
	FileTypeFolder FileType = "folder"
	// FileTypeAudio represents an audio track.
	FileTypeAudio FileType = "audio"
	// FileTypePlaylist represents a playlist file.
	FileTypePlaylist FileType = "playlist"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
	".wav":  true,
	".m4a":  true,
	".m4b":  true,
	".aac":  true,
	".wma":  true,
	".opus": true,
	".aiff": true,
	".aif":  true,
}

// PlaylistExtensions maps file extensions to whether they are supported
// playlist container formats.
var PlaylistExtensions = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
	".cue":  true,
	".xspf": true,
	".xml":  true,
	".wpl":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Audio
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".m4b":  "audio/mp4",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",

	// Playlists
	".m3u":  "audio/x-mpegurl",
	".m3u8": "audio/x-mpegurl",
	".pls":  "audio/x-scpls",
	".cue":  "application/x-cue",
	".xspf": "application/xspf+xml",
	".xml":  "application/xml",
	".wpl":  "application/vnd.ms-wpl",
}

// GetFileType returns the FileType for a given file extension.
// The extension should include the leading dot (e.g., ".mp3"); matching is
// case-insensitive. Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	ext = strings.ToLower(ext)
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	if PlaylistExtensions[ext] {
		return FileTypePlaylist
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension, or
// "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
