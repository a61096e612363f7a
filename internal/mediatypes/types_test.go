package mediatypes

import "testing"

func TestGetFileType(t *testing.T) {
	tests := []struct {
		ext      string
		expected FileType
	}{
		{".mp3", FileTypeAudio},
		{".flac", FileTypeAudio},
		{".OGG", FileTypeAudio},
		{".m3u", FileTypePlaylist},
		{".m3u8", FileTypePlaylist},
		{".pls", FileTypePlaylist},
		{".cue", FileTypePlaylist},
		{".xspf", FileTypePlaylist},
		{".wpl", FileTypePlaylist},
		{".txt", FileTypeOther},
		{".jpg", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetFileType(tt.ext); got != tt.expected {
				t.Errorf("GetFileType(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".mp3", "audio/mpeg"},
		{".M3U", "audio/x-mpegurl"},
		{".xspf", "application/xspf+xml"},
		{".bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.expected {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.expected)
		}
	}
}
