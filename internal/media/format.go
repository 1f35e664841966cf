package media

import (
	"mime"
	"path/filepath"
	"strings"
)

var supportedFormats = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".wma"}

// ValidateAudioFormat checks if the file extension looks like audio.
// The backend remains the authority on which formats it accepts.
func ValidateAudioFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type used for an export artifact
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "txt", "srt":
		return "text/plain; charset=utf-8"
	}
	if t := mime.TypeByExtension("." + format); t != "" {
		return t
	}
	return "application/octet-stream"
}
