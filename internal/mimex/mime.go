// Package mimex maps file extensions to mimetypes with a fixed lookup
// table. Anything unknown falls back to application/octet-stream.
package mimex

import (
	"path/filepath"
	"strings"
)

const fallback = "application/octet-stream"

var byExtension = map[string]string{
	// images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".ico":  "image/x-icon",

	// video
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",

	// audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",

	// documents
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Guess returns the mimetype for a filename based on its extension.
func Guess(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := byExtension[ext]; ok {
		return mt
	}
	return fallback
}

// IsImage reports whether the guessed mimetype is an image type.
// Used to decide whether a thumbnail should be attempted.
func IsImage(mimetype string) bool {
	return strings.HasPrefix(mimetype, "image/")
}
