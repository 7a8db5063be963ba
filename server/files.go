package server

import (
	"path/filepath"
	"strings"
)

// contentTypes maps video file extensions to their MIME type
var contentTypes = map[string]string{
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mov": "video/quicktime",
}

// contentType returns the MIME type for the video filename
func contentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}

	return "application/octet-stream"
}

// secureFilename reduces a client supplied filename to a safe base name of
// ASCII letters, digits, dots, dashes and underscores
func secureFilename(filename string) string {

	// clients may send windows style paths
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder

	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "._")
	ext := strings.ToLower(filepath.Ext(filename))

	if name == "" || !strings.EqualFold(filepath.Ext(name), ext) {
		return "video" + ext
	}

	return name
}
