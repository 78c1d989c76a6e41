package scan

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".tif":  true,
		".tiff": true,
		".bmp":  true,
		".gif":  true,
		".webp": true,
	}
)

// AllowedExtension reports whether name looks like an image the OCR engines accept.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// SanitizeFilename reduces a client supplied name to a safe base name:
// path separators become spaces, whitespace runs become underscores and
// anything outside [A-Za-z0-9_.-] is dropped. It may return "".
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
