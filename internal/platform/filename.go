package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Filename limits
const (
	// MaxFilenameLength caps the sanitized base name, extension excluded
	MaxFilenameLength = 120

	// MinSavedFileSize guards against saving empty or truncated payloads
	MinSavedFileSize = 1024
)

// Content types the backend serves
const (
	ContentTypeMPEG = "audio/mpeg"
	ContentTypeZip  = "application/zip"
)

// File extensions
const (
	ExtMP3 = ".mp3"
	ExtZip = ".zip"
)

// Fallback filenames when neither title nor content-disposition is usable
const (
	FallbackTrackName    = "track" + ExtMP3
	FallbackPlaylistName = "playlist" + ExtZip
)

// illegalFilenameChars are characters rejected by at least one supported
// filesystem
const illegalFilenameChars = `<>:"/\|?*`

// SanitizeFilename strips illegal filesystem characters, collapses runs of
// whitespace to single spaces, trims, and caps the result at
// MaxFilenameLength runes.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(illegalFilenameChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	sanitized := strings.Join(strings.Fields(b.String()), " ")

	runes := []rune(sanitized)
	if len(runes) > MaxFilenameLength {
		sanitized = strings.TrimSpace(string(runes[:MaxFilenameLength]))
	}

	return sanitized
}

// ExtensionForContentType maps a response content type to a file extension.
// Anything that is not an archive is treated as MP3 audio.
func ExtensionForContentType(contentType string) string {
	if strings.Contains(strings.ToLower(contentType), ContentTypeZip) {
		return ExtZip
	}
	return ExtMP3
}

// DeriveFilename picks the name for a saved download, in priority order:
// sanitized title plus content-type extension, then the filename suggested by
// the content-disposition header, then a fixed fallback.
func DeriveFilename(title, contentType, suggested string) string {
	ext := ExtensionForContentType(contentType)

	if sanitized := SanitizeFilename(title); sanitized != "" {
		return sanitized + ext
	}

	if suggested != "" {
		if sanitized := SanitizeFilename(suggested); sanitized != "" {
			return sanitized
		}
	}

	if ext == ExtZip {
		return FallbackPlaylistName
	}
	return FallbackTrackName
}

// UniquePath returns path, or the first "name (n).ext" variant that does not
// exist yet, so saves never clobber earlier downloads.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// SaveStream writes r into dir under filename, avoiding collisions via
// UniquePath. It returns the final path and the number of bytes written.
func SaveStream(dir, filename string, r io.Reader) (string, int64, error) {
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		return "", 0, fmt.Errorf("failed to ensure downloads dir: %w", err)
	}

	path := UniquePath(filepath.Join(dir, filename))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return path, written, nil
}

// ValidateFileSize reports whether the file at path exists and is at least
// minSize bytes
func ValidateFileSize(path string, minSize int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() >= minSize
}
