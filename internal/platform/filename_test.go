package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title", "My Song", "My Song"},
		{"illegal characters stripped", `My<Song>:"is/great\|?*`, "MySongisgreat"},
		{"whitespace collapsed", "My   Song \t Remix", "My Song Remix"},
		{"leading and trailing trimmed", "  My Song  ", "My Song"},
		{"empty", "", ""},
		{"only illegal characters", `<>:"/\|?*`, ""},
		{"unicode preserved", "Träume über Wolken", "Träume über Wolken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_LengthCap(t *testing.T) {
	long := strings.Repeat("a", 500)
	result := SanitizeFilename(long)

	if len([]rune(result)) != MaxFilenameLength {
		t.Errorf("Expected length %d, got %d", MaxFilenameLength, len([]rune(result)))
	}
}

func TestSanitizeFilename_NoIllegalCharactersRemain(t *testing.T) {
	result := SanitizeFilename(`a<b>c:d"e/f\g|h?i*j`)

	for _, r := range illegalFilenameChars {
		if strings.ContainsRune(result, r) {
			t.Errorf("Sanitized name still contains %q: %s", r, result)
		}
	}
}

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"audio/mpeg", ExtMP3},
		{"application/zip", ExtZip},
		{"application/zip; charset=binary", ExtZip},
		{"APPLICATION/ZIP", ExtZip},
		{"", ExtMP3},
		{"text/html", ExtMP3},
	}

	for _, tt := range tests {
		result := ExtensionForContentType(tt.contentType)
		if result != tt.expected {
			t.Errorf("ExtensionForContentType(%q) = %s, expected %s", tt.contentType, result, tt.expected)
		}
	}
}

func TestDeriveFilename(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		contentType string
		suggested   string
		expected    string
	}{
		{"title wins", "My Song", "audio/mpeg", "server.mp3", "My Song.mp3"},
		{"playlist title gets zip", "Summer Mix", "application/zip", "", "Summer Mix.zip"},
		{"disposition fallback", "", "audio/mpeg", "server name.mp3", "server name.mp3"},
		{"disposition sanitized", `<>`, "audio/mpeg", `bad/name.mp3`, "badname.mp3"},
		{"track fallback", "", "audio/mpeg", "", FallbackTrackName},
		{"playlist fallback", "", "application/zip", "", FallbackPlaylistName},
		{"illegal-only title falls through", `???`, "audio/mpeg", "from-server.mp3", "from-server.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeriveFilename(tt.title, tt.contentType, tt.suggested)
			if result != tt.expected {
				t.Errorf("DeriveFilename(%q, %q, %q) = %q, expected %q",
					tt.title, tt.contentType, tt.suggested, result, tt.expected)
			}
		})
	}
}

func TestUniquePath(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "My Song.mp3")

	// Nothing exists yet, path is returned untouched
	if got := UniquePath(path); got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	got := UniquePath(path)
	expected := filepath.Join(tempDir, "My Song (1).mp3")
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}

	if err := os.WriteFile(expected, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	got = UniquePath(path)
	expected = filepath.Join(tempDir, "My Song (2).mp3")
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestSaveStream(t *testing.T) {
	tempDir := t.TempDir()

	path, written, err := SaveStream(tempDir, "My Song.mp3", strings.NewReader("mp3-bytes"))
	if err != nil {
		t.Fatalf("SaveStream failed: %v", err)
	}

	if written != int64(len("mp3-bytes")) {
		t.Errorf("Expected %d bytes written, got %d", len("mp3-bytes"), written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("Unexpected file content: %q", data)
	}

	// Second save with the same name must not clobber the first
	path2, _, err := SaveStream(tempDir, "My Song.mp3", strings.NewReader("other"))
	if err != nil {
		t.Fatalf("SaveStream failed: %v", err)
	}
	if path2 == path {
		t.Errorf("Expected a unique path for the second save, got %s twice", path)
	}
}

func TestValidateFileSize(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "file.mp3")

	if ValidateFileSize(path, 1) {
		t.Error("Expected false for missing file")
	}

	if err := os.WriteFile(path, make([]byte, 2048), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if !ValidateFileSize(path, MinSavedFileSize) {
		t.Error("Expected true for file above minimum size")
	}

	if ValidateFileSize(path, 4096) {
		t.Error("Expected false for file below minimum size")
	}
}
