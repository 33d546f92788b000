package config

import (
	"os"

	"fyne.io/fyne/v2"

	"github.com/scget/sc-downloader/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyBackendURL         = "backend_url"
	KeyDownloadDir        = "download_directory"
	KeyAttachMetadata     = "attach_metadata"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// EnvBackendURL overrides the stored backend URL when set
const EnvBackendURL = "SCGET_BACKEND_URL"

// Default values
const (
	DefaultBackendURL         = "http://localhost:8000"
	DefaultAttachMetadata     = true
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = true
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetBackendURL returns the backend base URL. The environment variable takes
// precedence over the stored preference so deployments can repoint the client
// without touching preferences.
func (s *Settings) GetBackendURL() string {
	if env := os.Getenv(EnvBackendURL); env != "" {
		return env
	}

	url := s.app.Preferences().String(KeyBackendURL)
	if url == "" {
		s.SetBackendURL(DefaultBackendURL)
		return DefaultBackendURL
	}
	return url
}

// SetBackendURL sets the backend base URL
func (s *Settings) SetBackendURL(url string) {
	s.app.Preferences().SetString(KeyBackendURL, url)
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetAttachMetadata returns whether downloads should carry ID3 metadata
func (s *Settings) GetAttachMetadata() bool {
	return s.app.Preferences().BoolWithFallback(KeyAttachMetadata, DefaultAttachMetadata)
}

// SetAttachMetadata sets the attach-metadata default for new sessions
func (s *Settings) SetAttachMetadata(attach bool) {
	s.app.Preferences().SetBool(KeyAttachMetadata, attach)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to auto-reveal saved downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal saved downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
