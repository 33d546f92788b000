package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scget/sc-downloader/internal/api"
	"github.com/scget/sc-downloader/internal/model"
	"github.com/scget/sc-downloader/internal/platform"
)

// DomainMarker must appear in a URL before a download is committed
const DomainMarker = "soundcloud.com"

// SuccessDismissDelay is how long the succeeded state stays visible before
// the session returns to idle on its own
const SuccessDismissDelay = 3 * time.Second

// ErrRequestInFlight is returned when a fetch or download is started while
// another request is still outstanding. Requests are serialized per session.
var ErrRequestInFlight = errors.New("another request is already in flight")

// ValidationError is a pre-network rejection of user input
type ValidationError struct {
	Reason string
}

// Error returns the validation reason
func (e *ValidationError) Error() string {
	return e.Reason
}

// Service orchestrates one download session at a time
type Service struct {
	mu            sync.Mutex
	backend       Backend
	downloadDir   string
	defaultAttach bool

	session      model.DownloadSession
	inFlight     bool
	dismissDelay time.Duration

	// dismissTimer returns a succeeded session to idle; canceled by any
	// newer action so it can never mutate a session that moved on
	dismissTimer *time.Timer

	onUpdate   func(model.DownloadSession)
	onComplete func(model.DownloadSession)
}

// NewService creates a new session service
func NewService(backend Backend, downloadDir string, defaultAttach bool) *Service {
	return &Service{
		backend:       backend,
		downloadDir:   downloadDir,
		defaultAttach: defaultAttach,
		dismissDelay:  SuccessDismissDelay,
		session:       newSession(defaultAttach),
	}
}

// newSession builds a fresh idle session
func newSession(attach bool) model.DownloadSession {
	return model.DownloadSession{
		ID:             newSessionID(),
		Phase:          model.PhaseIdle,
		AttachMetadata: attach,
		StartedAt:      time.Now(),
	}
}

// SetUpdateCallback sets the callback invoked with a session snapshot on
// every state change
func (s *Service) SetUpdateCallback(callback func(model.DownloadSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// SetCompletionCallback sets the callback invoked once per saved download
func (s *Service) SetCompletionCallback(callback func(model.DownloadSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = callback
}

// SetBackend swaps the backend client, used after the backend URL setting
// changes. A request already in flight keeps the old client.
func (s *Service) SetBackend(backend Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = backend
}

// SetDownloadDirectory sets the directory downloads are saved into
func (s *Service) SetDownloadDirectory(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadDir = dir
}

// Session returns a snapshot of the current session
func (s *Service) Session() model.DownloadSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

// SetAttachMetadata toggles metadata tagging for the current session
func (s *Service) SetAttachMetadata(attach bool) {
	s.mu.Lock()
	s.session.AttachMetadata = attach
	snapshot := s.session.Snapshot()
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
}

// FetchInfo resolves metadata for a SoundCloud URL and moves the session to
// the confirming phase. Any previously stored metadata is replaced. The call
// blocks until the backend responds; run it off the UI goroutine.
func (s *Service) FetchInfo(url string) error {
	url = strings.TrimSpace(url)

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRequestInFlight
	}

	s.stopDismissTimer()

	// URL edit discards the old session wholesale
	s.session = newSession(s.session.AttachMetadata)
	s.session.URL = url

	if url == "" {
		s.session.Phase = model.PhaseFailed
		s.session.LastError = "Please enter a URL"
		snapshot := s.session.Snapshot()
		s.mu.Unlock()

		s.notifyUpdate(snapshot)
		return &ValidationError{Reason: "URL is empty"}
	}

	s.session.Phase = model.PhaseResolving
	s.session.StatusText = "Fetching track info..."
	s.inFlight = true
	sessionID := s.session.ID
	snapshot := s.session.Snapshot()
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
	log.Printf("Resolving metadata for %s (session %s)", url, sessionID)

	info, err := s.backend.GetTrackInfo(context.Background(), url)

	s.mu.Lock()
	s.inFlight = false

	// The session may have been canceled while the request was out
	if s.session.ID != sessionID {
		s.mu.Unlock()
		log.Printf("Discarding stale metadata result for session %s", sessionID)
		return nil
	}

	if err != nil {
		s.session.Phase = model.PhaseFailed
		s.session.LastError = errorMessage(err)
		s.session.StatusText = ""
		snapshot := s.session.Snapshot()
		s.mu.Unlock()

		s.notifyUpdate(snapshot)
		log.Printf("Metadata resolution failed for %s: %v", url, err)
		return err
	}

	s.session.Track = info
	s.session.Phase = model.PhaseConfirming
	s.session.StatusText = ""
	s.session.LastError = ""
	snapshot = s.session.Snapshot()
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
	log.Printf("Metadata resolved: kind=%s title=%q (session %s)", info.Kind, info.Title, sessionID)
	return nil
}

// Confirm commits the previewed download: it validates the URL, requests the
// rendered file from the backend, and saves it into the download directory.
// Collections are requested as a single ZIP. Blocks until saved or failed.
func (s *Service) Confirm() error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRequestInFlight
	}

	if s.session.Phase != model.PhaseConfirming {
		phase := s.session.Phase
		s.mu.Unlock()
		return fmt.Errorf("nothing to confirm in phase %s", phase)
	}

	url := s.session.URL
	if url == "" || !strings.Contains(url, DomainMarker) {
		s.session.Phase = model.PhaseFailed
		s.session.LastError = "Please enter a valid SoundCloud URL"
		snapshot := s.session.Snapshot()
		s.mu.Unlock()

		s.notifyUpdate(snapshot)
		return &ValidationError{Reason: "not a SoundCloud URL: " + url}
	}

	track := s.session.Track
	request := api.DownloadRequest{
		URL:            url,
		Format:         api.DefaultFormat,
		DownloadAll:    track != nil && track.Kind.IsCollection(),
		AttachMetadata: s.session.AttachMetadata,
	}

	s.session.Phase = model.PhaseDownloading
	s.session.StatusText = "Downloading..."
	s.session.LastError = ""
	s.inFlight = true
	sessionID := s.session.ID
	downloadDir := s.downloadDir
	snapshot := s.session.Snapshot()
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
	log.Printf("Downloading %s (all=%v metadata=%v, session %s)",
		url, request.DownloadAll, request.AttachMetadata, sessionID)

	outputPath, size, err := s.fetchAndSave(track, request, downloadDir)

	s.mu.Lock()
	s.inFlight = false

	if s.session.ID != sessionID {
		s.mu.Unlock()
		log.Printf("Discarding stale download result for session %s", sessionID)
		return nil
	}

	if err != nil {
		s.session.Phase = model.PhaseFailed
		s.session.LastError = errorMessage(err)
		s.session.StatusText = ""
		s.session.FinishedAt = time.Now()
		snapshot := s.session.Snapshot()
		s.mu.Unlock()

		s.notifyUpdate(snapshot)
		log.Printf("Download failed for %s: %v", url, err)
		return err
	}

	s.session.Phase = model.PhaseSucceeded
	s.session.OutputPath = outputPath
	s.session.FileSize = size
	s.session.StatusText = "Saved " + outputPath
	s.session.FinishedAt = time.Now()
	s.scheduleDismiss(sessionID)
	snapshot = s.session.Snapshot()
	completion := s.onComplete
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
	if completion != nil {
		completion(snapshot)
	}

	log.Printf("Download saved: %s (%d bytes, session %s)", outputPath, size, sessionID)
	return nil
}

// fetchAndSave performs the download request and streams the body to disk
func (s *Service) fetchAndSave(track *model.TrackInfo, request api.DownloadRequest, dir string) (string, int64, error) {
	result, err := s.backend.Download(context.Background(), request)
	if err != nil {
		return "", 0, err
	}
	defer result.Body.Close()

	title := ""
	if track != nil {
		title = track.Title
	}

	filename := platform.DeriveFilename(title, result.ContentType, result.SuggestedFilename)

	path, written, err := platform.SaveStream(dir, filename, result.Body)
	if err != nil {
		return "", 0, err
	}

	if !platform.ValidateFileSize(path, platform.MinSavedFileSize) {
		log.Printf("Saved file is suspiciously small: %s (%d bytes)", path, written)
	}

	return path, written, nil
}

// Cancel resets the session to idle from any phase, clearing metadata, error,
// and status. A response still in flight is discarded when it lands.
func (s *Service) Cancel() {
	s.mu.Lock()
	s.stopDismissTimer()
	s.session = newSession(s.defaultAttach)
	snapshot := s.session.Snapshot()
	s.mu.Unlock()

	s.notifyUpdate(snapshot)
	log.Printf("Session canceled, back to idle (session %s)", snapshot.ID)
}

// scheduleDismiss arms the timer that returns a succeeded session to idle.
// Caller must hold s.mu.
func (s *Service) scheduleDismiss(sessionID string) {
	s.stopDismissTimer()

	s.dismissTimer = time.AfterFunc(s.dismissDelay, func() {
		s.mu.Lock()
		if s.session.ID != sessionID || s.session.Phase != model.PhaseSucceeded {
			s.mu.Unlock()
			return
		}

		// Success flag and status clear; everything else stays
		s.session.Phase = model.PhaseIdle
		s.session.StatusText = ""
		snapshot := s.session.Snapshot()
		s.mu.Unlock()

		s.notifyUpdate(snapshot)
	})
}

// stopDismissTimer cancels a pending success dismissal. Caller must hold s.mu.
func (s *Service) stopDismissTimer() {
	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(snapshot model.DownloadSession) {
	s.mu.Lock()
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// errorMessage reduces an error to the string shown to the user: server
// detail when the backend sent one, the plain message otherwise
func errorMessage(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	if err != nil {
		return err.Error()
	}
	return "unknown error"
}

// newSessionID generates a unique session ID
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return "session-" + id.String()
}
