package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scget/sc-downloader/internal/api"
	"github.com/scget/sc-downloader/internal/model"
)

// fakeBackend is a scripted Backend implementation for tests
type fakeBackend struct {
	mu sync.Mutex

	info    *model.TrackInfo
	infoErr error

	downloadBody        string
	downloadContentType string
	downloadSuggested   string
	downloadErr         error

	infoCalls     int
	downloadCalls int
	lastRequest   api.DownloadRequest

	// blockInfo, when set, holds GetTrackInfo until closed
	blockInfo chan struct{}
}

func (f *fakeBackend) GetTrackInfo(ctx context.Context, scURL string) (*model.TrackInfo, error) {
	f.mu.Lock()
	f.infoCalls++
	block := f.blockInfo
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeBackend) Download(ctx context.Context, dr api.DownloadRequest) (*api.DownloadResult, error) {
	f.mu.Lock()
	f.downloadCalls++
	f.lastRequest = dr
	f.mu.Unlock()

	if f.downloadErr != nil {
		return nil, f.downloadErr
	}

	return &api.DownloadResult{
		Body:              io.NopCloser(strings.NewReader(f.downloadBody)),
		ContentType:       f.downloadContentType,
		SuggestedFilename: f.downloadSuggested,
	}, nil
}

func newTestService(t *testing.T, backend *fakeBackend) *Service {
	t.Helper()
	return NewService(backend, t.TempDir(), true)
}

func TestFetchInfo_EntersConfirming(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{Kind: model.KindTrack, Title: "My Song", Artist: "DJ X"},
	}
	service := newTestService(t, backend)

	err := service.FetchInfo("https://soundcloud.com/artist/track")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	session := service.Session()
	if session.Phase != model.PhaseConfirming {
		t.Errorf("Expected phase Confirming, got %s", session.Phase)
	}

	if session.Track == nil || session.Track.Title != "My Song" {
		t.Errorf("Expected stored track metadata, got %+v", session.Track)
	}

	if !session.IsConfirming() {
		t.Error("Expected IsConfirming to be true after successful fetch")
	}
}

func TestFetchInfo_EmptyURL(t *testing.T) {
	backend := &fakeBackend{}
	service := newTestService(t, backend)

	err := service.FetchInfo("   ")
	if err == nil {
		t.Fatal("Expected error for empty URL, got nil")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *ValidationError, got %T: %v", err, err)
	}

	if backend.infoCalls != 0 {
		t.Errorf("Expected no network call for empty URL, got %d", backend.infoCalls)
	}
}

func TestFetchInfo_BackendError(t *testing.T) {
	backend := &fakeBackend{
		infoErr: &api.StatusError{Code: http.StatusNotFound, Detail: "Track not found"},
	}
	service := newTestService(t, backend)

	err := service.FetchInfo("https://soundcloud.com/artist/missing")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	session := service.Session()
	if session.Phase != model.PhaseFailed {
		t.Errorf("Expected phase Failed, got %s", session.Phase)
	}

	if session.LastError != "Track not found" {
		t.Errorf("Expected server detail, got %q", session.LastError)
	}

	if session.IsConfirming() {
		t.Error("Confirming must never be entered after a failed fetch")
	}

	if backend.downloadCalls != 0 {
		t.Errorf("Expected no download request after failed fetch, got %d", backend.downloadCalls)
	}
}

func TestFetchInfo_ReplacesPreviousTrack(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{Kind: model.KindTrack, Title: "First"},
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/a/first"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	backend.info = &model.TrackInfo{Kind: model.KindTrack, Title: "Second"}
	if err := service.FetchInfo("https://soundcloud.com/a/second"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	session := service.Session()
	if session.Track.Title != "Second" {
		t.Errorf("Expected unconditional replace of metadata, got %q", session.Track.Title)
	}

	if session.URL != "https://soundcloud.com/a/second" {
		t.Errorf("Expected updated URL, got %q", session.URL)
	}
}

func TestConfirm_ValidationShortCircuit(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{Kind: model.KindTrack, Title: "Elsewhere"},
	}
	service := newTestService(t, backend)

	// Metadata resolution does not enforce the domain; Confirm does
	if err := service.FetchInfo("https://example.com/not-soundcloud"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err := service.Confirm()
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *ValidationError, got %T: %v", err, err)
	}

	if backend.downloadCalls != 0 {
		t.Errorf("Validation failure must not reach the network, got %d download calls", backend.downloadCalls)
	}

	session := service.Session()
	if session.Phase != model.PhaseFailed {
		t.Errorf("Expected phase Failed, got %s", session.Phase)
	}
}

func TestConfirm_RequiresConfirmingPhase(t *testing.T) {
	backend := &fakeBackend{}
	service := newTestService(t, backend)

	err := service.Confirm()
	if err == nil {
		t.Fatal("Expected error when confirming from idle, got nil")
	}

	if backend.downloadCalls != 0 {
		t.Errorf("Expected no download call, got %d", backend.downloadCalls)
	}
}

func TestConfirm_TrackSavedAsMP3(t *testing.T) {
	backend := &fakeBackend{
		info:                &model.TrackInfo{Kind: model.KindTrack, Title: "My Song", Artist: "DJ X"},
		downloadBody:        "mp3-bytes",
		downloadContentType: "audio/mpeg",
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !backend.lastRequest.AttachMetadata {
		t.Error("Expected attach_metadata=true to be forwarded")
	}

	if backend.lastRequest.DownloadAll {
		t.Error("Expected download_all=false for a single track")
	}

	session := service.Session()
	if session.Phase != model.PhaseSucceeded {
		t.Fatalf("Expected phase Succeeded, got %s (error: %s)", session.Phase, session.LastError)
	}

	if filepath.Base(session.OutputPath) != "My Song.mp3" {
		t.Errorf("Expected file 'My Song.mp3', got %q", filepath.Base(session.OutputPath))
	}

	data, err := os.ReadFile(session.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("Unexpected saved content: %q", data)
	}
}

func TestConfirm_PlaylistSavedAsZip(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{
			Kind:       model.KindPlaylist,
			Title:      "Summer Mix",
			TrackCount: 12,
		},
		downloadBody:        "zip-bytes",
		downloadContentType: "application/zip",
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/artist/sets/mix"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !backend.lastRequest.DownloadAll {
		t.Error("Expected download_all=true for a playlist")
	}

	session := service.Session()
	if filepath.Base(session.OutputPath) != "Summer Mix.zip" {
		t.Errorf("Expected file 'Summer Mix.zip', got %q", filepath.Base(session.OutputPath))
	}
}

func TestConfirm_AttachMetadataToggleForwarded(t *testing.T) {
	backend := &fakeBackend{
		info:                &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		downloadBody:        "mp3-bytes",
		downloadContentType: "audio/mpeg",
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	service.SetAttachMetadata(false)

	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if backend.lastRequest.AttachMetadata {
		t.Error("Expected attach_metadata=false to be forwarded explicitly")
	}
}

func TestConfirm_BackendErrorDetail(t *testing.T) {
	backend := &fakeBackend{
		info:        &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		downloadErr: &api.StatusError{Code: http.StatusInternalServerError, Detail: "ffmpeg failed"},
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err := service.Confirm()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	session := service.Session()
	if session.Phase != model.PhaseFailed {
		t.Errorf("Expected phase Failed, got %s", session.Phase)
	}

	if session.LastError != "ffmpeg failed" {
		t.Errorf("Expected visible error 'ffmpeg failed', got %q", session.LastError)
	}
}

func TestCancel_ClearsSession(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
	}
	service := newTestService(t, backend)

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	previousID := service.Session().ID

	service.Cancel()

	session := service.Session()
	if session.Phase != model.PhaseIdle {
		t.Errorf("Expected phase Idle after cancel, got %s", session.Phase)
	}

	if session.Track != nil {
		t.Error("Expected track metadata to be cleared on cancel")
	}

	if session.LastError != "" || session.StatusText != "" {
		t.Errorf("Expected flags cleared, got error=%q status=%q", session.LastError, session.StatusText)
	}

	if session.ID == previousID {
		t.Error("Expected a fresh session after cancel")
	}
}

func TestSuccessAutoDismiss(t *testing.T) {
	backend := &fakeBackend{
		info:                &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		downloadBody:        "mp3-bytes",
		downloadContentType: "audio/mpeg",
	}
	service := newTestService(t, backend)
	service.dismissDelay = 30 * time.Millisecond

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if service.Session().Phase != model.PhaseSucceeded {
		t.Fatalf("Expected phase Succeeded, got %s", service.Session().Phase)
	}

	// Wait for the dismiss timer to fire
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if service.Session().Phase == model.PhaseIdle {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	session := service.Session()
	if session.Phase != model.PhaseIdle {
		t.Fatalf("Expected auto-dismiss to idle, still %s", session.Phase)
	}

	if session.StatusText != "" {
		t.Errorf("Expected status text cleared, got %q", session.StatusText)
	}

	// Only the success flag and status clear; the saved path stays
	if session.OutputPath == "" {
		t.Error("Expected output path to survive auto-dismiss")
	}
}

func TestCancel_StopsDismissTimer(t *testing.T) {
	backend := &fakeBackend{
		info:                &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		downloadBody:        "mp3-bytes",
		downloadContentType: "audio/mpeg",
	}
	service := newTestService(t, backend)
	service.dismissDelay = 30 * time.Millisecond

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	service.Cancel()
	canceledID := service.Session().ID

	time.Sleep(100 * time.Millisecond)

	session := service.Session()
	if session.ID != canceledID {
		t.Error("Dismiss timer mutated a session it no longer owns")
	}

	if session.Phase != model.PhaseIdle {
		t.Errorf("Expected phase Idle, got %s", session.Phase)
	}
}

func TestFetchInfo_RejectsWhileInFlight(t *testing.T) {
	backend := &fakeBackend{
		info:      &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		blockInfo: make(chan struct{}),
	}
	service := newTestService(t, backend)

	done := make(chan error, 1)
	go func() {
		done <- service.FetchInfo("https://soundcloud.com/artist/track")
	}()

	// Wait until the first request is actually out
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		backend.mu.Lock()
		calls := backend.infoCalls
		backend.mu.Unlock()
		if calls == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	err := service.FetchInfo("https://soundcloud.com/artist/other")
	if !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("Expected ErrRequestInFlight, got %v", err)
	}

	close(backend.blockInfo)
	if err := <-done; err != nil {
		t.Fatalf("First request should complete cleanly, got %v", err)
	}

	if backend.infoCalls != 1 {
		t.Errorf("Expected exactly one backend call, got %d", backend.infoCalls)
	}
}

func TestUpdateCallback(t *testing.T) {
	backend := &fakeBackend{
		info: &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
	}
	service := newTestService(t, backend)

	var mu sync.Mutex
	var phases []model.SessionPhase
	service.SetUpdateCallback(func(snapshot model.DownloadSession) {
		mu.Lock()
		phases = append(phases, snapshot.Phase)
		mu.Unlock()
	})

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(phases) < 2 {
		t.Fatalf("Expected at least 2 updates, got %d", len(phases))
	}

	if phases[0] != model.PhaseResolving {
		t.Errorf("Expected first update Resolving, got %s", phases[0])
	}

	if phases[len(phases)-1] != model.PhaseConfirming {
		t.Errorf("Expected last update Confirming, got %s", phases[len(phases)-1])
	}
}

func TestCompletionCallback(t *testing.T) {
	backend := &fakeBackend{
		info:                &model.TrackInfo{Kind: model.KindTrack, Title: "My Song"},
		downloadBody:        "mp3-bytes",
		downloadContentType: "audio/mpeg",
	}
	service := newTestService(t, backend)

	var completed []model.DownloadSession
	service.SetCompletionCallback(func(snapshot model.DownloadSession) {
		completed = append(completed, snapshot)
	})

	if err := service.FetchInfo("https://soundcloud.com/artist/track"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.Confirm(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(completed) != 1 {
		t.Fatalf("Expected 1 completion, got %d", len(completed))
	}

	if completed[0].OutputPath == "" || completed[0].FileSize == 0 {
		t.Errorf("Expected completion snapshot with file details, got %+v", completed[0])
	}
}
