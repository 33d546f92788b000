package session

import (
	"context"

	"github.com/scget/sc-downloader/internal/api"
	"github.com/scget/sc-downloader/internal/model"
)

// Backend is the slice of the api client the orchestrator needs
type Backend interface {
	GetTrackInfo(ctx context.Context, scURL string) (*model.TrackInfo, error)
	Download(ctx context.Context, dr api.DownloadRequest) (*api.DownloadResult, error)
}

// Orchestrator defines the interface for the session service.
type Orchestrator interface {
	SetUpdateCallback(func(model.DownloadSession))
	SetCompletionCallback(func(model.DownloadSession))
	Session() model.DownloadSession
	FetchInfo(url string) error
	Confirm() error
	Cancel()
	SetAttachMetadata(attach bool)
	SetDownloadDirectory(dir string)
}
