package model

import (
	"time"
)

// DownloadSession represents the page-lifetime state of one preview-and-
// download flow. It is discarded and recreated on URL edit or explicit cancel
// and never persists across restarts.
type DownloadSession struct {
	ID             string
	URL            string
	Phase          SessionPhase
	Track          *TrackInfo // last resolved metadata, nil before resolution
	AttachMetadata bool       // user toggle, forwarded explicitly on download
	StatusText     string     // human readable progress message
	LastError      string     // last error message if any
	OutputPath     string     // path to saved file
	FileSize       int64      // saved file size in bytes
	StartedAt      time.Time  // when the session was created
	FinishedAt     time.Time  // when the download finished
}

// IsConfirming returns true while metadata is previewed and the download has
// not been committed or canceled
func (ds *DownloadSession) IsConfirming() bool {
	return ds.Phase == PhaseConfirming
}

// DisplayTitle returns the resolved title, or the raw URL before resolution
func (ds *DownloadSession) DisplayTitle() string {
	if ds.Track != nil {
		if t := ds.Track.DisplayTitle(); t != "" {
			return t
		}
	}
	return ds.URL
}

// Snapshot returns a copy of the session safe to hand to the UI goroutine.
// The Track pointer is shared; TrackInfo is treated as read-only once stored.
func (ds *DownloadSession) Snapshot() DownloadSession {
	return *ds
}
