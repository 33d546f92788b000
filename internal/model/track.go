package model

import (
	"fmt"
	"strings"
)

// Kind identifies the SoundCloud content kind behind a URL
type Kind string

const (
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
	KindAlbum    Kind = "album"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// IsCollection returns true for kinds delivered as a ZIP archive
func (k Kind) IsCollection() bool {
	return k == KindPlaylist || k == KindAlbum
}

// TrackPreview is a single entry of a playlist/album preview list
type TrackPreview struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int64  `json:"duration"` // milliseconds
}

// TrackInfo holds metadata returned by the backend for a SoundCloud URL.
// The preview list may be shorter than TrackCount; the UI never re-derives
// one from the other.
type TrackInfo struct {
	Kind          Kind           `json:"kind"`
	Title         string         `json:"title"`
	Artist        string         `json:"artist"`
	Duration      int64          `json:"duration,omitempty"` // milliseconds
	ArtworkURL    string         `json:"artwork_url,omitempty"`
	Description   string         `json:"description,omitempty"`
	PlaybackCount int64          `json:"playback_count,omitempty"`
	LikesCount    int64          `json:"likes_count,omitempty"`
	TrackCount    int            `json:"track_count,omitempty"`
	Tracks        []TrackPreview `json:"tracks,omitempty"`
}

// DisplayTitle returns "Title — Artist", falling back to whichever is set
func (ti *TrackInfo) DisplayTitle() string {
	title := strings.TrimSpace(ti.Title)
	artist := strings.TrimSpace(ti.Artist)

	switch {
	case title != "" && artist != "":
		return title + " — " + artist
	case title != "":
		return title
	default:
		return artist
	}
}

// DurationString returns the duration formatted as mm:ss or hh:mm:ss
func (ti *TrackInfo) DurationString() string {
	return FormatDuration(ti.Duration)
}

// DurationString returns the preview entry duration formatted as mm:ss
func (tp *TrackPreview) DurationString() string {
	return FormatDuration(tp.Duration)
}

// FormatDuration formats a millisecond duration as mm:ss, or hh:mm:ss when
// an hour or longer. Non-positive durations render as "—".
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "—"
	}

	totalSec := ms / 1000
	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	seconds := totalSec % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
