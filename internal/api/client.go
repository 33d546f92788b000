package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/scget/sc-downloader/internal/model"
)

// Endpoint paths of the FreeSound backend
const (
	TrackInfoPath = "/track-info"
	DownloadPath  = "/download"
	HealthPath    = "/health"
)

// Query parameter names
const (
	ParamURL            = "url"
	ParamFormat         = "format"
	ParamDownloadAll    = "download_all"
	ParamAttachMetadata = "attach_metadata"
)

// DefaultFormat is the only output format the backend renders
const DefaultFormat = "mp3"

// Client timeouts. Metadata lookups are quick; downloads may transcode whole
// playlists on the backend before the first byte arrives.
const (
	InfoTimeout     = 30 * time.Second
	DownloadTimeout = 30 * time.Minute
)

// Client talks to the FreeSound backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// DownloadRequest describes one download call. AttachMetadata is always sent
// explicitly so the backend default never masks the user's choice.
type DownloadRequest struct {
	URL            string
	Format         string
	DownloadAll    bool
	AttachMetadata bool
}

// DownloadResult is the streamed binary response of a download call. The
// caller owns Body and must close it.
type DownloadResult struct {
	Body              io.ReadCloser
	ContentType       string
	ContentLength     int64
	SuggestedFilename string // from content-disposition, empty if absent
}

// HealthStatus is the backend health probe response
type HealthStatus struct {
	Status          string `json:"status"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
}

// NewClient creates a backend client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DownloadTimeout},
		// 2 req/sec is plenty for an interactive UI and keeps the backend polite
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// BaseURL returns the configured backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient overrides the underlying HTTP client, used in tests
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// GetTrackInfo fetches track/playlist/album metadata for a SoundCloud URL.
// Non-2xx responses are returned as *StatusError.
func (c *Client) GetTrackInfo(ctx context.Context, scURL string) (*model.TrackInfo, error) {
	if scURL == "" {
		return nil, fmt.Errorf("soundcloud URL is empty")
	}

	query := url.Values{}
	query.Set(ParamURL, scURL)

	ctx, cancel := context.WithTimeout(ctx, InfoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+TrackInfoPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build track-info request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("track-info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp)
	}

	var info model.TrackInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode track info: %w", err)
	}

	return &info, nil
}

// Download requests the rendered MP3 or ZIP for a SoundCloud URL. The
// download_all and attach_metadata flags are always present in the query.
func (c *Client) Download(ctx context.Context, dr DownloadRequest) (*DownloadResult, error) {
	if dr.URL == "" {
		return nil, fmt.Errorf("soundcloud URL is empty")
	}

	format := dr.Format
	if format == "" {
		format = DefaultFormat
	}

	query := url.Values{}
	query.Set(ParamURL, dr.URL)
	query.Set(ParamFormat, format)
	query.Set(ParamDownloadAll, strconv.FormatBool(dr.DownloadAll))
	query.Set(ParamAttachMetadata, strconv.FormatBool(dr.AttachMetadata))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+DownloadPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, newStatusError(resp)
	}

	return &DownloadResult{
		Body:              resp.Body,
		ContentType:       resp.Header.Get("Content-Type"),
		ContentLength:     resp.ContentLength,
		SuggestedFilename: filenameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

// Health probes the backend health endpoint
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, InfoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode health status: %w", err)
	}

	return &status, nil
}

// do applies rate limiting and common headers before dispatching the request
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json, audio/mpeg, application/zip")

	return c.httpClient.Do(req)
}

// filenameFromDisposition extracts the unquoted filename parameter from a
// content-disposition header, returning "" for anything unparseable
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return params["filename"]
}
