package api

// Package api implements the HTTP client for the FreeSound backend service:
// track metadata lookup, media download, and the health probe. The base URL
// is injected at construction; the client never reads ambient configuration.
