package history

// Package history persists the local record of completed downloads in a
// BoltDB file, newest first, so the UI can list, reveal, and re-open files
// saved in earlier runs.
