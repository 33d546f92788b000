package session

// Package session implements the preview-confirm-download state machine that
// drives the UI: metadata resolution, the confirming phase, the committed
// download with file save, and the auto-dismissing success state.
