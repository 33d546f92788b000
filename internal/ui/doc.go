package ui

// Package ui implements the Fyne desktop interface: URL input with metadata
// preview, the download confirmation panel, the saved-downloads history list,
// settings dialog and localization.
