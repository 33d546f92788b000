package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconCopy     = "📋"
	IconClose    = "×"
	IconError    = "❌"
	IconMusic    = "🎵"
	IconLanguage = "🌐"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
)

// Layout sizing (history rows / preview panel)
const (
	KindLabelWidth float32 = 64
	SizeLabelWidth float32 = 84

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 56
	RowDefaultH  float32 = 48

	PreviewArtworkSize  float32 = 96
	PreviewTrackListMax float32 = 180
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Settings dialog sizing
const (
	SettingsDialogWidth  float32 = 480
	SettingsDialogHeight float32 = 420
)

// File size formatting
const (
	FileSizeUnit  = 1024
	FileSizeUnits = "KMGTPE"
)
