package ui

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/scget/sc-downloader/internal/history"
)

// formatFileSize formats file size in bytes to human readable format
func formatFileSize(bytes int64) string {
	if bytes < FileSizeUnit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(FileSizeUnit), 0
	for n := bytes / FileSizeUnit; n >= FileSizeUnit; n /= FileSizeUnit {
		div *= FileSizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), FileSizeUnits[exp])
}

// HistoryRow is a compact row showing one saved download
type HistoryRow struct {
	widget.BaseWidget

	record       history.Record
	localization *Localization

	titleLabel *widget.Label
	metaLabel  *widget.Label

	revealBtn *widget.Button
	playBtn   *widget.Button
	copyBtn   *widget.Button
	removeBtn *widget.Button

	onReveal   func(filePath string)
	onOpen     func(filePath string)
	onCopyPath func(filePath string)
	onRemove   func(recordID string)
}

// NewHistoryRow creates a new history row widget
func NewHistoryRow(record history.Record, localization *Localization) *HistoryRow {
	hr := &HistoryRow{
		record:       record,
		localization: localization,
	}
	hr.ExtendBaseWidget(hr)
	hr.createUI()
	hr.updateFromRecord()
	return hr
}

// SetCallbacks sets the action callbacks
func (hr *HistoryRow) SetCallbacks(
	onReveal func(filePath string),
	onOpen func(filePath string),
	onCopyPath func(filePath string),
	onRemove func(recordID string),
) {
	hr.onReveal = onReveal
	hr.onOpen = onOpen
	hr.onCopyPath = onCopyPath
	hr.onRemove = onRemove
}

// UpdateRecord updates the row with new record data
func (hr *HistoryRow) UpdateRecord(record history.Record) {
	hr.record = record
	hr.updateFromRecord()
	hr.Refresh()
}

// createUI creates the UI components
func (hr *HistoryRow) createUI() {
	hr.titleLabel = widget.NewLabel("")
	hr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	hr.titleLabel.Truncation = fyne.TextTruncateEllipsis
	hr.titleLabel.Alignment = fyne.TextAlignLeading

	hr.metaLabel = widget.NewLabel("")
	hr.metaLabel.Alignment = fyne.TextAlignLeading
	hr.metaLabel.TextStyle = fyne.TextStyle{Monospace: true}

	hr.revealBtn = widget.NewButton(hr.localization.GetText(KeyReveal), func() {
		record := hr.record
		if hr.onReveal == nil {
			log.Printf("onReveal callback is nil for record %s", record.ID)
			return
		}
		if record.OutputPath == "" {
			widget.ShowPopUp(widget.NewLabel("File path not available"), fyne.CurrentApp().Driver().CanvasForObject(hr.revealBtn))
			return
		}
		hr.onReveal(record.OutputPath)
	})
	hr.revealBtn.Importance = widget.MediumImportance

	hr.playBtn = widget.NewButton(hr.localization.GetText(KeyOpen), func() {
		record := hr.record
		if record.OutputPath != "" && hr.onOpen != nil {
			hr.onOpen(record.OutputPath)
		} else {
			widget.ShowPopUp(widget.NewLabel("File path not available"), fyne.CurrentApp().Driver().CanvasForObject(hr.playBtn))
		}
	})
	hr.playBtn.Importance = widget.MediumImportance

	hr.copyBtn = widget.NewButton(IconCopy, func() {
		record := hr.record
		if record.OutputPath != "" && hr.onCopyPath != nil {
			hr.onCopyPath(record.OutputPath)
		}
	})
	hr.copyBtn.Importance = widget.LowImportance

	hr.removeBtn = widget.NewButton(IconClose, func() {
		record := hr.record
		if hr.onRemove != nil {
			hr.onRemove(record.ID)
		}
	})
	hr.removeBtn.Importance = widget.LowImportance
}

// updateFromRecord updates UI components from the record
func (hr *HistoryRow) updateFromRecord() {
	title := strings.TrimSpace(hr.record.Title)
	if title == "" {
		title = hr.record.URL
	}
	if hr.record.Artist != "" {
		title = title + " — " + strings.TrimSpace(hr.record.Artist)
	}
	hr.titleLabel.SetText(title)

	var parts []string
	if hr.record.Kind != "" {
		parts = append(parts, hr.record.Kind.String())
	}
	if hr.record.FileSize > 0 {
		parts = append(parts, formatFileSize(hr.record.FileSize))
	}
	if !hr.record.SavedAt.IsZero() {
		parts = append(parts, hr.record.SavedAt.Format("2006-01-02 15:04"))
	}
	if len(parts) == 0 {
		hr.metaLabel.SetText(DashPlaceholder)
	} else {
		hr.metaLabel.SetText(strings.Join(parts, MiddleDotSeparator))
	}

	if hr.record.OutputPath != "" {
		hr.revealBtn.Enable()
		hr.playBtn.Enable()
		hr.copyBtn.Enable()
	} else {
		hr.revealBtn.Disable()
		hr.playBtn.Disable()
		hr.copyBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (hr *HistoryRow) CreateRenderer() fyne.WidgetRenderer {
	return &historyRowRenderer{row: hr}
}

// historyRowRenderer renders the history row widget
type historyRowRenderer struct {
	row    *HistoryRow
	layout *fyne.Container
}

// Layout arranges the components
func (r *historyRowRenderer) Layout(size fyne.Size) {
	if r.layout == nil {
		r.createLayout()
	}
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	if size.Height < RowMinHeight {
		size.Height = RowMinHeight
	}
	r.layout.Resize(size)
}

// MinSize returns the minimum size
func (r *historyRowRenderer) MinSize() fyne.Size {
	if r.layout != nil {
		return r.layout.MinSize()
	}
	return fyne.NewSize(RowMinWidth, RowMinHeight)
}

// Refresh refreshes the renderer
func (r *historyRowRenderer) Refresh() {
	if r.layout == nil {
		r.createLayout()
	}
	r.layout.Refresh()
}

// Objects returns the container objects
func (r *historyRowRenderer) Objects() []fyne.CanvasObject {
	if r.layout == nil {
		r.createLayout()
	}
	return []fyne.CanvasObject{r.layout}
}

// Destroy cleans up the renderer
func (r *historyRowRenderer) Destroy() {}

// createLayout creates the main layout
func (r *historyRowRenderer) createLayout() {
	hr := r.row

	// Helper to fix width using a transparent rectangle underneath
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.RGBA{0, 0, 0, 0})
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	leftSide := container.NewVBox(
		hr.titleLabel,
		fixedWidth(SizeLabelWidth, hr.metaLabel),
	)

	actionRow := container.NewHBox(
		hr.revealBtn,
		hr.playBtn,
		hr.copyBtn,
		hr.removeBtn,
	)

	// Border layout keeps the buttons flush to the right edge
	mainContent := container.NewBorder(nil, nil, nil, actionRow, leftSide)

	r.layout = container.NewVBox(
		mainContent,
		widget.NewSeparator(),
	)

	r.layout.Resize(fyne.NewSize(RowMinWidth, RowDefaultH))
}
