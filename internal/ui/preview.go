package ui

import (
	"fmt"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/scget/sc-downloader/internal/model"
)

// PreviewPanel shows resolved track metadata and asks the user to confirm the
// download. For playlists and albums it lists the known tracks and notes that
// the result arrives as a single ZIP archive.
type PreviewPanel struct {
	localization *Localization

	titleLabel  *widget.Label
	artistLabel *widget.Label
	statsLabel  *widget.Label
	descLabel   *widget.Label

	trackListBox *fyne.Container
	trackScroll  *container.Scroll

	attachCheck *widget.Check
	downloadBtn *widget.Button
	cancelBtn   *widget.Button

	root *fyne.Container

	onDownload     func()
	onCancel       func()
	onAttachToggle func(attach bool)
}

// NewPreviewPanel creates a hidden preview panel
func NewPreviewPanel(localization *Localization) *PreviewPanel {
	p := &PreviewPanel{
		localization: localization,
	}

	p.createUI()
	return p
}

// SetCallbacks sets the confirm, cancel and attach-toggle callbacks
func (p *PreviewPanel) SetCallbacks(onDownload, onCancel func(), onAttachToggle func(bool)) {
	p.onDownload = onDownload
	p.onCancel = onCancel
	p.onAttachToggle = onAttachToggle
}

// Container returns the panel's root container
func (p *PreviewPanel) Container() *fyne.Container {
	return p.root
}

// createUI creates the panel components
func (p *PreviewPanel) createUI() {
	p.titleLabel = widget.NewLabel("")
	p.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	p.titleLabel.Wrapping = fyne.TextWrapWord
	p.titleLabel.Truncation = fyne.TextTruncateEllipsis

	p.artistLabel = widget.NewLabel("")
	p.artistLabel.Truncation = fyne.TextTruncateEllipsis

	p.statsLabel = widget.NewLabel("")
	p.statsLabel.TextStyle = fyne.TextStyle{Monospace: true}

	p.descLabel = widget.NewLabel("")
	p.descLabel.Wrapping = fyne.TextWrapWord
	p.descLabel.Truncation = fyne.TextTruncateEllipsis

	p.trackListBox = container.NewVBox()
	p.trackScroll = container.NewVScroll(p.trackListBox)
	p.trackScroll.SetMinSize(fyne.NewSize(0, PreviewTrackListMax))
	p.trackScroll.Hide()

	p.attachCheck = widget.NewCheck(p.localization.GetText(KeyAttachMetadata), func(checked bool) {
		if p.onAttachToggle != nil {
			p.onAttachToggle(checked)
		}
	})

	p.downloadBtn = widget.NewButton(p.localization.GetText(KeyDownload), func() {
		if p.onDownload != nil {
			p.onDownload()
		}
	})
	p.downloadBtn.Importance = widget.HighImportance

	p.cancelBtn = widget.NewButton(p.localization.GetText(KeyCancel), func() {
		if p.onCancel != nil {
			p.onCancel()
		}
	})
	p.cancelBtn.Importance = widget.MediumImportance

	buttonRow := container.NewHBox(p.downloadBtn, p.cancelBtn)

	p.root = container.NewVBox(
		widget.NewSeparator(),
		p.titleLabel,
		p.artistLabel,
		p.statsLabel,
		p.descLabel,
		p.trackScroll,
		p.attachCheck,
		buttonRow,
		widget.NewSeparator(),
	)
	p.root.Hide()
}

// ShowTrack fills the panel with resolved metadata and makes it visible
func (p *PreviewPanel) ShowTrack(info *model.TrackInfo, attach bool) {
	if info == nil {
		log.Printf("Warning: ShowTrack called with nil track info")
		return
	}

	p.titleLabel.SetText(IconMusic + " " + strings.TrimSpace(info.Title))
	p.artistLabel.SetText(strings.TrimSpace(info.Artist))
	p.statsLabel.SetText(p.statsLine(info))

	desc := strings.TrimSpace(info.Description)
	if desc != "" {
		p.descLabel.SetText(desc)
		p.descLabel.Show()
	} else {
		p.descLabel.SetText("")
		p.descLabel.Hide()
	}

	p.fillTrackList(info)

	p.attachCheck.SetChecked(attach)
	p.SetBusy(false)
	p.root.Show()
	p.root.Refresh()
}

// SetBusy disables the action buttons while a download is in flight
func (p *PreviewPanel) SetBusy(busy bool) {
	if busy {
		p.downloadBtn.Disable()
		p.attachCheck.Disable()
	} else {
		p.downloadBtn.Enable()
		p.attachCheck.Enable()
	}
}

// Hide hides the panel
func (p *PreviewPanel) Hide() {
	p.root.Hide()
}

// statsLine builds the one-line summary under the artist name
func (p *PreviewPanel) statsLine(info *model.TrackInfo) string {
	var parts []string

	if info.Kind.IsCollection() {
		parts = append(parts, info.Kind.String())
		if info.TrackCount > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", info.TrackCount, p.localization.GetText(KeyTracks)))
		}
	} else if info.Duration > 0 {
		parts = append(parts, info.DurationString())
	}

	if info.PlaybackCount > 0 {
		parts = append(parts, formatCount(info.PlaybackCount)+" "+p.localization.GetText(KeyPlays))
	}
	if info.LikesCount > 0 {
		parts = append(parts, formatCount(info.LikesCount)+" "+p.localization.GetText(KeyLikes))
	}

	if len(parts) == 0 {
		return DashPlaceholder
	}
	return strings.Join(parts, MiddleDotSeparator)
}

// fillTrackList rebuilds the playlist preview rows. The list shows only what
// the backend sent; it is never padded out to the advertised track count.
func (p *PreviewPanel) fillTrackList(info *model.TrackInfo) {
	p.trackListBox.RemoveAll()

	if !info.Kind.IsCollection() || len(info.Tracks) == 0 {
		p.trackScroll.Hide()
		return
	}

	for i, entry := range info.Tracks {
		title := strings.TrimSpace(entry.Title)
		if entry.Artist != "" {
			title = title + " — " + strings.TrimSpace(entry.Artist)
		}

		row := widget.NewLabel(fmt.Sprintf("%2d. %s  %s", i+1, title, entry.DurationString()))
		row.Truncation = fyne.TextTruncateEllipsis
		p.trackListBox.Add(row)
	}

	p.trackScroll.Show()
	p.trackScroll.Refresh()
}

// formatCount formats play/like counters compactly (e.g. 12.3K)
func formatCount(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	div, exp := int64(1000), 0
	for v := n / 1000; v >= 1000; v /= 1000 {
		div *= 1000
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMB"[exp])
}
