package ui

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/scget/sc-downloader/internal/config"
	"github.com/scget/sc-downloader/internal/history"
	"github.com/scget/sc-downloader/internal/model"
	"github.com/scget/sc-downloader/internal/platform"
	"github.com/scget/sc-downloader/internal/session"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	urlEntry     *widget.Entry
	infoBtn      *widget.Button
	settings     *config.Settings
	localization *Localization

	sessionSvc session.Orchestrator
	historyDB  *history.Store

	preview *PreviewPanel

	historyList    *widget.List
	historyRecords []history.Record

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	// Invoked after settings are saved so the backend client can be re-pointed
	onSettingsChanged func()
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, sessionSvc session.Orchestrator, historyDB *history.Store) *RootUI {
	// Initialize settings
	settings := config.NewSettings(app)

	// Initialize localization
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	// Ensure the configured downloads directory exists
	downloadsDir := settings.GetDownloadDirectory()
	platform.CreateDirectoryIfNotExists(downloadsDir)

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
		sessionSvc:   sessionSvc,
		historyDB:    historyDB,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	// Session state changes drive every panel below the URL row
	ui.sessionSvc.SetUpdateCallback(ui.onSessionUpdate)
	ui.sessionSvc.SetCompletionCallback(ui.onDownloadComplete)
	ui.sessionSvc.SetDownloadDirectory(downloadsDir)

	ui.setupUI()
	ui.reloadHistory()
	return ui
}

// SetSettingsChangedCallback sets the callback invoked after settings are saved
func (ui *RootUI) SetSettingsChangedCallback(callback func()) {
	ui.onSettingsChanged = callback
}

// ShowStartupNotice shows a one-off message in the notification panel, used
// for the backend health probe result on startup.
func (ui *RootUI) ShowStartupNotice(message string) {
	ui.showNotification(message, false)
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	// Create menu
	ui.createMenu()

	// Create URL entry
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.urlEntry.Validator = ui.validateURL
	// Trigger metadata resolution when user presses Enter in the URL field
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onGetInfoClick()
	}

	// Create get-info button
	ui.infoBtn = widget.NewButton(ui.localization.GetText(KeyGetInfo), ui.onGetInfoClick)
	ui.infoBtn.Importance = widget.HighImportance

	// Create settings button
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	// Create top panel (URL row)
	topPanel := container.NewBorder(nil, nil, container.NewHBox(settingsBtn), ui.infoBtn, ui.urlEntry)

	// Create notification panel under URL input (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationLabel.Truncation = fyne.TextTruncateEllipsis
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewHBox(ui.notificationSpinner, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	// Create preview/confirm panel (hidden until metadata resolves)
	ui.preview = NewPreviewPanel(ui.localization)
	ui.preview.SetCallbacks(ui.onDownloadClick, ui.onCancelClick, ui.onAttachToggle)

	// Combine URL row, notification panel and preview at the top
	topCombined := container.NewVBox(topPanel, ui.notificationContainer, ui.preview.Container())

	// Create history list
	historyHeader := widget.NewLabel(ui.localization.GetText(KeyHistory))
	historyHeader.TextStyle = fyne.TextStyle{Bold: true}

	ui.historyList = widget.NewList(
		func() int {
			return len(ui.historyRecords)
		},
		func() fyne.CanvasObject { return ui.createHistoryItem() },
		func(id widget.ListItemID, obj fyne.CanvasObject) { ui.updateHistoryItem(id, obj) },
	)

	content := container.NewBorder(
		container.NewVBox(topCombined, historyHeader), // top
		nil,            // bottom
		nil,            // left
		nil,            // right
		ui.historyList, // center
	)

	ui.window.SetContent(content)

	log.Printf("UI setup completed successfully")
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	// Settings menu item
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	// History menu
	clearHistoryItem := fyne.NewMenuItem(ui.localization.GetText(KeyClearHistory), ui.onClearHistory)
	historyMenu := fyne.NewMenu(ui.localization.GetText(KeyHistory), clearHistoryItem)

	// Language submenu
	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))

	availableLanguages := ui.localization.GetAvailableLanguages()
	for code, name := range availableLanguages {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})

		// Mark current language
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}

		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	// Create main menu
	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		historyMenu,
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)

	ui.refreshUITexts()

	// Recreate menu to update checkmarks
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))

	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.infoBtn.SetText(ui.localization.GetText(KeyGetInfo))

	// Refresh history list to update button texts
	ui.historyList.Refresh()
}

// validateURL validates the entered URL
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	return nil
}

// onGetInfoClick resolves metadata for the entered URL
func (ui *RootUI) onGetInfoClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL), false)
		return
	}

	if err := ui.validateURL(urlText); err != nil {
		ui.showNotification(ui.localization.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return
	}

	log.Printf("Requesting track info for URL: %s", urlText)

	// The service blocks on the network; keep the UI goroutine free
	go func() {
		if err := ui.sessionSvc.FetchInfo(urlText); err != nil {
			if errors.Is(err, session.ErrRequestInFlight) {
				ui.showNotification(ui.localization.GetText(KeyRequestInFlight), true)
			}
			// Other failures arrive through the session update callback
			log.Printf("FetchInfo returned error: %v", err)
		}
	}()
}

// onDownloadClick commits the previewed download
func (ui *RootUI) onDownloadClick() {
	log.Printf("Download confirmed by user")

	go func() {
		if err := ui.sessionSvc.Confirm(); err != nil {
			if errors.Is(err, session.ErrRequestInFlight) {
				ui.showNotification(ui.localization.GetText(KeyRequestInFlight), true)
			}
			log.Printf("Confirm returned error: %v", err)
		}
	}()
}

// onCancelClick dismisses the preview and resets the session
func (ui *RootUI) onCancelClick() {
	log.Printf("Preview canceled by user")
	ui.sessionSvc.Cancel()
}

// onAttachToggle forwards the attach-metadata checkbox to the session
func (ui *RootUI) onAttachToggle(attach bool) {
	ui.sessionSvc.SetAttachMetadata(attach)
}

// onSessionUpdate handles session state changes from the service. It may be
// called from any goroutine.
func (ui *RootUI) onSessionUpdate(s model.DownloadSession) {
	log.Printf("Session update received: id=%s phase=%s status=%q error=%q",
		s.ID, s.Phase, s.StatusText, s.LastError)

	fyne.Do(func() {
		switch s.Phase {
		case model.PhaseIdle:
			ui.hideNotification()
			ui.preview.Hide()
		case model.PhaseResolving:
			ui.preview.Hide()
			ui.showNotificationLocked(ui.localization.GetText(KeyFetchingInfo), true)
		case model.PhaseConfirming:
			ui.hideNotificationLocked()
			ui.preview.ShowTrack(s.Track, s.AttachMetadata)
		case model.PhaseDownloading:
			ui.preview.SetBusy(true)
			ui.showNotificationLocked(ui.localization.GetText(KeyDownloading), true)
		case model.PhaseSucceeded:
			ui.preview.Hide()
			ui.urlEntry.SetText("")
			ui.showNotificationLocked(ui.localization.GetText(KeyDownloadSaved)+": "+s.OutputPath, false)
		case model.PhaseFailed:
			ui.preview.Hide()
			ui.showNotificationLocked(IconError+" "+s.LastError, false)
		}
	})
}

// onDownloadComplete records a saved download and notifies the user. Called
// once per successful download, after the file is on disk.
func (ui *RootUI) onDownloadComplete(s model.DownloadSession) {
	record := history.Record{
		URL:        s.URL,
		OutputPath: s.OutputPath,
		FileSize:   s.FileSize,
	}
	if s.Track != nil {
		record.Title = s.Track.Title
		record.Artist = s.Track.Artist
		record.Kind = s.Track.Kind
	}

	if _, err := ui.historyDB.Add(record); err != nil {
		log.Printf("Failed to record download in history: %v", err)
	}

	fyne.Do(func() {
		ui.reloadHistory()
	})

	ui.sendCompletionNotification(s)

	// Auto-reveal if enabled
	if ui.settings.GetAutoRevealOnComplete() && s.OutputPath != "" {
		log.Printf("Auto-revealing saved download: %s", s.OutputPath)
		ui.onRevealFile(s.OutputPath)
	}
}

// showNotification displays a message in the notification panel under the URL
// input. When spinning is true, a spinner indicates background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.showNotificationLocked(message, spinning)
	})
}

// showNotificationLocked is the fyne.Do-context body of showNotification
func (ui *RootUI) showNotificationLocked(message string, spinning bool) {
	ui.notificationLabel.SetText(message)
	if spinning {
		ui.notificationSpinner.Show()
	} else {
		ui.notificationSpinner.Hide()
	}
	ui.notificationContainer.Show()
	ui.notificationContainer.Refresh()
}

// hideNotification hides the notification panel
func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	ui.hideNotificationLocked()
}

// hideNotificationLocked is the fyne.Do-context body of hideNotification
func (ui *RootUI) hideNotificationLocked() {
	ui.notificationSpinner.Hide()
	ui.notificationContainer.Hide()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	dialog := NewSettingsDialog(ui.settings, ui.localization, ui.window, func() {
		// Settings changed: re-point the session and refresh texts
		ui.sessionSvc.SetDownloadDirectory(ui.settings.GetDownloadDirectory())
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()

		if ui.onSettingsChanged != nil {
			ui.onSettingsChanged()
		}
	})
	dialog.Show()
}

// createHistoryItem creates a new history row widget for the list
func (ui *RootUI) createHistoryItem() fyne.CanvasObject {
	row := NewHistoryRow(history.Record{}, ui.localization)
	row.SetCallbacks(
		ui.onRevealFile,
		ui.onOpenFile,
		ui.onCopyPath,
		ui.onRemoveRecord,
	)
	return row
}

// updateHistoryItem updates a history row with current data
func (ui *RootUI) updateHistoryItem(id widget.ListItemID, item fyne.CanvasObject) {
	if id >= len(ui.historyRecords) {
		return
	}

	if row, ok := item.(*HistoryRow); ok {
		// Re-set callbacks on every update; list items are recycled
		row.SetCallbacks(
			ui.onRevealFile,
			ui.onOpenFile,
			ui.onCopyPath,
			ui.onRemoveRecord,
		)
		row.UpdateRecord(ui.historyRecords[id])
	}
}

// reloadHistory re-reads the history store and refreshes the list
func (ui *RootUI) reloadHistory() {
	records, err := ui.historyDB.List()
	if err != nil {
		log.Printf("Failed to load download history: %v", err)
		return
	}

	ui.historyRecords = records
	ui.historyList.Refresh()
}

// onClearHistory wipes the download history after confirmation
func (ui *RootUI) onClearHistory() {
	if err := ui.historyDB.Clear(); err != nil {
		log.Printf("Failed to clear history: %v", err)
		return
	}

	ui.historyRecords = nil
	ui.historyList.Refresh()
	log.Printf("Download history cleared")
}

// onRemoveRecord removes one record from the history
func (ui *RootUI) onRemoveRecord(recordID string) {
	if err := ui.historyDB.Remove(recordID); err != nil {
		log.Printf("Failed to remove history record %s: %v", recordID, err)
		return
	}

	fyne.Do(func() {
		ui.reloadHistory()
	})
}

// onRevealFile handles revealing a file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	log.Printf("onRevealFile called for path: %s", filePath)

	if filePath == "" {
		widget.ShowPopUp(widget.NewLabel("Error: No file path provided"), ui.window.Canvas())
		return
	}

	err := platform.OpenFileInManager(filePath)
	if err != nil {
		log.Printf("Error revealing file %s: %v", filePath, err)
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error()), ui.window.Canvas())
		return
	}

	log.Printf("File revealed successfully: %s", filePath)
}

// onOpenFile handles opening a downloaded file with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	log.Printf("onOpenFile called for path: %s", filePath)

	if filePath == "" {
		widget.ShowPopUp(widget.NewLabel("Error: No file path provided"), ui.window.Canvas())
		return
	}

	err := platform.OpenFileWithDefaultApp(filePath)
	if err != nil {
		log.Printf("Error opening file %s: %v", filePath, err)
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error()), ui.window.Canvas())
		return
	}

	log.Printf("File opened successfully: %s", filePath)
}

// onCopyPath handles copying file path to clipboard
func (ui *RootUI) onCopyPath(filePath string) {
	if filePath == "" {
		widget.ShowPopUp(widget.NewLabel("Error: No file path provided"), ui.window.Canvas())
		return
	}

	clipboard := fyne.CurrentApp().Clipboard()
	clipboard.SetContent(filePath)
	widget.ShowPopUp(widget.NewLabel("Path copied to clipboard"), ui.window.Canvas())
}

// sendCompletionNotification sends a system notification for a saved download
func (ui *RootUI) sendCompletionNotification(s model.DownloadSession) {
	title := ui.localization.GetText(KeyDownloadSaved)
	message := s.DisplayTitle()

	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   title,
		Content: message,
	})

	// Show in-app toast notification with action buttons
	ui.showToastNotification(s)
}

// showToastNotification shows an in-app toast notification with action buttons
func (ui *RootUI) showToastNotification(s model.DownloadSession) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyDownloadSaved))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(s.DisplayTitle())
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	outputPath := s.OutputPath

	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() {
		if outputPath != "" {
			ui.onRevealFile(outputPath)
		}
	})
	revealBtn.Importance = widget.HighImportance

	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() {
		if outputPath != "" {
			ui.onOpenFile(outputPath)
		}
	})
	openBtn.Importance = widget.MediumImportance

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if toastPopup != nil {
			toastPopup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, titleLabel, closeBtn)
	actions := container.NewHBox(revealBtn, openBtn)
	content := container.NewVBox(
		header,
		messageLabel,
		actions,
	)

	fyne.Do(func() {
		toastPopup = widget.NewPopUp(content, ui.window.Canvas())

		// Position in top-right corner
		canvasSize := ui.window.Canvas().Size()
		toastSize := fyne.NewSize(ToastWidth, ToastHeight)
		toastPos := fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin)

		toastPopup.Resize(toastSize)
		toastPopup.Move(toastPos)
		toastPopup.Show()
	})

	// Auto-hide after configured time
	go func() {
		time.Sleep(ToastAutoHide)
		fyne.Do(func() {
			if toastPopup != nil {
				toastPopup.Hide()
			}
		})
	}()
}
