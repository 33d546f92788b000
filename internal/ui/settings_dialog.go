package ui

import (
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/scget/sc-downloader/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	backendURLEntry  *widget.Entry
	downloadDirEntry *widget.Entry
	attachCheck      *widget.Check
	autoRevealCheck  *widget.Check
	languageSelect   *widget.Select
}

// NewSettingsDialog creates a new settings dialog. onSaved is invoked after a
// confirmed save so the caller can re-wire the backend client.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	// Backend address
	sd.backendURLEntry = widget.NewEntry()
	sd.backendURLEntry.SetPlaceHolder(config.DefaultBackendURL)

	// Download directory selection
	sd.downloadDirEntry = widget.NewEntry()
	sd.downloadDirEntry.SetPlaceHolder("Download directory path")

	browseDirBtn := widget.NewButton(sd.localization.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	// Download behavior toggles
	sd.attachCheck = widget.NewCheck(sd.localization.GetText(KeyAttachMetadata), nil)
	sd.autoRevealCheck = widget.NewCheck(sd.localization.GetText(KeyAutoReveal), nil)

	// Language selection
	languageLabels := sd.settings.GetLanguageOptions()
	languageOptions := make([]string, 0, len(languageLabels))
	for code := range languageLabels {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)
	sd.languageSelect.PlaceHolder = "Select language"

	form := container.NewVBox(
		widget.NewLabel(sd.localization.GetText(KeyBackendURL)+":"),
		sd.backendURLEntry,

		widget.NewLabel(sd.localization.GetText(KeyDownloadDirectory)+":"),
		downloadDirRow,

		widget.NewSeparator(),
		sd.attachCheck,
		sd.autoRevealCheck,

		widget.NewSeparator(),
		widget.NewLabel(sd.localization.GetText(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		sd.localization.GetText(KeySettings),
		sd.localization.GetText(KeySave),
		sd.localization.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.backendURLEntry.SetText(sd.settings.GetBackendURL())
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.attachCheck.SetChecked(sd.settings.GetAttachMetadata())
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if backendURL := strings.TrimSpace(sd.backendURLEntry.Text); backendURL != "" {
		sd.settings.SetBackendURL(strings.TrimRight(backendURL, "/"))
	}

	if downloadDir := strings.TrimSpace(sd.downloadDirEntry.Text); downloadDir != "" {
		sd.settings.SetDownloadDirectory(downloadDir)
	}

	sd.settings.SetAttachMetadata(sd.attachCheck.Checked)
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)

	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}

	dialog.ShowInformation(
		sd.localization.GetText(KeySettings),
		sd.localization.GetText(KeySettingsSaved),
		sd.window,
	)
}
