package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyGetInfo           = "get_info"
	KeyDownload          = "download"
	KeyCancel            = "cancel"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyHistory           = "history"
	KeyClearHistory      = "clear_history"
	KeyLanguage          = "language"
	KeyBackendURL        = "backend_url"
	KeyDownloadDirectory = "download_directory"
	KeyAttachMetadata    = "attach_metadata"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyBrowse            = "browse"
	KeyEnterURL          = "enter_url"
	KeyFetchingInfo      = "fetching_info"
	KeyDownloading       = "downloading"
	KeyDownloadSaved     = "download_saved"
	KeySettingsSaved     = "settings_saved"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyInvalidURL        = "invalid_url"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyRequestInFlight   = "request_in_flight"
	KeyOpen              = "open"
	KeyReveal            = "reveal"
	KeyCopyPath          = "copy_path"
	KeyRemove            = "remove"
	KeyTracks            = "tracks"
	KeyPlays             = "plays"
	KeyLikes             = "likes"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "SC Downloader",
		KeyGetInfo:           "Get Info",
		KeyDownload:          "Download",
		KeyCancel:            "Cancel",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyHistory:           "History",
		KeyClearHistory:      "Clear History",
		KeyLanguage:          "Language",
		KeyBackendURL:        "Backend URL",
		KeyDownloadDirectory: "Download Directory",
		KeyAttachMetadata:    "Attach metadata (ID3 tags and cover art)",
		KeyAutoReveal:        "Reveal file when download completes",
		KeySave:              "Save",
		KeyBrowse:            "Browse",
		KeyEnterURL:          "Enter SoundCloud URL (https://soundcloud.com/...)",
		KeyFetchingInfo:      "Fetching track info...",
		KeyDownloading:       "Downloading...",
		KeyDownloadSaved:     "Download saved",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyErrorOpeningFile:  "Error opening file",
		KeyInvalidURL:        "Invalid URL",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyRequestInFlight:   "Another request is still running",
		KeyOpen:              "Open",
		KeyReveal:            "Reveal",
		KeyCopyPath:          "Copy Path",
		KeyRemove:            "Remove",
		KeyTracks:            "tracks",
		KeyPlays:             "plays",
		KeyLikes:             "likes",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "SC Загрузчик",
		KeyGetInfo:           "Инфо",
		KeyDownload:          "Скачать",
		KeyCancel:            "Отмена",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyHistory:           "История",
		KeyClearHistory:      "Очистить историю",
		KeyLanguage:          "Язык",
		KeyBackendURL:        "Адрес сервера",
		KeyDownloadDirectory: "Папка загрузки",
		KeyAttachMetadata:    "Добавлять метаданные (теги ID3 и обложку)",
		KeyAutoReveal:        "Показывать файл после загрузки",
		KeySave:              "Сохранить",
		KeyBrowse:            "Обзор",
		KeyEnterURL:          "Введите URL SoundCloud (https://soundcloud.com/...)",
		KeyFetchingInfo:      "Получение информации о треке...",
		KeyDownloading:       "Загрузка...",
		KeyDownloadSaved:     "Загрузка сохранена",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyInvalidURL:        "Неверный URL",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyRequestInFlight:   "Предыдущий запрос ещё выполняется",
		KeyOpen:              "Открыть",
		KeyReveal:            "Показать",
		KeyCopyPath:          "Копировать путь",
		KeyRemove:            "Удалить",
		KeyTracks:            "треков",
		KeyPlays:             "прослушиваний",
		KeyLikes:             "лайков",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "SC Downloader",
		KeyGetInfo:           "Obter Info",
		KeyDownload:          "Baixar",
		KeyCancel:            "Cancelar",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyHistory:           "Histórico",
		KeyClearHistory:      "Limpar Histórico",
		KeyLanguage:          "Idioma",
		KeyBackendURL:        "URL do Servidor",
		KeyDownloadDirectory: "Diretório de Download",
		KeyAttachMetadata:    "Anexar metadados (tags ID3 e capa)",
		KeyAutoReveal:        "Mostrar arquivo ao concluir download",
		KeySave:              "Salvar",
		KeyBrowse:            "Navegar",
		KeyEnterURL:          "Digite URL do SoundCloud (https://soundcloud.com/...)",
		KeyFetchingInfo:      "Buscando informações da faixa...",
		KeyDownloading:       "Baixando...",
		KeyDownloadSaved:     "Download salvo",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyInvalidURL:        "URL inválida",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyRequestInFlight:   "Outra solicitação ainda está em andamento",
		KeyOpen:              "Abrir",
		KeyReveal:            "Revelar",
		KeyCopyPath:          "Copiar Caminho",
		KeyRemove:            "Remover",
		KeyTracks:            "faixas",
		KeyPlays:             "reproduções",
		KeyLikes:             "curtidas",
	}
}
