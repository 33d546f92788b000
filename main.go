package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"

	"github.com/scget/sc-downloader/internal/api"
	"github.com/scget/sc-downloader/internal/config"
	"github.com/scget/sc-downloader/internal/history"
	"github.com/scget/sc-downloader/internal/platform"
	"github.com/scget/sc-downloader/internal/session"
	"github.com/scget/sc-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.scget.sc-downloader"
	AppName = "SC Downloader"

	WindowWidth  = 800
	WindowHeight = 600

	HealthProbeTimeout = 5 * time.Second
)

func main() {
	// Optional .env for local development; the variables it sets (backend
	// URL override) are read through os.Getenv later.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	fmt.Printf("%s v%s starting...\n", AppName, version)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)

	// Apply compact theme
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	settings := config.NewSettings(myApp)
	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		log.Printf("Failed to ensure downloads dir: %v", err)
	}

	client := api.NewClient(settings.GetBackendURL())
	sessionSvc := session.NewService(client, downloadsDir, settings.GetAttachMetadata())

	historyPath := filepath.Join(myApp.Storage().RootURI().Path(), "history.db")
	historyDB, err := history.Open(historyPath)
	if err != nil {
		log.Fatalf("Failed to open history store at %s: %v", historyPath, err)
	}
	defer historyDB.Close()

	// Create and setup UI
	rootUI := ui.NewRootUI(myWindow, myApp, sessionSvc, historyDB)

	// Re-point the backend client when settings change
	rootUI.SetSettingsChangedCallback(func() {
		sessionSvc.SetBackend(api.NewClient(settings.GetBackendURL()))
		log.Printf("Backend client re-pointed to %s", settings.GetBackendURL())
	})

	// Probe the backend on startup so a misconfigured URL is visible at once
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), HealthProbeTimeout)
		defer cancel()

		if _, err := client.Health(ctx); err != nil {
			log.Printf("Backend health probe failed: %v", err)
			rootUI.ShowStartupNotice("Backend unreachable at " + client.BaseURL())
		}
	}()

	// Show and run
	myWindow.ShowAndRun()
}
