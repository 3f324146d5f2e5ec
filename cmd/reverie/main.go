package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/renderix/reverie/internal/app"
	"github.com/renderix/reverie/internal/blob"
	"github.com/renderix/reverie/internal/server"
	"github.com/renderix/reverie/internal/store"
	"github.com/renderix/reverie/internal/tray"
)

func main() {
	fmt.Println("Reverie - Gesture & Voice Memory Scene")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".reverie")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "reverie.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	blobs, err := blob.Open(filepath.Join(dataDir, "images.db"))
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}
	defer blobs.Close()

	a := app.New(app.Config{
		Store: st,
		Blobs: blobs,
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipelines: %v", err)
	}
	defer a.Stop()
	a.SetEnabled(true)

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       a,
	})
	defer srv.Close()

	addr := ":8080"
	fmt.Printf("Starting server on %s\n", addr)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.OnToggleDetect(a.SetEnabled)
	// No speech engine ships with this build; recording needs an externally
	// attached recorder, so the toggle stays disabled until one exists.
	t.SetRecordAvailable(false)
	t.OnToggleRecord(func(recording bool) {
		if recording {
			if err := a.StartRecording(); err != nil {
				log.Printf("Failed to start recording: %v", err)
				t.SetRecording(false)
			}
		} else {
			a.StopRecording()
		}
	})
	t.OnOpenScene(func() {
		openBrowser("http://localhost" + addr)
	})
	t.OnQuit(a.Stop)

	// Blocks until Quit is chosen from the tray menu.
	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.reverie/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".reverie", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens url in the platform default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
