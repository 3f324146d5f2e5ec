// Package tray provides the system tray interface for Reverie.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application: a detection toggle, a
// recording toggle, and the last classified gesture.
type Tray struct {
	onToggleDetect  func(enabled bool)
	onToggleRecord  func(recording bool)
	onOpenScene     func()
	onQuit          func()
	detecting       bool
	recording       bool
	recordAvailable bool
	mu              sync.RWMutex

	// Menu items stored for later updates
	menuDetect      *systray.MenuItem
	menuRecord      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance with detection enabled by default.
func New() *Tray {
	return &Tray{
		detecting:       true,
		recordAvailable: true,
	}
}

// SetRecordAvailable enables or disables the recording toggle. Call it with
// false before Run when no recording controller is configured; the menu
// item then shows as unavailable instead of silently failing on click.
func (t *Tray) SetRecordAvailable(available bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordAvailable = available
}

// OnToggleDetect sets the callback for the detection toggle.
func (t *Tray) OnToggleDetect(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggleDetect = fn
}

// OnToggleRecord sets the callback for the recording toggle.
func (t *Tray) OnToggleRecord(fn func(recording bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggleRecord = fn
}

// OnOpenScene sets the callback for the "Open Scene" menu item.
func (t *Tray) OnOpenScene(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenScene = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Reverie")
	systray.SetTooltip("Reverie Memory Scene")

	t.menuDetect = systray.AddMenuItem("● Detection on", "Toggle gesture detection")
	t.menuRecord = systray.AddMenuItem("○ Start recording", "Toggle voice recording")
	if !t.recordAvailable {
		t.menuRecord.SetTitle("Recording unavailable")
		t.menuRecord.Disable()
	}
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Gesture: none", "Last classified gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuScene := systray.AddMenuItem("Open Scene...", "Open the scene in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Reverie")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuDetect.ClickedCh:
				t.handleToggleDetect()
			case <-t.menuRecord.ClickedCh:
				t.handleToggleRecord()
			case <-menuScene.ClickedCh:
				t.handleOpenScene()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

func (t *Tray) handleToggleDetect() {
	t.mu.Lock()
	t.detecting = !t.detecting
	detecting := t.detecting

	if t.menuDetect != nil {
		if detecting {
			t.menuDetect.SetTitle("● Detection on")
		} else {
			t.menuDetect.SetTitle("○ Detection off")
		}
	}

	callback := t.onToggleDetect
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(detecting)
	}
}

func (t *Tray) handleToggleRecord() {
	t.mu.Lock()
	if !t.recordAvailable {
		t.mu.Unlock()
		return
	}
	t.recording = !t.recording
	recording := t.recording

	if t.menuRecord != nil {
		if recording {
			t.menuRecord.SetTitle("● Stop recording")
		} else {
			t.menuRecord.SetTitle("○ Start recording")
		}
	}

	callback := t.onToggleRecord
	t.mu.Unlock()

	if callback != nil {
		callback(recording)
	}
}

func (t *Tray) handleOpenScene() {
	t.mu.RLock()
	callback := t.onOpenScene
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(label string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		if label == "" {
			t.menuLastGesture.SetTitle("Gesture: none")
		} else {
			t.menuLastGesture.SetTitle("Gesture: " + label)
		}
	}
}

// SetRecording reflects an externally driven recording state change, for
// example a stop forced by a device error.
func (t *Tray) SetRecording(recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recording = recording
	if t.menuRecord == nil {
		return
	}
	if recording {
		t.menuRecord.SetTitle("● Stop recording")
	} else {
		t.menuRecord.SetTitle("○ Start recording")
	}
}

// IsDetecting returns the current detection toggle state.
func (t *Tray) IsDetecting() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.detecting
}

// IsRecording returns the current recording toggle state.
func (t *Tray) IsRecording() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recording
}
