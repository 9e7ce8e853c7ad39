// Package tray provides a macOS system tray interface for the hovertype input system.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/hovertype/internal/multitap"
)

// tailLength is the number of trailing characters shown in the menu.
const tailLength = 24

// Tray represents the macOS system tray application. It is also a
// multitap.Handler so the menu can mirror what is being typed.
type Tray struct {
	onToggle   func(enabled bool)
	onClear    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	text       []rune
	preview    string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuPreview *systray.MenuItem
	menuText    *systray.MenuItem
}

var _ multitap.Handler = (*Tray)(nil)

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback function to be called when the clear menu item is clicked.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
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

// Quit stops the system tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hovertype")
	systray.SetTooltip("Hovertype hover keyboard")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hover input")
	systray.AddSeparator()

	t.menuPreview = systray.AddMenuItem(previewTitle(t.preview), "Character being selected")
	t.menuPreview.Disable()
	t.menuText = systray.AddMenuItem(textTitle(t.text), "Recently typed text")
	t.menuText.Disable()
	t.mu.Unlock()

	menuClear := systray.AddMenuItem("Clear Text", "Clear the typed text")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hovertype")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.handleClear()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	enabled := !t.enabled
	callback := t.onToggle
	t.mu.Unlock()

	t.SetEnabled(enabled)

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleClear handles the clear menu item click.
func (t *Tray) handleClear() {
	t.mu.Lock()
	t.text = nil
	t.preview = ""
	t.refresh()
	callback := t.onClear
	t.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled updates the enabled state shown in the menu without
// invoking the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tray) Preview(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.preview = displayChar(r)
	t.refresh()
}

func (t *Tray) Commit(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = append(t.text, r)
	if len(t.text) > tailLength {
		t.text = t.text[len(t.text)-tailLength:]
	}
	t.preview = ""
	t.refresh()
}

func (t *Tray) Delete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.text) > 0 {
		t.text = t.text[:len(t.text)-1]
	}
	t.preview = ""
	t.refresh()
}

// Titles returns the current preview and text menu titles.
func (t *Tray) Titles() (preview, text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return previewTitle(t.preview), textTitle(t.text)
}

// refresh pushes the titles to the menu. Callers must hold t.mu.
func (t *Tray) refresh() {
	if t.menuPreview != nil {
		t.menuPreview.SetTitle(previewTitle(t.preview))
	}
	if t.menuText != nil {
		t.menuText.SetTitle(textTitle(t.text))
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func previewTitle(preview string) string {
	if preview == "" {
		return "Selecting: none"
	}
	return "Selecting: " + preview
}

func textTitle(text []rune) string {
	if len(text) == 0 {
		return "Text: (empty)"
	}
	s := make([]rune, 0, len(text))
	for _, r := range text {
		s = append(s, []rune(displayChar(r))...)
	}
	return "Text: " + string(s)
}

// displayChar renders characters that would be invisible in a menu title.
func displayChar(r rune) string {
	switch r {
	case multitap.Backspace:
		return "⌫"
	case ' ':
		return "␣"
	case '\n':
		return "⏎"
	}
	return string(r)
}
