package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"rsiassist/internal/core/model"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnTakeRest    func()
	OnMode        func(model.OperationMode)
	OnPreferences func()
	OnAbout       func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	modeItems   map[model.OperationMode]*fyne.MenuItem
	menu        *fyne.Menu
	mode        model.OperationMode
	statusLabel string
}

// New creates a tray manager with the provided callbacks. app may be nil when the driver has
// no system tray.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		modeItems: make(map[model.OperationMode]*fyne.MenuItem, len(model.Modes)),
	}

	manager.statusItem = fyne.NewMenuItem("Status: connecting...", nil)
	manager.statusItem.Disabled = true

	modeMenu := fyne.NewMenu("")
	for _, mode := range model.Modes {
		item := fyne.NewMenuItem(string(mode), func() {
			if manager.callbacks.OnMode != nil {
				manager.callbacks.OnMode(mode)
			}
		})
		manager.modeItems[mode] = item
		modeMenu.Items = append(modeMenu.Items, item)
	}
	modeItem := fyne.NewMenuItem("Mode", nil)
	modeItem.ChildMenu = modeMenu

	manager.menu = fyne.NewMenu("RSI Assistant",
		manager.statusItem,
		fyne.NewMenuItem("Show RSI Assistant", func() { invoke(manager.callbacks.OnShow) }),
		fyne.NewMenuItem("Take Rest Break Now", func() { invoke(manager.callbacks.OnTakeRest) }),
		modeItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() { invoke(manager.callbacks.OnPreferences) }),
		fyne.NewMenuItem("About", func() { invoke(manager.callbacks.OnAbout) }),
		fyne.NewMenuItem("Quit", func() { invoke(manager.callbacks.OnQuit) }),
	)
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetMode checks the active mode in the submenu.
func (manager *Manager) SetMode(mode model.OperationMode) {
	if mode == manager.mode {
		return
	}
	manager.mode = mode
	for itemMode, item := range manager.modeItems {
		item.Checked = itemMode == mode
	}
	manager.refreshMenu()
}

// Menu returns the tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

// StatusText summarises a timer status for the tray label.
func StatusText(status model.TimerStatus) string {
	switch {
	case status.Mode == model.ModeSuspended:
		return "suspended"
	case status.MicroIsOverdue || status.RestIsOverdue:
		return fmt.Sprintf("%s due", status.OverdueBreak().Title())
	default:
		return fmt.Sprintf("next microbreak in %s", model.FormatClock(status.MicroTarget-status.MicroActive))
	}
}

func invoke(handler func()) {
	if handler != nil {
		handler()
	}
}

func (manager *Manager) refreshMenu() {
	manager.menu.Refresh()
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu)
	}
}
