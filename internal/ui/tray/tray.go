package tray

import (
	"fmt"

	"clickguardian/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnSettings func()
	OnExit     func()
}

// Manager handles system tray state. Methods must run on the UI thread.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	callbacks  Callbacks
	showExit   bool
	blocked    bool
}

// New installs the tray icon and menu.
func New(app desktop.App, showExit bool, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		showExit:  showExit,
	}
	manager.statusItem = fyne.NewMenuItem("Clicks: -", nil)
	manager.statusItem.Disabled = true

	app.SetSystemTrayIcon(resources.MustIcon(resources.IconTray))
	manager.refreshMenu()
	return manager
}

// SetStatus updates the click counter label.
func (manager *Manager) SetStatus(count, limit int) {
	manager.statusItem.Label = StatusLabel(count, limit)
	manager.refreshMenu()
}

// SetBlocked swaps the tray icon while clicks are limited.
func (manager *Manager) SetBlocked(blocked bool) {
	if manager.blocked == blocked {
		return
	}
	manager.blocked = blocked
	icon := resources.IconTray
	if blocked {
		icon = resources.IconTrayBlocked
	}
	manager.app.SetSystemTrayIcon(resources.MustIcon(icon))
}

// SetShowExit toggles the Exit entry.
func (manager *Manager) SetShowExit(show bool) {
	if manager.showExit == show {
		return
	}
	manager.showExit = show
	manager.refreshMenu()
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	items := []*fyne.MenuItem{
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings", func() {
			if manager.callbacks.OnSettings != nil {
				manager.callbacks.OnSettings()
			}
		}),
	}
	if manager.showExit {
		items = append(items, fyne.NewMenuItem("Exit", func() {
			if manager.callbacks.OnExit != nil {
				manager.callbacks.OnExit()
			}
		}))
	}
	return fyne.NewMenu("ClickGuardian", items...)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

// StatusLabel formats the counter for the tray.
func StatusLabel(count, limit int) string {
	return fmt.Sprintf("Clicks: %d/%d", count, limit)
}
