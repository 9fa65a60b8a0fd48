package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDesktop struct {
	menu  *fyne.Menu
	icon  fyne.Resource
	menus int
}

func (desktop *fakeDesktop) SetSystemTrayMenu(menu *fyne.Menu) {
	desktop.menu = menu
	desktop.menus++
}

func (desktop *fakeDesktop) SetSystemTrayIcon(icon fyne.Resource) {
	desktop.icon = icon
}

func (desktop *fakeDesktop) SetSystemTrayWindow(fyne.Window) {}

func labels(menu *fyne.Menu) []string {
	var out []string
	for _, item := range menu.Items {
		if item.IsSeparator {
			continue
		}
		out = append(out, item.Label)
	}
	return out
}

func TestMenuWithExit(t *testing.T) {
	app := &fakeDesktop{}
	exited := false
	manager := New(app, true, Callbacks{OnExit: func() { exited = true }})
	manager.SetStatus(2, 5)

	require.NotNil(t, app.menu)
	assert.Equal(t, []string{"Clicks: 2/5", "Settings", "Exit"}, labels(app.menu))
	assert.NotNil(t, app.icon)

	last := app.menu.Items[len(app.menu.Items)-1]
	last.Action()
	assert.True(t, exited)
}

func TestMenuWithoutExit(t *testing.T) {
	app := &fakeDesktop{}
	manager := New(app, false, Callbacks{})
	assert.Equal(t, []string{"Clicks: -", "Settings"}, labels(app.menu))

	manager.SetShowExit(true)
	assert.Equal(t, []string{"Clicks: -", "Settings", "Exit"}, labels(app.menu))
}

func TestSetBlockedSwapsIcon(t *testing.T) {
	app := &fakeDesktop{}
	manager := New(app, true, Callbacks{})
	open := app.icon

	manager.SetBlocked(true)
	assert.NotEqual(t, open.Name(), app.icon.Name())
	manager.SetBlocked(false)
	assert.Equal(t, open.Name(), app.icon.Name())
}
