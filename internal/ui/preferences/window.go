package preferences

import (
	"fmt"

	"clickguardian/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the settings UI.
type Window struct {
	window       fyne.Window
	config       model.Config
	onSave       func(model.Config)
	clickLimit   *widget.Entry
	unlockMillis *widget.Entry
	gracePeriod  *widget.Entry
	blockClicks  *widget.Check
	showTray     *widget.Check
	autostart    *widget.Check
}

// New creates a settings window.
func New(app fyne.App, config model.Config, onSave func(model.Config)) *Window {
	window := app.NewWindow("ClickGuardian Settings")

	clickLimit := widget.NewEntry()
	clickLimit.Validator = rangeValidator(model.MinClickLimit, model.MaxClickLimit)
	unlockMillis := widget.NewEntry()
	unlockMillis.Validator = rangeValidator(int(model.MinUnlockDuration.Milliseconds()), int(model.MaxUnlockDuration.Milliseconds()))
	gracePeriod := widget.NewEntry()
	gracePeriod.Validator = rangeValidator(0, model.MaxClickLimit)

	blockClicks := widget.NewCheck("Block clicks when limit reached", nil)
	showTray := widget.NewCheck("Show tray icon", nil)
	autostart := widget.NewCheck("Start with the system", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Limits", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Click limit"), clickLimit, widget.NewLabel("clicks / month")),
		container.NewHBox(widget.NewLabel("Unlock time"), unlockMillis, widget.NewLabel("ms")),
		container.NewHBox(widget.NewLabel("Grace period"), gracePeriod, widget.NewLabel("clicks")),
		blockClicks,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		showTray,
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 320))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:       window,
		onSave:       onSave,
		clickLimit:   clickLimit,
		unlockMillis: unlockMillis,
		gracePeriod:  gracePeriod,
		blockClicks:  blockClicks,
		showTray:     showTray,
		autostart:    autostart,
	}
	prefs.setForm(config)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.setForm(prefs.config)
		window.Hide()
	}

	return prefs
}

// Show displays the settings window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateConfig replaces the window values, e.g. after an external edit of the state file.
func (prefs *Window) UpdateConfig(config model.Config) {
	prefs.setForm(config)
}

func (prefs *Window) setForm(config model.Config) {
	prefs.config = config
	form := FormFromConfig(config)
	prefs.clickLimit.SetText(form.ClickLimit)
	prefs.unlockMillis.SetText(form.UnlockMillis)
	prefs.gracePeriod.SetText(form.GracePeriod)
	prefs.blockClicks.SetChecked(form.BlockClicks)
	prefs.showTray.SetChecked(form.ShowTrayIcon)
	prefs.autostart.SetChecked(form.RegisterForReboot)
}

func (prefs *Window) form() Form {
	return Form{
		ClickLimit:        prefs.clickLimit.Text,
		UnlockMillis:      prefs.unlockMillis.Text,
		GracePeriod:       prefs.gracePeriod.Text,
		BlockClicks:       prefs.blockClicks.Checked,
		ShowTrayIcon:      prefs.showTray.Checked,
		RegisterForReboot: prefs.autostart.Checked,
	}
}

func (prefs *Window) handleSave() {
	config := prefs.form().Apply(prefs.config)
	prefs.setForm(config)
	if prefs.onSave != nil {
		prefs.onSave(config)
	}
	prefs.window.Hide()
}

func rangeValidator(low, high int) fyne.StringValidator {
	return func(value string) error {
		parsed, ok := parseInt(value)
		if !ok {
			return fmt.Errorf("enter a whole number")
		}
		if parsed < low || parsed > high {
			return fmt.Errorf("must be between %d and %d", low, high)
		}
		return nil
	}
}
