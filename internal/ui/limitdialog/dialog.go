// Package limitdialog renders the modal prompt raised when the click limit is reached.
package limitdialog

import (
	"fmt"
	"image/color"
	"math"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"clickguardian/internal/core/gate"
	"clickguardian/internal/logging"
	"clickguardian/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// PlansURL is opened after a deferred unlock when redirectOnUnlock is set.
const PlansURL = "https://clickguardian.app/plans"

const (
	remindLaterLabel = "Remind Me Later"
	disclaimer       = "This is a joke application - use responsibly!"
)

var (
	backgroundColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	headerColor     = color.NRGBA{R: 45, G: 45, B: 45, A: 255}
	cardColor       = color.NRGBA{R: 50, G: 50, B: 50, A: 255}
	mutedColor      = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	textColor       = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
)

// Resolver receives the user's answer to the dialog.
type Resolver interface {
	Resolve(resolution gate.Resolution)
}

// Dialog implements gate.Notifier on top of a fyne window.
// Open, Dismiss and HandleEvent may be called from any goroutine.
type Dialog struct {
	app      fyne.App
	window   fyne.Window
	resolver Resolver
	logger   *zap.Logger

	message      *canvas.Text
	remindButton *widget.Button

	mu             sync.Mutex
	unlockDuration time.Duration

	visible atomic.Bool
	handle  atomic.Uintptr
}

// New builds the dialog window. It stays hidden until Open.
func New(app fyne.App, resolver Resolver, logger *zap.Logger) *Dialog {
	logger = logging.OrNop(logger)
	dialog := &Dialog{
		app:      app,
		resolver: resolver,
		logger:   logger,
	}

	window := app.NewWindow("ClickGuardian")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetFixedSize(true)
	window.SetCloseIntercept(dialog.handleClose)
	dialog.window = window

	dialog.message = canvas.NewText(limitMessage(0), mutedColor)
	dialog.message.TextSize = 13

	dialog.remindButton = widget.NewButton(remindLaterLabel, dialog.handleRemindLater)

	window.SetContent(dialog.build())
	window.Resize(fyne.NewSize(880, 400))
	return dialog
}

// Open shows the dialog for a new blocking episode.
func (dialog *Dialog) Open(limit int, unlockDuration time.Duration) {
	dialog.mu.Lock()
	dialog.unlockDuration = unlockDuration
	dialog.mu.Unlock()
	dialog.visible.Store(true)

	fyne.Do(func() {
		dialog.message.Text = limitMessage(limit)
		dialog.message.Refresh()
		dialog.remindButton.SetText(remindLaterLabel)
		dialog.remindButton.Enable()

		dialog.window.Show()
		dialog.window.CenterOnScreen()
		dialog.window.RequestFocus()
		if handle := nativeHandle(dialog.window); handle != 0 {
			dialog.handle.Store(handle)
		}
	})
	dialog.logger.Debug("limit dialog opened", zap.Int("limit", limit), zap.Duration("unlock", unlockDuration))
}

// Bounds returns the screen rectangle of the visible dialog. It never waits on the UI thread.
func (dialog *Dialog) Bounds() (gate.Rect, bool) {
	if !dialog.visible.Load() {
		return gate.Rect{}, false
	}
	return windowRect(dialog.handle.Load())
}

// Dismiss hides the dialog without producing a resolution.
func (dialog *Dialog) Dismiss() {
	if !dialog.visible.Swap(false) {
		return
	}
	fyne.Do(func() {
		dialog.window.Hide()
	})
	dialog.logger.Debug("limit dialog dismissed")
}

// HandleEvent updates the remind button from countdown events.
func (dialog *Dialog) HandleEvent(event gate.Event) {
	if event.Type != gate.EventCountdown || !dialog.visible.Load() {
		return
	}
	fyne.Do(func() {
		dialog.remindButton.SetText(countdownLabel(event.Remaining))
	})
}

// OpenPlans opens the plans page in the default browser.
func (dialog *Dialog) OpenPlans() {
	target, err := url.Parse(PlansURL)
	if err != nil {
		dialog.logger.Error("parse plans url", zap.Error(err))
		return
	}
	if err := dialog.app.OpenURL(target); err != nil {
		dialog.logger.Warn("open plans url", zap.Error(err))
	}
}

func (dialog *Dialog) handleRemindLater() {
	dialog.mu.Lock()
	delay := dialog.unlockDuration
	dialog.mu.Unlock()

	dialog.remindButton.SetText(countdownLabel(delay))
	dialog.remindButton.Disable()
	dialog.resolver.Resolve(gate.RemindLater(delay))
}

func (dialog *Dialog) handleUpgrade(plan Plan) {
	dialog.resolver.Resolve(gate.Acknowledge())
	dialog.app.SendNotification(fyne.NewNotification(
		"Subscription Successful",
		fmt.Sprintf("Congratulations! You have subscribed to our %s.", plan.Name),
	))
}

func (dialog *Dialog) handleClose() {
	dialog.visible.Store(false)
	dialog.window.Hide()
	dialog.resolver.Resolve(gate.Closed())
}

func (dialog *Dialog) build() fyne.CanvasObject {
	upgradeRequired := canvas.NewText("Upgrade Required:", textColor)
	upgradeRequired.TextStyle = fyne.TextStyle{Bold: true}
	upgradeRequired.TextSize = 18
	limitReached := canvas.NewText("Monthly Click Limit Reached", mutedColor)
	limitReached.TextStyle = fyne.TextStyle{Bold: true}
	limitReached.TextSize = 18
	header := container.NewStack(
		canvas.NewRectangle(headerColor),
		container.NewPadded(container.NewHBox(upgradeRequired, limitReached)),
	)

	var cards []fyne.CanvasObject
	for _, plan := range DefaultPlans() {
		cards = append(cards, dialog.planCard(plan))
	}
	mouse := canvas.NewImageFromResource(resources.MustIcon(resources.IconMouse))
	mouse.FillMode = canvas.ImageFillContain
	mouse.SetMinSize(fyne.NewSize(200, 200))
	offers := container.NewHBox(append(cards, container.NewCenter(mouse))...)

	note := canvas.NewText(disclaimer, mutedColor)
	note.TextStyle = fyne.TextStyle{Italic: true}
	note.TextSize = 11
	note.Alignment = fyne.TextAlignCenter

	body := container.NewVBox(
		container.NewPadded(dialog.message),
		container.NewPadded(offers),
		container.NewHBox(layout.NewSpacer(), dialog.remindButton, layout.NewSpacer()),
		note,
	)
	return container.NewStack(
		canvas.NewRectangle(backgroundColor),
		container.NewBorder(header, nil, nil, nil, body),
	)
}

func (dialog *Dialog) planCard(plan Plan) fyne.CanvasObject {
	name := canvas.NewText(plan.Name, textColor)
	name.TextStyle = fyne.TextStyle{Bold: true}
	name.TextSize = 15
	title := container.NewHBox(name)
	if plan.Crown {
		crown := canvas.NewImageFromResource(resources.MustIcon(resources.IconCrown))
		crown.FillMode = canvas.ImageFillContain
		crown.SetMinSize(fyne.NewSize(20, 20))
		title.Add(crown)
	}

	price := canvas.NewText("$"+plan.Price, textColor)
	price.TextStyle = fyne.TextStyle{Bold: true}
	price.TextSize = 24
	period := canvas.NewText("/"+plan.Period, mutedColor)

	rows := []fyne.CanvasObject{title, container.NewHBox(price, period)}
	for _, feature := range plan.Features {
		line := canvas.NewText("• "+feature, mutedColor)
		line.TextSize = 12
		rows = append(rows, line)
	}

	upgrade := widget.NewButton("Upgrade to "+plan.shortName(), func() {
		dialog.handleUpgrade(plan)
	})
	upgrade.Importance = widget.HighImportance
	buttonBackground := canvas.NewRectangle(plan.ButtonColor)
	rows = append(rows, layout.NewSpacer(), container.NewStack(buttonBackground, upgrade))

	card := container.NewVBox(rows...)
	background := canvas.NewRectangle(cardColor)
	background.CornerRadius = 6
	background.SetMinSize(fyne.NewSize(280, 200))
	return container.NewStack(background, container.NewPadded(card))
}

func limitMessage(limit int) string {
	return fmt.Sprintf("You have reached the maximum number of clicks allowed (%d). To continue using your mouse, please upgrade to a plan.", limit)
}

func countdownLabel(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(math.Ceil(remaining.Seconds()))
	return fmt.Sprintf("Unlocking in %ds...", seconds)
}
