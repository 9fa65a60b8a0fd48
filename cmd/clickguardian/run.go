package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clickguardian/internal/core/gate"
	"clickguardian/internal/core/model"
	"clickguardian/internal/platform"
	"clickguardian/internal/storage"
	"clickguardian/internal/ui/limitdialog"
	"clickguardian/internal/ui/preferences"
	"clickguardian/internal/ui/tray"
	"clickguardian/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// session owns everything that must be released on the way out, in order.
type session struct {
	logger     *zap.Logger
	guard      *platform.InstanceGuard
	hook       platform.Hook
	gate       *gate.Gate
	writer     *storage.Writer
	watcher    *storage.Watcher
	journal    *storage.Journal
	followDone chan struct{}
	closed     bool
}

func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true

	// The hook goes first so that no click can be swallowed once the gate stops answering.
	if s.hook != nil {
		if err := s.hook.Stop(); err != nil {
			s.logger.Error("stop mouse hook", zap.Error(err))
		}
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.gate != nil {
		s.gate.Close()
	}
	if s.followDone != nil {
		<-s.followDone
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("close journal", zap.Error(err))
		}
	}
	if s.writer != nil {
		s.writer.Close()
	}
	if err := s.guard.Release(); err != nil {
		s.logger.Warn("release instance lock", zap.Error(err))
	}
	s.logger.Info("shutdown complete")
}

func runApp(parent context.Context, opts *options) error {
	logger := opts.logger
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := platform.ChdirToExecutable(); err != nil {
		logger.Warn("working directory unchanged", zap.Error(err))
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		return err
	}
	s := &session{logger: logger, guard: guard}
	defer s.close()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconTray))

	store := storage.NewStore(opts.statePath, logger.Named("store"))
	document := store.Load()
	s.writer = storage.NewWriter(store, logger.Named("writer"), persistenceAlert(fyneApp))
	s.gate = gate.New(document.Config, document.Counter, s.writer, gate.Options{Logger: logger.Named("gate")})
	config := s.gate.Config()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("state", store.Path()),
		zap.Int("count", document.Counter.Count),
		zap.Int("limit", config.ClickLimit))

	s.startJournal(ctx, opts.historyPath)

	autostart := platform.NewAutostart(appName)
	syncAutostart(logger, autostart, config.RegisterForReboot)

	dialog := limitdialog.New(fyneApp, s.gate, logger.Named("dialog"))
	s.gate.SetNotifier(dialog)

	var trayManager *tray.Manager
	prefsWindow := preferences.New(fyneApp, config, func(updated model.Config) {
		s.gate.ApplyConfig(updated)
		syncAutostart(logger, autostart, updated.RegisterForReboot)
		if trayManager != nil {
			trayManager.SetShowExit(updated.ShowExitButton)
		}
		if updated.ShowTrayIcon != config.ShowTrayIcon {
			logger.Info("tray icon visibility changes on next launch", zap.Bool("show", updated.ShowTrayIcon))
		}
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok && config.ShowTrayIcon {
		trayWindow := fyneApp.NewWindow(appName)
		trayWindow.SetContent(widget.NewLabel("ClickGuardian is running in the system tray."))
		trayWindow.SetCloseIntercept(trayWindow.Hide)
		desktopApp.SetSystemTrayWindow(trayWindow)

		trayManager = tray.New(desktopApp, config.ShowExitButton, tray.Callbacks{
			OnSettings: prefsWindow.Show,
			OnExit: func() {
				if s.gate.Config().ShowExitButton {
					fyneApp.Quit()
				}
			},
		})
		trayManager.SetStatus(document.Counter.Count, config.ClickLimit)
	} else if config.ShowTrayIcon {
		logger.Warn("system tray unsupported on this platform")
	}

	go followGate(s.gate.Subscribe(64), s.gate, dialog, trayManager)

	s.watcher, err = storage.NewWatcher(store, logger.Named("watcher"), func(external storage.Document) {
		// A read racing our own save sees the previous write, which must not roll back
		// a config applied in the meantime.
		if external.Config == s.gate.Config() || s.writer.IsOwnWrite(external) {
			return
		}
		logger.Info("state file edited externally, applying config")
		s.gate.ApplyConfig(external.Config)
		fyne.Do(func() {
			prefsWindow.UpdateConfig(external.Config)
			if trayManager != nil {
				trayManager.SetShowExit(external.Config.ShowExitButton)
			}
		})
	})
	if err != nil {
		logger.Warn("live reload disabled", zap.Error(err))
	} else if err := s.watcher.Start(ctx); err != nil {
		logger.Warn("live reload disabled", zap.Error(err))
	}

	s.hook = platform.NewHook(logger.Named("hook"))
	if err := s.hook.Start(s.gate.HandleClick); err != nil {
		return fmt.Errorf("start interception: %w", err)
	}

	runDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested")
			fyne.Do(fyneApp.Quit)
		case <-runDone:
		}
	}()

	fyneApp.Run()
	close(runDone)
	return nil
}

func (s *session) startJournal(ctx context.Context, path string) {
	journal, err := storage.OpenJournal(path, s.logger.Named("journal"))
	if err != nil {
		s.logger.Warn("episode history disabled", zap.Error(err))
		return
	}
	s.journal = journal
	s.followDone = make(chan struct{})
	events := s.gate.Subscribe(256)
	go func() {
		defer close(s.followDone)
		// Detached from cancellation so the journal drains until the gate closes the channel.
		journal.Follow(context.WithoutCancel(ctx), events)
	}()
}

// followGate mirrors gate events into the UI until the gate closes the channel.
func followGate(events <-chan gate.Event, source *gate.Gate, dialog *limitdialog.Dialog, trayManager *tray.Manager) {
	for event := range events {
		switch event.Type {
		case gate.EventCountdown:
			dialog.HandleEvent(event)
		case gate.EventCount, gate.EventStateChange:
			if event.Type == gate.EventStateChange && event.State == gate.StateOpen &&
				event.Resolution == gate.ResolutionExpired && source.Config().RedirectOnUnlock {
				fyne.Do(dialog.OpenPlans)
			}
			if trayManager == nil {
				continue
			}
			blocked := event.State == gate.StateBlocked
			count, limit := event.Count, event.Limit
			fyne.Do(func() {
				trayManager.SetStatus(count, limit)
				trayManager.SetBlocked(blocked)
			})
		}
	}
}

type notificationSender interface {
	SendNotification(notification *fyne.Notification)
}

// persistenceAlert tells the user once per failure streak that settings are not being saved.
func persistenceAlert(sender notificationSender) func(error) {
	return func(err error) {
		notification := fyne.NewNotification(
			"ClickGuardian could not save its state",
			fmt.Sprintf("Counting continues in memory. %v", err),
		)
		fyne.Do(func() {
			sender.SendNotification(notification)
		})
	}
}

func syncAutostart(logger *zap.Logger, registration platform.Autostart, enabled bool) {
	if err := platform.SyncAutostart(registration, enabled); err != nil {
		logger.Warn("autostart registration", zap.Bool("enabled", enabled), zap.Error(err))
	}
}
