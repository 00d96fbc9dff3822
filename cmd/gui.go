package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"rsiassist/internal/config"
	"rsiassist/internal/core/lifecycle"
	"rsiassist/internal/core/model"
	"rsiassist/internal/core/settings"
	"rsiassist/internal/core/statusstream"
	"rsiassist/internal/platform"
	"rsiassist/internal/storage"
	"rsiassist/internal/ui/dashboard"
	"rsiassist/internal/ui/exercise"
	"rsiassist/internal/ui/overlay"
	"rsiassist/internal/ui/preferences"
	"rsiassist/internal/ui/tray"
	"rsiassist/resources"
)

func runGUI(cfg *config.Config, logger *log.Logger) error {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		logger.Printf("single instance: %v", err)
		if activateErr := platform.ActivateRunningInstance(appName); activateErr != nil {
			return fmt.Errorf("activate running instance: %w", activateErr)
		}
		return nil
	}
	defer func() {
		_ = guard.Release()
	}()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	store := storage.NewSettingsStore(cfg.Store.Dir)
	localPrefs, err := store.LoadPreferences()
	if err != nil {
		logger.Printf("preferences: %v", err)
		localPrefs = storage.DefaultPreferences()
	}

	stream := statusstream.New(client, statusstream.Options{Logger: logger})
	reconciler := settings.New(store, client, settings.Options{Logger: logger})
	controller := lifecycle.New(client, lifecycle.Config{CallTimeout: callTimeout(cfg), Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	withTimeout := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, callTimeout(cfg))
	}

	fyneApp := app.NewWithID("io.rsiassist.app")
	fyneApp.SetIcon(resources.MustIcon(resources.AppIcon))

	overlayWindow := overlay.New(fyneApp, overlayConfig(localPrefs))
	overlayWindow.SetOnSkip(func() {
		go controller.Skip()
	})
	rotator := exercise.New(exercise.DefaultConfig(), exercise.DefaultPrompts(), func(prompt exercise.Prompt) {
		fyne.Do(func() {
			overlayWindow.SetExercise(prompt)
		})
	})

	var dashboardWindow *dashboard.Window
	triggerBreak := func(breakType model.BreakType) {
		go func() {
			callCtx, callCancel := withTimeout()
			defer callCancel()
			if err := client.TriggerBreak(callCtx, breakType); err != nil {
				logger.Printf("trigger %s break: %v", breakType, err)
				fyne.Do(func() {
					dashboardWindow.SetNotice(fmt.Sprintf("Could not start a %s: %v", breakType.Title(), err))
				})
			}
		}()
	}
	dashboardWindow = dashboard.New(fyneApp, dashboard.Callbacks{
		OnTakeMicro: func() { triggerBreak(model.BreakMicro) },
		OnTakeRest:  func() { triggerBreak(model.BreakRest) },
	})

	launcher := newLauncher(logger)
	prefsWindow := preferences.New(fyneApp, model.DefaultBreakConfig(), localPrefs, preferences.Handlers{
		OnSave: func(breakConfig model.BreakConfig, updated storage.Preferences) error {
			var errs []error
			if err := store.SavePreferences(updated); err != nil {
				errs = append(errs, err)
			}
			fyne.Do(func() {
				overlayWindow.UpdateConfig(overlayConfig(updated))
			})
			if launcher != nil {
				if err := launcher.Apply(updated.LaunchAtLogin); err != nil {
					errs = append(errs, err)
				}
			}
			callCtx, callCancel := withTimeout()
			defer callCancel()
			if err := reconciler.Save(callCtx, breakConfig); err != nil {
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		},
		OnMode: func(mode model.OperationMode) error {
			callCtx, callCancel := withTimeout()
			defer callCancel()
			return reconciler.SetMode(callCtx, mode)
		},
	})

	var trayApp desktop.App
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayApp = desktopApp
		desktopApp.SetSystemTrayIcon(resources.TrayIcon(model.ModeNormal))
	} else {
		logger.Printf("system tray unsupported on this platform")
	}
	trayManager := tray.New(trayApp, tray.Callbacks{
		OnShow:     dashboardWindow.Show,
		OnTakeRest: func() { triggerBreak(model.BreakRest) },
		OnMode: func(mode model.OperationMode) {
			go func() {
				callCtx, callCancel := withTimeout()
				defer callCancel()
				if err := reconciler.SetMode(callCtx, mode); err != nil {
					logger.Printf("set mode: %v", err)
				}
			}()
		},
		OnPreferences: prefsWindow.Show,
		OnAbout: func() {
			dashboardWindow.ShowAbout()
		},
		OnQuit: fyneApp.Quit,
	})

	guard.OnActivate(func() {
		fyne.Do(dashboardWindow.Show)
	})

	statuses := stream.Subscribe(1)
	configs := reconciler.Subscribe(1)
	events := controller.Subscribe(16)

	go func() {
		var mode model.OperationMode
		for status := range statuses {
			controller.UpdateStatus(status)
			modeChanged := status.Mode != mode
			mode = status.Mode
			fyne.Do(func() {
				dashboardWindow.Update(status)
				trayManager.SetStatus(tray.StatusText(status))
				trayManager.SetMode(status.Mode)
				if modeChanged && trayApp != nil {
					trayApp.SetSystemTrayIcon(resources.TrayIcon(status.Mode))
				}
			})
		}
	}()
	go func() {
		for breakConfig := range configs {
			controller.UpdateConfig(breakConfig)
			fyne.Do(func() {
				prefsWindow.UpdateConfig(breakConfig)
			})
		}
	}()
	go func() {
		for event := range events {
			handleLifecycleEvent(ctx, logger, event, overlayWindow, rotator)
		}
	}()

	stream.Activate(ctx)
	go func() {
		callCtx, callCancel := withTimeout()
		defer callCancel()
		result, err := reconciler.Reconcile(callCtx)
		if err != nil {
			logger.Printf("settings: %v", err)
		}
		logger.Printf("settings: active config from %s", result.Source)
	}()

	dashboardWindow.Show()
	fyneApp.Run()

	rotator.Stop()
	stream.Close()
	reconciler.Close()
	controller.Close()
	return nil
}

func handleLifecycleEvent(ctx context.Context, logger *log.Logger, event lifecycle.Event, overlayWindow *overlay.Window, rotator *exercise.Rotator) {
	switch event.Type {
	case lifecycle.EventArmed:
		fyne.Do(func() {
			overlayWindow.Show(event.View)
		})
		rotator.Start(ctx)
	case lifecycle.EventProgress:
		fyne.Do(func() {
			overlayWindow.Update(event.View)
		})
	case lifecycle.EventDismiss, lifecycle.EventCleared:
		rotator.Stop()
		fyne.Do(overlayWindow.Hide)
	case lifecycle.EventError:
		logger.Printf("break session: %s", event.Message)
	}
}

func overlayConfig(prefs storage.Preferences) overlay.Config {
	return overlay.Config{
		Opacity:    overlay.OpacityToAlpha(prefs.OverlayOpacity),
		Fullscreen: prefs.Fullscreen,
	}
}

func newLauncher(logger *log.Logger) *platform.LaunchAtLogin {
	execPath, err := os.Executable()
	if err != nil {
		logger.Printf("launch at login: %v", err)
		return nil
	}
	launcher, err := platform.NewLaunchAtLogin(appName, execPath)
	if err != nil {
		logger.Printf("launch at login: %v", err)
		return nil
	}
	return launcher
}
