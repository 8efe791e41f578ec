package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"clipdeck/internal/bootstrap"
	"clipdeck/internal/config"
	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/playback"
	"clipdeck/internal/usecase"
	"clipdeck/internal/view"
)

const (
	eventSession  = "clipdeck:session"
	eventUpload   = "clipdeck:upload"
	eventArchive  = "clipdeck:archive"
	eventPlayback = "clipdeck:playback"
	eventError    = "clipdeck:error"
)

// App is the Wails application root.
type App struct {
	ctx     context.Context
	cfgFile string
	emit    func(ctx context.Context, name string, data ...interface{})

	controller *usecase.SessionController
	archive    *usecase.ArchiveService
	deck       *playback.Deck
	cfg        config.Config
	bootErr    error

	mu           sync.Mutex
	selectedLink string
}

func NewApp(cfgFile string) *App {
	return &App{cfgFile: cfgFile, emit: runtime.EventsEmit}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(bootstrap.Options{ConfigFile: a.cfgFile}, a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.archive = services.Archive
	a.deck = services.Deck
	a.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReady)

	go func() {
		// Failures are reported through SessionError.
		_, _ = a.archive.Refresh(ctx)
	}()
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		_ = a.controller.Abort()
	}
	if a.deck != nil {
		a.deck.Stop()
	}
}

// StartRecording opens the microphone. It is a no-op while a clip is
// being recorded or uploaded.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Start(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopRecording stops the active recording and uploads it.
func (a *App) StopRecording() (domain.StopResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.StopResult{}, err
	}
	result, err := a.controller.Stop(a.ctx)
	if errors.Is(err, usecase.ErrNoActiveSession) {
		return domain.StopResult{}, nil
	}
	return result, err
}

// AbortRecording discards an in-progress recording.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.controller.Abort(); err != nil && !errors.Is(err, usecase.ErrNoActiveSession) {
		return err
	}
	return nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateError, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	return a.controller.Status()
}

// RefreshArchive refetches the archive and returns the select options.
func (a *App) RefreshArchive() ([]view.Option, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	entries, err := a.archive.Refresh(a.ctx)
	return view.ArchiveOptions(entries, a.selected()), err
}

// GetArchiveOptions returns the last fetched archive as select options.
func (a *App) GetArchiveOptions() []view.Option {
	if a.archive == nil {
		return view.ArchiveOptions(nil, "")
	}
	return view.ArchiveOptions(a.archive.Entries(), a.selected())
}

// GetArchiveGrid returns the archive as grid tiles.
func (a *App) GetArchiveGrid() []view.Tile {
	if a.deck == nil {
		return []view.Tile{}
	}
	return view.ArchiveGrid(a.deck.Snapshot())
}

// SelectArchive plays link in the shared player. The empty placeholder
// value stops playback.
func (a *App) SelectArchive(link string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.mu.Lock()
	a.selectedLink = link
	a.mu.Unlock()
	return a.deck.SelectLink(a.ctx, link)
}

// ToggleEntry plays grid tile i, or stops it when it is already playing.
func (a *App) ToggleEntry(i int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.deck.Toggle(a.ctx, i)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"apiBaseUrl":       a.cfg.API.BaseURL,
		"uploadPath":       a.cfg.API.UploadPath,
		"archivePath":      a.cfg.API.ArchivePath,
		"maxDuration":      a.cfg.Session.MaxDuration.String(),
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"player":           a.cfg.Player.Command,
		"configFile":       a.cfg.File,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedLink
}

func (a *App) send(name string, payload interface{}) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, name, payload)
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	a.send(eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": view.ReasonMessage(reason),
	})
}

// UploadCompleted emits the status text of a successful upload.
func (a *App) UploadCompleted(message string) {
	a.send(eventUpload, map[string]string{"message": message})
}

// ArchiveUpdated emits the refreshed archive in both list and grid form.
func (a *App) ArchiveUpdated(entries []domain.ArchiveEntry) {
	link := a.selected()
	found := false
	for _, e := range entries {
		if e.Link == link {
			found = true
			break
		}
	}
	if !found {
		link = ""
		a.mu.Lock()
		a.selectedLink = ""
		a.mu.Unlock()
	}
	a.send(eventArchive, map[string]interface{}{
		"options": view.ArchiveOptions(entries, link),
	})
}

// PlaybackChanged emits the grid tiles with their progress.
func (a *App) PlaybackChanged(snapshot domain.PlaybackSnapshot) {
	a.send(eventPlayback, map[string]interface{}{
		"active": snapshot.Active,
		"tiles":  view.ArchiveGrid(snapshot),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	logging.L("app").Debug("session error", "code", code, logging.KeyError, detail)
	a.send(eventError, map[string]string{
		"code":    string(code),
		"message": view.ErrorMessage(code, detail),
		"detail":  detail,
	})
}
