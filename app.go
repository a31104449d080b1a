package main

import (
	"context"
	"errors"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"moodify/internal/bootstrap"
	"moodify/internal/config"
	"moodify/internal/domain"
	"moodify/internal/i18n"
	"moodify/internal/usecase"
)

const (
	eventStatus    = "moodify:status"
	eventVibe      = "moodify:vibe"
	eventLike      = "moodify:like"
	eventFavorites = "moodify:favorites"
	eventVoice     = "moodify:voice"
	eventPartial   = "moodify:partial"
	eventMedia     = "moodify:media"
	eventError     = "moodify:error"
)

// App is the Wails application root. It exposes the backend bindings to the
// frontend and translates controller events into UI events with the status
// strings the panel shows.
type App struct {
	ctx context.Context
	loc *goi18n.Localizer

	services *bootstrap.Services
	vibes    *usecase.VibeController
	voice    *usecase.VoiceController
	cfg      config.Config
	bootErr  error
}

func NewApp() *App {
	return &App{loc: i18n.NewLocalizer("en")}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsMediaPlayer{app: a})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.vibes = services.Vibes
	a.voice = services.Voice
	a.cfg = services.Config
	a.loc = i18n.NewLocalizer(a.cfg.Locale)
}

func (a *App) shutdown(_ context.Context) {
	if a.voice != nil {
		_ = a.voice.Stop()
	}
	if a.services != nil {
		_ = a.services.Close()
	}
}

// SubmitPrompt requests a new vibe for a typed prompt.
func (a *App) SubmitPrompt(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	err := a.vibes.SubmitPrompt(a.ctx, text)
	if errors.Is(err, usecase.ErrGenerationInFlight) {
		return nil
	}
	return err
}

// ReplayFavorite re-activates a favorite selected in the panel.
func (a *App) ReplayFavorite(vibe domain.Vibe) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.vibes.ReplayFavorite(vibe)
}

// ToggleLike saves or removes the current vibe and returns the new state.
func (a *App) ToggleLike() (bool, error) {
	if err := a.requireReady(); err != nil {
		return false, err
	}
	liked, err := a.vibes.ToggleLike()
	if errors.Is(err, usecase.ErrNoCurrentVibe) {
		a.emitStatus(i18n.T(a.loc, "status_need_vibe"))
		return false, nil
	}
	return liked, err
}

// ListFavorites returns the persisted favorites in saved order.
func (a *App) ListFavorites() ([]domain.Vibe, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.vibes.ListFavorites()
}

// DeleteFavorite removes the favorite at index.
func (a *App) DeleteFavorite(index int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.vibes.DeleteFavorite(index)
}

// StartVoice begins a voice capture session.
func (a *App) StartVoice() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	err := a.voice.Start(a.ctx)
	if errors.Is(err, usecase.ErrAlreadyListening) {
		return nil
	}
	return err
}

// StopVoice cancels an active voice capture session.
func (a *App) StopVoice() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.voice.Stop()
}

// SetVolume applies the 0-100 slider level.
func (a *App) SetVolume(level int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.vibes.SetVolume(level)
	return nil
}

// MediaLoaded reports a finished video load from the frontend.
func (a *App) MediaLoaded(loadID string) {
	if a.vibes != nil {
		a.vibes.MediaLoaded(loadID)
	}
}

// ReportPlaybackBlocked reports a rejected audio autoplay from the frontend.
func (a *App) ReportPlaybackBlocked(loadID string) {
	if a.vibes != nil {
		a.vibes.PlaybackBlocked(loadID)
	}
}

// GetStatus returns the current session snapshot.
func (a *App) GetStatus() domain.Status {
	if a.vibes == nil {
		return domain.Status{VoiceState: domain.VoiceStateIdle, Volume: 100}
	}
	status := a.vibes.Status()
	status.VoiceState = a.voice.State()
	return status
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"serverUrl":  a.cfg.Server.BaseURL,
		"provider":   "Deepgram",
		"model":      a.cfg.Deepgram.Model,
		"language":   a.cfg.Deepgram.Language,
		"rulesFile":  a.cfg.Voice.RulesPath,
		"audioInput": a.cfg.Audio.InputDevice,
		"locale":     a.cfg.Locale,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.vibes == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// GenerationStarted announces an in-flight prompt.
func (a *App) GenerationStarted(prompt string) {
	a.emitStatus(i18n.T(a.loc, "status_analyzing"))
}

// GenerationFailed reports a failed generation request.
func (a *App) GenerationFailed(rejected bool, detail string) {
	id := "status_generation_error"
	if rejected {
		id = "status_generation_rejected"
	}
	a.emitStatus(i18n.T(a.loc, id))
	a.emit(eventError, map[string]string{
		"code":    string(domain.ErrorCodeGeneration),
		"message": i18n.T(a.loc, id),
		"detail":  detail,
	})
}

// VibeApplied pushes a newly active vibe to the UI.
func (a *App) VibeApplied(vibe domain.Vibe, liked bool, restored bool) {
	a.emit(eventVibe, map[string]interface{}{
		"vibe":     vibe,
		"liked":    liked,
		"restored": restored,
	})

	id := "status_found"
	if restored {
		id = "status_restored"
	}
	a.emitStatus(i18n.TD(a.loc, id, map[string]interface{}{"Keywords": vibe.KeywordSummary()}))
}

// LikeChanged reports the like flag for the current vibe.
func (a *App) LikeChanged(liked bool, vibe domain.Vibe) {
	a.emit(eventLike, map[string]interface{}{"liked": liked, "vibe": vibe})

	id := "status_removed"
	if liked {
		id = "status_saved"
	}
	a.emitStatus(i18n.T(a.loc, id))
}

// FavoritesChanged pushes the refreshed favorites list to the panel.
func (a *App) FavoritesChanged(favorites []domain.Vibe) {
	a.emit(eventFavorites, favorites)
}

// VoiceStateChanged reports voice machine transitions.
func (a *App) VoiceStateChanged(state domain.VoiceState, cause domain.VoiceErrorCode) {
	a.emit(eventVoice, map[string]string{
		"state":   string(state),
		"cause":   string(cause),
		"message": a.voiceMessage(state, cause),
	})
}

// PartialTranscript pushes live interim transcript text.
func (a *App) PartialTranscript(text string) {
	a.emit(eventPartial, map[string]string{"text": text})
}

// FinalTranscript announces the heard phrase before it is submitted.
func (a *App) FinalTranscript(text string) {
	a.emitStatus(i18n.TD(a.loc, "status_heard", map[string]interface{}{"Text": text}))
}

// PlaybackBlocked tells the UI the audio needs a user gesture to start.
func (a *App) PlaybackBlocked() {
	a.emit(eventMedia, map[string]string{
		"command": "playbackBlocked",
		"message": i18n.T(a.loc, "status_click_play_suffix"),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.emit(eventError, map[string]string{
		"code":    string(code),
		"message": a.errorMessage(code, detail),
		"detail":  detail,
	})
}

func (a *App) voiceMessage(state domain.VoiceState, cause domain.VoiceErrorCode) string {
	switch state {
	case domain.VoiceStateListening:
		return i18n.T(a.loc, "status_listening")
	case domain.VoiceStateError:
		switch cause {
		case domain.VoiceErrorNoSpeech:
			return i18n.T(a.loc, "voice_no_speech")
		case domain.VoiceErrorNoMicrophone:
			return i18n.T(a.loc, "voice_no_microphone")
		case domain.VoiceErrorPermissionDenied:
			return i18n.T(a.loc, "voice_permission_denied")
		default:
			return i18n.TD(a.loc, "voice_error", map[string]interface{}{"Detail": string(cause)})
		}
	case domain.VoiceStateIdle:
		if cause == domain.VoiceErrorNoSpeech {
			return i18n.T(a.loc, "voice_no_speech")
		}
		return ""
	default:
		return ""
	}
}

func (a *App) errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeVoice:
		return i18n.TD(a.loc, "voice_error", map[string]interface{}{"Detail": detail})
	case domain.ErrorCodeGeneration:
		return i18n.T(a.loc, "status_generation_error")
	case domain.ErrorCodeFavorites:
		return "Favorites storage error"
	case domain.ErrorCodePlayback:
		return "Playback error"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

func (a *App) emitStatus(message string) {
	if message == "" {
		return
	}
	a.emit(eventStatus, map[string]string{"message": message})
}

func (a *App) emit(name string, payload interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

// wailsMediaPlayer drives the frontend media elements through events; the
// frontend answers with MediaLoaded and PlaybackBlocked bindings.
type wailsMediaPlayer struct {
	app *App
}

func (p *wailsMediaPlayer) LoadVideo(loadID string, url string) {
	p.app.emit(eventMedia, map[string]interface{}{
		"command": "loadVideo",
		"loadId":  loadID,
		"url":     url,
	})
}

func (p *wailsMediaPlayer) LoadAndPlayAudio(loadID string, url string, volume float64) {
	p.app.emit(eventMedia, map[string]interface{}{
		"command": "playAudio",
		"loadId":  loadID,
		"url":     url,
		"volume":  volume,
	})
}

func (p *wailsMediaPlayer) RevealVideo(loadID string) {
	p.app.emit(eventMedia, map[string]interface{}{
		"command": "revealVideo",
		"loadId":  loadID,
	})
}

func (p *wailsMediaPlayer) SetVolume(volume float64) {
	p.app.emit(eventMedia, map[string]interface{}{
		"command": "setVolume",
		"volume":  volume,
	})
}
