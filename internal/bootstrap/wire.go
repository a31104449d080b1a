package bootstrap

import (
	"context"
	"log"

	"moodify/internal/audio"
	"moodify/internal/config"
	"moodify/internal/favorites"
	"moodify/internal/generation"
	"moodify/internal/ports"
	"moodify/internal/providers/deepgram"
	"moodify/internal/rules"
	"moodify/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Vibes  *usecase.VibeController
	Voice  *usecase.VoiceController
	Config config.Config

	store   *favorites.Store
	watcher *rules.Watcher
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, media ports.MediaPlayer) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := favorites.Open(cfg.Favorites.DBPath)
	if err != nil {
		return nil, err
	}

	rulesEngine, err := rules.NewEngine(cfg.Voice.RulesPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	watcher, err := rules.Watch(rulesEngine, func(watchErr error) {
		log.Printf("voice rules reload failed: %v", watchErr)
	})
	if err != nil {
		// Live reload is a convenience; the engine still works with the
		// rules loaded at startup.
		log.Printf("voice rules watcher unavailable: %v", err)
	}

	vibes := usecase.NewVibeController(
		generation.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout),
		store,
		media,
		eventSink,
	)

	voice := usecase.NewVoiceController(
		audio.NewMicCapture(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		}),
		rulesEngine,
		eventSink,
		func(text string) { _ = vibes.SubmitPrompt(context.Background(), text) },
		usecase.VoiceSettings{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Stream: ports.VoiceConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize:      cfg.Voice.ChunkSize,
			SubmitDelay:    cfg.Voice.SubmitDelay,
			StreamingGrace: cfg.Voice.StreamingGrace,
		},
	)

	return &Services{
		Vibes:   vibes,
		Voice:   voice,
		Config:  cfg,
		store:   store,
		watcher: watcher,
	}, nil
}

// Close releases the long-lived resources behind the graph.
func (s *Services) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
