package ports

import (
	"context"
	"io"

	"moodify/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live microphone capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// VoiceConfig describes provider-agnostic streaming settings.
type VoiceConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// VoiceSession is an active speech-to-text streaming session.
type VoiceSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// VoiceProvider starts streaming transcription sessions.
type VoiceProvider interface {
	StartStreaming(ctx context.Context, cfg VoiceConfig) (VoiceSession, error)
}

// TranscriptRewriter fixes commonly mis-heard words in final transcripts.
type TranscriptRewriter interface {
	Apply(text string) (string, error)
}

// GenerationClient requests an audio/video pairing for a mood prompt.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}

// FavoritesStore is the persistent, ordered collection of saved vibes.
// Every mutating call commits durably before returning.
type FavoritesStore interface {
	List() ([]domain.Vibe, error)
	Add(vibe domain.Vibe) error
	RemoveAt(index int) (domain.Vibe, error)
	RemoveByPrompt(prompt string) (bool, error)
	Contains(prompt string) (bool, error)
}

// MediaPlayer issues playback commands to the frontend media elements.
// Each load carries an identity tag so completions arriving after a newer
// vibe has taken over can be discarded.
type MediaPlayer interface {
	LoadVideo(loadID string, url string)
	LoadAndPlayAudio(loadID string, url string, volume float64)
	RevealVideo(loadID string)
	SetVolume(volume float64)
}

// EventSink emits backend state changes to the UI.
type EventSink interface {
	GenerationStarted(prompt string)
	GenerationFailed(rejected bool, detail string)
	VibeApplied(vibe domain.Vibe, liked bool, restored bool)
	LikeChanged(liked bool, vibe domain.Vibe)
	FavoritesChanged(favorites []domain.Vibe)
	VoiceStateChanged(state domain.VoiceState, cause domain.VoiceErrorCode)
	PartialTranscript(text string)
	FinalTranscript(text string)
	PlaybackBlocked()
	SessionError(code domain.ErrorCode, detail string)
}
