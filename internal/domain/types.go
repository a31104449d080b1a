package domain

import "strings"

// Vibe is one generated or saved mood result. Two vibes are the same
// favorite iff their Prompt strings are equal.
type Vibe struct {
	Prompt   string   `json:"prompt"`
	AudioURL string   `json:"audio_url,omitempty"`
	VideoURL string   `json:"video_url,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// KeywordSummary renders the keyword list for status text, falling back to
// a generic label when the vibe was saved without keywords.
func (v Vibe) KeywordSummary() string {
	if len(v.Keywords) == 0 {
		return "Saved Vibe"
	}
	return strings.Join(v.Keywords, ", ")
}

// VoiceState models the voice capture lifecycle.
type VoiceState string

const (
	VoiceStateIdle       VoiceState = "idle"
	VoiceStateListening  VoiceState = "listening"
	VoiceStateProcessing VoiceState = "processing"
	VoiceStateError      VoiceState = "error"
)

// VoiceErrorCode classifies why a capture attempt failed.
type VoiceErrorCode string

const (
	VoiceErrorNone             VoiceErrorCode = ""
	VoiceErrorNoSpeech         VoiceErrorCode = "no_speech"
	VoiceErrorNoMicrophone     VoiceErrorCode = "no_microphone"
	VoiceErrorPermissionDenied VoiceErrorCode = "permission_denied"
	VoiceErrorOther            VoiceErrorCode = "other"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeVoice      ErrorCode = "voice"
	ErrorCodeGeneration ErrorCode = "generation"
	ErrorCodePlayback   ErrorCode = "playback"
	ErrorCodeFavorites  ErrorCode = "favorites"
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a
// provider. ResultIndex is non-decreasing within one capture session.
type TranscriptEvent struct {
	Kind        TranscriptKind `json:"kind"`
	Text        string         `json:"text"`
	ResultIndex int            `json:"resultIndex"`
}

// GenerationResult is the decoded payload of a successful generation call.
type GenerationResult struct {
	Keywords []string
	Mood     string
	AudioURL string
	VideoURL string
}

// Status summarizes the current session for the UI.
type Status struct {
	CurrentVibe *Vibe      `json:"currentVibe,omitempty"`
	IsLiked     bool       `json:"isLiked"`
	Generating  bool       `json:"generating"`
	VoiceState  VoiceState `json:"voiceState"`
	Volume      int        `json:"volume"`
}
