package domain

import (
	"errors"
	"strings"
)

// ErrGenerationRejected marks a generation request the server answered but
// declined, as opposed to a transport or decoding failure.
var ErrGenerationRejected = errors.New("generation rejected by server")

// ClassifyVoiceFailure maps a capture or streaming failure onto the voice
// error taxonomy by inspecting the underlying diagnostics.
func ClassifyVoiceFailure(err error) VoiceErrorCode {
	if err == nil {
		return VoiceErrorNone
	}
	detail := strings.ToLower(err.Error())
	switch {
	case strings.Contains(detail, "no speech"),
		strings.Contains(detail, "speech timeout"):
		return VoiceErrorNoSpeech
	case strings.Contains(detail, "permission denied"),
		strings.Contains(detail, "not allowed"),
		strings.Contains(detail, "access denied"):
		return VoiceErrorPermissionDenied
	case strings.Contains(detail, "no such device"),
		strings.Contains(detail, "device not found"),
		strings.Contains(detail, "cannot open audio device"):
		return VoiceErrorNoMicrophone
	default:
		return VoiceErrorOther
	}
}
