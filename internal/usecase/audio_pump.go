package usecase

import (
	"errors"
	"fmt"
	"io"

	"moodify/internal/domain"
	"moodify/internal/ports"
)

// pumpMicAudio forwards microphone chunks into the streaming session until
// the mic closes or a send fails.
func pumpMicAudio(
	mic ports.AudioSession,
	stream ports.VoiceSession,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := mic.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				events.SessionError(domain.ErrorCodeVoice, fmt.Sprintf("failed to stream audio: %v", sendErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.SessionError(domain.ErrorCodeVoice, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
