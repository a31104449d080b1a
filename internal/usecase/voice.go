package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"

	"moodify/internal/domain"
	"moodify/internal/ports"
)

var ErrAlreadyListening = errors.New("voice capture is already listening")

// VoiceSettings controls one capture session.
type VoiceSettings struct {
	Audio          ports.AudioConfig
	Stream         ports.VoiceConfig
	ChunkSize      int
	SubmitDelay    time.Duration
	StreamingGrace time.Duration
}

// VoiceController wraps streaming speech-to-text in a small state machine:
// Idle -> Listening -> Processing -> Idle, with Error reachable from
// Listening. A capture yields at most one final transcript, which is run
// through the vocabulary rewriter and auto-submitted after a short delay so
// the UI can show the heard text first.
type VoiceController struct {
	capture  ports.AudioCapture
	provider ports.VoiceProvider
	rewriter ports.TranscriptRewriter
	events   ports.EventSink
	submit   func(text string)
	cfg      VoiceSettings

	debounced func(func())

	mu       sync.Mutex
	state    domain.VoiceState
	starting bool
	active   *activeCapture
}

type activeCapture struct {
	cancel     func()
	mic        ports.AudioSession
	stream     ports.VoiceSession
	collector  *transcriptCollector
	eventsDone chan struct{}
	audioDone  chan struct{}
}

func NewVoiceController(
	capture ports.AudioCapture,
	provider ports.VoiceProvider,
	rewriter ports.TranscriptRewriter,
	events ports.EventSink,
	submit func(text string),
	cfg VoiceSettings,
) *VoiceController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.SubmitDelay <= 0 {
		cfg.SubmitDelay = 500 * time.Millisecond
	}
	if cfg.StreamingGrace <= 0 {
		cfg.StreamingGrace = time.Second
	}
	return &VoiceController{
		capture:   capture,
		provider:  provider,
		rewriter:  rewriter,
		events:    events,
		submit:    submit,
		cfg:       cfg,
		debounced: debounce.New(cfg.SubmitDelay),
		state:     domain.VoiceStateIdle,
	}
}

// Start begins a capture session. Starting while already listening, or
// while another Start is still dialing the provider, fails with
// ErrAlreadyListening; capture failures move the machine to Error with a
// typed cause and never panic past the caller.
func (c *VoiceController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.starting || c.state == domain.VoiceStateListening {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.starting = true
	c.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(ctx)

	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Stream)
	if err != nil {
		cancel()
		c.fail(err)
		return err
	}

	mic, err := c.capture.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		c.fail(err)
		return err
	}

	active := &activeCapture{
		cancel:     cancel,
		mic:        mic,
		stream:     stream,
		collector:  newTranscriptCollector(),
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
	}

	c.mu.Lock()
	c.active = active
	c.state = domain.VoiceStateListening
	c.starting = false
	c.mu.Unlock()
	c.events.VoiceStateChanged(domain.VoiceStateListening, domain.VoiceErrorNone)

	go c.consumeTranscripts(active)
	go pumpMicAudio(active.mic, active.stream, c.cfg.ChunkSize, c.events, active.audioDone)
	go c.supervise(active)
	return nil
}

// Stop ends an active capture. Stopping while idle is a no-op. The stream
// gets a short grace window to deliver a final for speech that was already
// sent; a final arriving in that window is handled like any other.
func (c *VoiceController) Stop() error {
	c.mu.Lock()
	active := c.active
	c.active = nil
	c.mu.Unlock()
	if active == nil {
		return nil
	}

	_ = active.mic.Stop()
	_ = active.stream.CloseSend()
	select {
	case <-active.eventsDone:
	case <-time.After(c.cfg.StreamingGrace):
	}

	active.cancel()
	_ = active.stream.Close()
	<-active.eventsDone
	<-active.audioDone

	c.mu.Lock()
	interrupted := c.state == domain.VoiceStateListening
	c.mu.Unlock()
	if interrupted {
		c.setState(domain.VoiceStateIdle, domain.VoiceErrorNone)
	}
	return nil
}

// State returns the current machine state.
func (c *VoiceController) State() domain.VoiceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *VoiceController) consumeTranscripts(active *activeCapture) {
	defer close(active.eventsDone)

	for event := range active.stream.Events() {
		text, ok := active.collector.Observe(event)
		if !ok {
			continue
		}
		if event.Kind == domain.TranscriptKindPartial {
			c.events.PartialTranscript(text)
			continue
		}
		c.finalize(active, text)
	}
}

// finalize handles the single final transcript of a capture: announce it,
// apply vocabulary fixes, schedule the auto-submit, and return to Idle.
func (c *VoiceController) finalize(active *activeCapture, text string) {
	c.setState(domain.VoiceStateProcessing, domain.VoiceErrorNone)
	c.events.FinalTranscript(text)

	fixed, err := c.rewriter.Apply(text)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeVoice, err.Error())
		fixed = text
	}
	fixed = strings.TrimSpace(fixed)

	// The capture is complete; shut the pipeline down without waiting for
	// the event loop we are running inside of.
	active.cancel()
	_ = active.mic.Stop()

	c.setState(domain.VoiceStateIdle, domain.VoiceErrorNone)

	if fixed != "" && c.submit != nil {
		c.debounced(func() { c.submit(fixed) })
	}
}

// supervise waits out the streaming session and resolves captures that end
// without a final transcript: stream errors become typed voice errors, a
// clean end with no transcript surfaces as no-speech.
func (c *VoiceController) supervise(active *activeCapture) {
	streamErr := active.stream.Wait()
	active.cancel()
	_ = active.mic.Stop()
	<-active.eventsDone
	<-active.audioDone

	c.mu.Lock()
	if c.active != active {
		c.mu.Unlock()
		return
	}
	c.active = nil
	interrupted := c.state == domain.VoiceStateListening
	c.mu.Unlock()

	if !interrupted {
		return
	}

	if streamErr != nil {
		c.events.SessionError(domain.ErrorCodeVoice, streamErr.Error())
		c.setState(domain.VoiceStateError, domain.ClassifyVoiceFailure(streamErr))
		return
	}
	c.setState(domain.VoiceStateIdle, domain.VoiceErrorNoSpeech)
}

func (c *VoiceController) fail(err error) {
	c.mu.Lock()
	c.starting = false
	c.mu.Unlock()
	c.events.SessionError(domain.ErrorCodeVoice, err.Error())
	c.setState(domain.VoiceStateError, domain.ClassifyVoiceFailure(err))
}

func (c *VoiceController) setState(state domain.VoiceState, cause domain.VoiceErrorCode) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.events.VoiceStateChanged(state, cause)
}
