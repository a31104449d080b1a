package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"moodify/internal/domain"
	"moodify/internal/ports"
)

type fakeGen struct {
	mu      sync.Mutex
	prompts []string
	result  domain.GenerationResult
	err     error
	block   chan struct{}
}

func (g *fakeGen) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	block := g.block
	g.mu.Unlock()
	if block != nil {
		<-block
	}
	if g.err != nil {
		return domain.GenerationResult{}, g.err
	}
	return g.result, nil
}

func (g *fakeGen) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

type memFavorites struct {
	mu    sync.Mutex
	items []domain.Vibe
	fail  error
}

func (m *memFavorites) List() ([]domain.Vibe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.Vibe(nil), m.items...), nil
}

func (m *memFavorites) Add(vibe domain.Vibe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.items = append(m.items, vibe)
	return nil
}

func (m *memFavorites) RemoveAt(index int) (domain.Vibe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return domain.Vibe{}, m.fail
	}
	if index < 0 || index >= len(m.items) {
		return domain.Vibe{}, errors.New("favorite index out of range")
	}
	removed := m.items[index]
	m.items = append(m.items[:index], m.items[index+1:]...)
	return removed, nil
}

func (m *memFavorites) RemoveByPrompt(prompt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for i, item := range m.items {
		if item.Prompt == prompt {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memFavorites) Contains(prompt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for _, item := range m.items {
		if item.Prompt == prompt {
			return true, nil
		}
	}
	return false, nil
}

type mediaCall struct {
	op     string
	loadID string
	url    string
	volume float64
}

type fakeMedia struct {
	mu    sync.Mutex
	calls []mediaCall
}

func (m *fakeMedia) LoadVideo(loadID string, url string) {
	m.record(mediaCall{op: "loadVideo", loadID: loadID, url: url})
}

func (m *fakeMedia) LoadAndPlayAudio(loadID string, url string, volume float64) {
	m.record(mediaCall{op: "playAudio", loadID: loadID, url: url, volume: volume})
}

func (m *fakeMedia) RevealVideo(loadID string) {
	m.record(mediaCall{op: "revealVideo", loadID: loadID})
}

func (m *fakeMedia) SetVolume(volume float64) {
	m.record(mediaCall{op: "setVolume", volume: volume})
}

func (m *fakeMedia) record(call mediaCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *fakeMedia) snapshot() []mediaCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mediaCall(nil), m.calls...)
}

type voiceStateEvent struct {
	state domain.VoiceState
	cause domain.VoiceErrorCode
}

type generationFailure struct {
	rejected bool
	detail   string
}

type appliedVibe struct {
	vibe     domain.Vibe
	liked    bool
	restored bool
}

type likeEvent struct {
	liked bool
	vibe  domain.Vibe
}

type sinkError struct {
	code   domain.ErrorCode
	detail string
}

type fakeSink struct {
	mu          sync.Mutex
	started     []string
	failures    []generationFailure
	applied     []appliedVibe
	likes       []likeEvent
	favLists    [][]domain.Vibe
	voiceStates []voiceStateEvent
	partials    []string
	finals      []string
	blocked     int
	errors      []sinkError
}

func (s *fakeSink) GenerationStarted(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, prompt)
}

func (s *fakeSink) GenerationFailed(rejected bool, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, generationFailure{rejected: rejected, detail: detail})
}

func (s *fakeSink) VibeApplied(vibe domain.Vibe, liked bool, restored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, appliedVibe{vibe: vibe, liked: liked, restored: restored})
}

func (s *fakeSink) LikeChanged(liked bool, vibe domain.Vibe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = append(s.likes, likeEvent{liked: liked, vibe: vibe})
}

func (s *fakeSink) FavoritesChanged(favorites []domain.Vibe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favLists = append(s.favLists, append([]domain.Vibe(nil), favorites...))
}

func (s *fakeSink) VoiceStateChanged(state domain.VoiceState, cause domain.VoiceErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceStates = append(s.voiceStates, voiceStateEvent{state: state, cause: cause})
}

func (s *fakeSink) PartialTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partials = append(s.partials, text)
}

func (s *fakeSink) FinalTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals = append(s.finals, text)
}

func (s *fakeSink) PlaybackBlocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked++
}

func (s *fakeSink) SessionError(code domain.ErrorCode, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, sinkError{code: code, detail: detail})
}

func (s *fakeSink) snapshotFinals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.finals...)
}

func (s *fakeSink) snapshotPartials() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.partials...)
}

func (s *fakeSink) snapshotVoiceStates() []voiceStateEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]voiceStateEvent(nil), s.voiceStates...)
}

func (s *fakeSink) snapshotLikes() []likeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]likeEvent(nil), s.likes...)
}

func (s *fakeSink) snapshotFailures() []generationFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]generationFailure(nil), s.failures...)
}

type fakeMic struct {
	mu       sync.Mutex
	chunks   [][]byte
	stopped  chan struct{}
	stopOnce sync.Once
}

func newFakeMic(chunks ...[]byte) *fakeMic {
	return &fakeMic{chunks: chunks, stopped: make(chan struct{})}
}

func (m *fakeMic) Read(p []byte) (int, error) {
	m.mu.Lock()
	if len(m.chunks) > 0 {
		chunk := m.chunks[0]
		m.chunks = m.chunks[1:]
		m.mu.Unlock()
		return copy(p, chunk), nil
	}
	m.mu.Unlock()
	<-m.stopped
	return 0, io.EOF
}

func (m *fakeMic) Stop() error {
	m.stopOnce.Do(func() { close(m.stopped) })
	return nil
}

func (m *fakeMic) Close() error { return m.Stop() }

type fakeCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
}

func (c *fakeCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if len(c.sessions) == 0 {
		return nil, errors.New("no fake audio session available")
	}
	session := c.sessions[0]
	c.sessions = c.sessions[1:]
	return session, nil
}

type fakeStream struct {
	events chan domain.TranscriptEvent
	done   chan struct{}

	mu      sync.Mutex
	sent    [][]byte
	waitErr error

	finishOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		events: make(chan domain.TranscriptEvent, 16),
		done:   make(chan struct{}),
	}
}

func (s *fakeStream) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, append([]byte(nil), chunk...))
	return nil
}

func (s *fakeStream) CloseSend() error { return nil }

func (s *fakeStream) Events() <-chan domain.TranscriptEvent { return s.events }

func (s *fakeStream) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitErr
}

func (s *fakeStream) Close() error {
	s.finish(nil)
	return nil
}

// finish ends the fake session, optionally with a terminal error.
func (s *fakeStream) finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(s.events)
		close(s.done)
	})
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions []ports.VoiceSession
	err      error
	dials    int
	block    chan struct{}
}

func (p *fakeProvider) StartStreaming(_ context.Context, _ ports.VoiceConfig) (ports.VoiceSession, error) {
	p.mu.Lock()
	p.dials++
	block := p.block
	p.mu.Unlock()
	if block != nil {
		<-block
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	if len(p.sessions) == 0 {
		return nil, errors.New("no fake voice session available")
	}
	session := p.sessions[0]
	p.sessions = p.sessions[1:]
	return session, nil
}

func (p *fakeProvider) dialCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dials
}

type fakeRewriter struct {
	replace map[string]string
	err     error
}

func (r *fakeRewriter) Apply(text string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if fixed, ok := r.replace[text]; ok {
		return fixed, nil
	}
	return text, nil
}
