package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"moodify/internal/domain"
	"moodify/internal/ports"
)

var (
	ErrNoCurrentVibe      = errors.New("no vibe has been generated yet")
	ErrGenerationInFlight = errors.New("a generation request is already in flight")
)

// VibeController owns the current vibe. It is the single writer of session
// state: every input channel (typed prompt, voice transcript, favorites
// replay) funnels through it, and the like flag is recomputed against the
// favorites store whenever the current vibe changes rather than toggled.
type VibeController struct {
	gen    ports.GenerationClient
	favs   ports.FavoritesStore
	media  ports.MediaPlayer
	events ports.EventSink

	mu           sync.Mutex
	current      *domain.Vibe
	isLiked      bool
	generating   bool
	activeLoadID string
	volumeLevel  int
}

func NewVibeController(
	gen ports.GenerationClient,
	favs ports.FavoritesStore,
	media ports.MediaPlayer,
	events ports.EventSink,
) *VibeController {
	return &VibeController{
		gen:         gen,
		favs:        favs,
		media:       media,
		events:      events,
		volumeLevel: 100,
	}
}

// SubmitPrompt requests a new vibe for the prompt. Empty or whitespace-only
// prompts are silently ignored. While a request is in flight further
// submissions are refused, so at most one generation call is outstanding.
func (c *VibeController) SubmitPrompt(ctx context.Context, text string) error {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	c.generating = true
	c.mu.Unlock()

	c.events.GenerationStarted(prompt)

	result, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
		c.events.GenerationFailed(errors.Is(err, domain.ErrGenerationRejected), err.Error())
		return err
	}

	vibe := domain.Vibe{
		Prompt:   prompt,
		AudioURL: result.AudioURL,
		VideoURL: result.VideoURL,
		Keywords: result.Keywords,
	}

	liked := c.checkLiked(vibe.Prompt)
	loadID := uuid.NewString()

	c.mu.Lock()
	c.current = &vibe
	c.isLiked = liked
	c.activeLoadID = loadID
	c.generating = false
	volume := float64(c.volumeLevel) / 100
	c.mu.Unlock()

	c.events.VibeApplied(vibe, liked, false)
	c.startMedia(loadID, vibe, volume)
	return nil
}

// ReplayFavorite re-activates a saved vibe without a generation call. The
// like flag is still recomputed from the store in case the favorite was
// deleted between listing and selecting it.
func (c *VibeController) ReplayFavorite(vibe domain.Vibe) error {
	if strings.TrimSpace(vibe.Prompt) == "" {
		return errors.New("favorite has no prompt")
	}

	liked := c.checkLiked(vibe.Prompt)
	loadID := uuid.NewString()

	c.mu.Lock()
	copied := vibe
	c.current = &copied
	c.isLiked = liked
	c.activeLoadID = loadID
	volume := float64(c.volumeLevel) / 100
	c.mu.Unlock()

	c.events.VibeApplied(vibe, liked, true)
	c.startMedia(loadID, vibe, volume)
	return nil
}

// ToggleLike saves the current vibe to favorites, or removes it when it is
// already saved. Returns the resulting like state.
func (c *VibeController) ToggleLike() (bool, error) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current == nil {
		return false, ErrNoCurrentVibe
	}

	// Removal is keyed by prompt in one store transaction, so a panel
	// delete interleaving here can never shift an index under us.
	removed, err := c.favs.RemoveByPrompt(current.Prompt)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
		return c.liked(), err
	}

	liked := !removed
	if liked {
		if err := c.favs.Add(*current); err != nil {
			c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
			return c.liked(), err
		}
	}

	c.mu.Lock()
	c.isLiked = liked
	c.mu.Unlock()

	c.events.LikeChanged(liked, *current)
	c.notifyFavorites()
	return liked, nil
}

// DeleteFavorite removes the entry at index from the favorites panel. If it
// held the current vibe's prompt the like flag is cleared as well, keeping
// the flag consistent without a ToggleLike call.
func (c *VibeController) DeleteFavorite(index int) error {
	removed, err := c.favs.RemoveAt(index)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
		return err
	}

	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current != nil && current.Prompt == removed.Prompt {
		liked := c.checkLiked(current.Prompt)
		c.mu.Lock()
		c.isLiked = liked
		c.mu.Unlock()
		if !liked {
			c.events.LikeChanged(false, *current)
		}
	}

	c.notifyFavorites()
	return nil
}

// ListFavorites re-reads the persisted favorites, so the panel always shows
// what is actually stored.
func (c *VibeController) ListFavorites() ([]domain.Vibe, error) {
	favs, err := c.favs.List()
	if err != nil {
		c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
		return nil, err
	}
	return favs, nil
}

// MediaLoaded reports that the frontend finished loading the tagged video.
// Completions for anything but the newest load are stale and dropped.
func (c *VibeController) MediaLoaded(loadID string) {
	c.mu.Lock()
	active := c.activeLoadID == loadID && loadID != ""
	c.mu.Unlock()
	if active {
		c.media.RevealVideo(loadID)
	}
}

// PlaybackBlocked reports that the frontend's audio autoplay was rejected.
func (c *VibeController) PlaybackBlocked(loadID string) {
	c.mu.Lock()
	active := c.activeLoadID == loadID && loadID != ""
	c.mu.Unlock()
	if active {
		c.events.PlaybackBlocked()
	}
}

// SetVolume stores the 0-100 slider level and forwards it to the player.
func (c *VibeController) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	c.mu.Lock()
	c.volumeLevel = level
	c.mu.Unlock()

	c.media.SetVolume(float64(level) / 100)
}

// Status returns a snapshot of the session.
func (c *VibeController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := domain.Status{
		IsLiked:    c.isLiked,
		Generating: c.generating,
		Volume:     c.volumeLevel,
	}
	if c.current != nil {
		copied := *c.current
		status.CurrentVibe = &copied
	}
	return status
}

func (c *VibeController) liked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLiked
}

// checkLiked recomputes membership from the store; a store failure surfaces
// as an error event and reads as not liked.
func (c *VibeController) checkLiked(prompt string) bool {
	liked, err := c.favs.Contains(prompt)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
		return false
	}
	return liked
}

func (c *VibeController) notifyFavorites() {
	favs, err := c.favs.List()
	if err != nil {
		c.events.SessionError(domain.ErrorCodeFavorites, err.Error())
		return
	}
	c.events.FavoritesChanged(favs)
}

// startMedia issues the load sequence for a freshly applied vibe: video
// first so the fade can start, then audio with the current volume.
func (c *VibeController) startMedia(loadID string, vibe domain.Vibe, volume float64) {
	if vibe.VideoURL != "" {
		c.media.LoadVideo(loadID, vibe.VideoURL)
	}
	if vibe.AudioURL != "" {
		c.media.LoadAndPlayAudio(loadID, vibe.AudioURL, volume)
	}
}
