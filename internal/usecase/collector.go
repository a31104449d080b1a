package usecase

import (
	"strings"
	"sync"

	"moodify/internal/domain"
)

// transcriptCollector enforces the ordering rules for one capture session:
// fragments are applied in non-decreasing result-index order, a final
// fragment wins over any later-arriving fragment with an earlier index, and
// at most one final is ever surfaced.
type transcriptCollector struct {
	mu        sync.Mutex
	nextIndex int
	done      bool
}

func newTranscriptCollector() *transcriptCollector {
	return &transcriptCollector{}
}

// Observe filters one stream event. It returns the trimmed text and whether
// the event should be acted on; stale, empty, and post-final fragments are
// dropped.
func (c *transcriptCollector) Observe(event domain.TranscriptEvent) (string, bool) {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return "", false
	}
	if event.ResultIndex < c.nextIndex {
		return "", false
	}
	if event.Kind == domain.TranscriptKindFinal {
		c.done = true
		c.nextIndex = event.ResultIndex + 1
	}
	return text, true
}
