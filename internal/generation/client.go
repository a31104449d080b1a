package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moodify/internal/domain"
)

// Client calls the ambience generation endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Status   string   `json:"status"`
	Keywords []string `json:"keywords"`
	Vibe     string   `json:"vibe"`
	AudioURL string   `json:"audio_url"`
	VideoURL string   `json:"video_url"`
}

// Generate posts the prompt and decodes the audio/video pairing. Any
// non-"success" status payload resolves to domain.ErrGenerationRejected.
func (c *Client) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.GenerationResult{}, fmt.Errorf("generation request returned HTTP %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("failed to read generation response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("failed to decode generation response: %w", err)
	}

	if decoded.Status != "success" {
		return domain.GenerationResult{}, fmt.Errorf("%w: status %q", domain.ErrGenerationRejected, decoded.Status)
	}

	return domain.GenerationResult{
		Keywords: decoded.Keywords,
		Mood:     decoded.Vibe,
		AudioURL: decoded.AudioURL,
		VideoURL: decoded.VideoURL,
	}, nil
}
