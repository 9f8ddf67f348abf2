// Package ai scores walking routes with the OpenAI chat completions API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CarolineNkan/safeher-sub001/safety"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// ErrNoCredential is returned when no API key is configured. Callers are
// expected to fall back to the deterministic scorer.
var ErrNoCredential = errors.New("ai: no API key configured")

const systemPrompt = `You are a walking-route safety assessor for a community safety app.
Given a route's distance, duration and nearby community reports of unsafe
situations, respond with a single JSON object and nothing else:
{
  "score": <integer 0-100, higher is safer>,
  "level": "<low risk | medium risk | high risk>",
  "lighting": "<low | medium | high>",
  "incidents": "<low | medium | high>",
  "visibility": "<low | medium | high>",
  "explanation": "<one or two sentences for the user>"
}`

// A StorySummary is a nearby community report included in the prompt.
type StorySummary struct {
	Message string
	Counts  safety.ReactionCounts
}

// RouteInput describes the route to score.
type RouteInput struct {
	DistanceMeters  float64
	DurationSeconds float64
	Stories         []StorySummary
}

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a client for the given API key and model. An empty key is
// allowed; ScoreRoute then reports ErrNoCredential.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ScoreRoute issues a single structured completion request and returns the
// model's score verbatim. The score is not revalidated server-side; callers
// must treat it as partially trusted.
func (c *Client) ScoreRoute(ctx context.Context, in RouteInput) (safety.RouteScore, error) {
	if c.apiKey == "" {
		return safety.RouteScore{}, ErrNoCredential
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(in)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return safety.RouteScore{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return safety.RouteScore{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return safety.RouteScore{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return safety.RouteScore{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return safety.RouteScore{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return safety.RouteScore{}, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return safety.RouteScore{}, fmt.Errorf("no choices in response")
	}

	var score safety.RouteScore
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &score); err != nil {
		return safety.RouteScore{}, fmt.Errorf("parse model output: %w", err)
	}
	return score, nil
}

func buildPrompt(in RouteInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Route: %.1f km, about %.0f minutes walking.\n",
		in.DistanceMeters/1000, in.DurationSeconds/60)
	if len(in.Stories) == 0 {
		b.WriteString("No community reports near this route.")
		return b.String()
	}
	fmt.Fprintf(&b, "Community reports near the route (%d):\n", len(in.Stories))
	for _, s := range in.Stories {
		fmt.Fprintf(&b, "- %q (helpful: %d, like: %d, noted: %d)\n",
			s.Message, s.Counts.Helpful, s.Counts.Like, s.Counts.Noted)
	}
	return b.String()
}
