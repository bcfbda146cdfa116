package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Synthesizer is the external voice-synthesis boundary. Synthesis is a
// best-effort side effect; callers never let its failure reach conversation
// state.
type Synthesizer interface {
	// Speak renders text to speech for the given user session and returns a
	// URL or data reference the client can play.
	Speak(ctx context.Context, sessionID string, text string) (string, error)
}

// HTTPSynthesizer posts text to a TTS service speaking a small JSON contract.
type HTTPSynthesizer struct {
	BaseURL string
	Voice   string
	Client  *http.Client
}

var _ Synthesizer = &HTTPSynthesizer{}

func NewHTTPSynthesizer(baseURL, voiceName string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		BaseURL: baseURL,
		Voice:   voiceName,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type synthesizeRequest struct {
	Text      string `json:"text"`
	Voice     string `json:"voice,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type synthesizeResponse struct {
	AudioURL string `json:"audio_url"`
}

func (s *HTTPSynthesizer) Speak(ctx context.Context, sessionID string, text string) (string, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Text:      text,
		Voice:     s.Voice,
		SessionID: sessionID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/v1/synthesize", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tts error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out synthesizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.AudioURL, nil
}

// NopSynthesizer is used when no TTS backend is configured.
type NopSynthesizer struct{}

var _ Synthesizer = NopSynthesizer{}

func (NopSynthesizer) Speak(context.Context, string, string) (string, error) {
	return "", nil
}
