// Package inference generates model completions for a table of prompts.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ModelResponse is one completion plus its token accounting.
type ModelResponse struct {
	Text   string
	Tokens int
}

// ModelClient produces a completion for a prompt on a named model.
type ModelClient interface {
	Generate(ctx context.Context, model, prompt string) (ModelResponse, error)
}

// OllamaClient talks to a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewOllamaClient returns a client for baseURL (default http://localhost:11434).
func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
	Error     string `json:"error"`
}

func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (ModelResponse, error) {
	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt})
	if err != nil {
		return ModelResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return ModelResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ModelResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return ModelResponse{}, fmt.Errorf("ollama returned %s: %s", resp.Status, bytes.TrimSpace(raw))
	}
	var out ollamaResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ModelResponse{}, fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Error != "" {
		return ModelResponse{}, fmt.Errorf("ollama: %s", out.Error)
	}
	return ModelResponse{Text: out.Response, Tokens: out.EvalCount}, nil
}
