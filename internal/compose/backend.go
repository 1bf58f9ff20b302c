// Package compose implements the External Composer Facade of spec.md
// §4.10: it builds a prompt context out of ranked chunks, invokes an
// injected Backend, and returns the backend's output verbatim with
// metadata, falling back to a safe enumeration (or emergency protocol
// text) when the backend errors. Grounded on the teacher's
// internal/embed/ollama.go for the HTTP-backend shape (pooled client,
// context-scoped timeouts, no static client timeout) and on
// internal/search/reranker.go for the "external collaborator with a
// safe no-op fallback" pattern.
package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is what the Facade passes to a Backend: a prompt built from
// ranked chunk excerpts plus routing metadata the backend may use to
// choose a model or temperature.
type Request struct {
	Query       string
	PromptText  string
	IsEmergency bool
	SafetyFlags []string
}

// Response is a Backend's raw output before the Facade attaches
// citation/warning metadata.
type Response struct {
	AnswerText string
	ModelUsed  string
}

// Backend is the external composer collaborator. Production backends
// call out to an LLM; FallbackBackend never does.
type Backend interface {
	Compose(ctx context.Context, req Request) (Response, error)
}

// HTTPBackend calls an OpenAI-compatible chat completion endpoint.
type HTTPBackend struct {
	client *http.Client
	url    string
	model  string
}

// NewHTTPBackend builds an HTTPBackend with a pooled client and no
// static timeout, matching the teacher's guidance that a static
// http.Client.Timeout overrides the caller's per-request context
// deadline.
func NewHTTPBackend(url, model string) *HTTPBackend {
	transport := &http.Transport{
		MaxIdleConns:        8,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     10 * time.Second,
	}
	return &HTTPBackend{
		client: &http.Client{Transport: transport},
		url:    url,
		model:  model,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Compose sends req.PromptText as a single user turn and returns the
// first choice's content.
func (b *HTTPBackend) Compose(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "user", Content: req.PromptText},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal composer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build composer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("composer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Response{}, fmt.Errorf("composer returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("decode composer response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("composer returned no choices")
	}
	return Response{AnswerText: parsed.Choices[0].Message.Content, ModelUsed: b.model}, nil
}
