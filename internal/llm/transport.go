// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is a single completion request.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Response is a completed generation.
type Response struct {
	Text   string
	Tokens int
}

// Transport sends one completion request to a text generation service.
// Implementations return *ServiceError when the service answered but
// rejected the request or produced no usable completion.
type Transport interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ServiceError is a definitive answer from the generation service. The
// client never retries it.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("generation service returned status %d", e.Status)
	}
	return fmt.Sprintf("generation service returned status %d: %s", e.Status, e.Detail)
}

// OpenAI is a Transport speaking the chat completions protocol.
type OpenAI struct {
	url    string
	apiKey string
	client *http.Client
}

// NewOpenAI returns a Transport for the chat completions endpoint at url.
// A nil client falls back to http.DefaultClient.
func NewOpenAI(url, apiKey string, client *http.Client) *OpenAI {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{url: url, apiKey: apiKey, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete posts the prompt as a single user message and returns the first
// completion choice together with the total token usage.
func (o *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ServiceError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, &ServiceError{Status: resp.StatusCode, Detail: "no completion choices returned"}
	}

	return &Response{Text: out.Choices[0].Message.Content, Tokens: out.Usage.TotalTokens}, nil
}
