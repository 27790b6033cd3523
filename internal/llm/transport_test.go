// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4", payload.Model)
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "generate something", payload.Messages[0].Content)
		assert.Equal(t, 4000, payload.MaxTokens)
		assert.InDelta(t, 0.1, payload.Temperature, 1e-9)
		assert.InDelta(t, 1.0, payload.TopP, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "select 1"}}],
			"usage": {"total_tokens": 99}
		}`))
	}))
	defer server.Close()

	transport := NewOpenAI(server.URL, "test-key", server.Client())
	resp, err := transport.Complete(context.Background(), Request{
		Model:       "gpt-4",
		Prompt:      "generate something",
		MaxTokens:   4000,
		Temperature: 0.1,
		TopP:        1.0,
	})

	require.NoError(t, err)
	assert.Equal(t, "select 1", resp.Text)
	assert.Equal(t, 99, resp.Tokens)
}

func TestOpenAI_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	transport := NewOpenAI(server.URL, "k", server.Client())
	_, err := transport.Complete(context.Background(), Request{Model: "gpt-4", Prompt: "p"})

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, http.StatusInternalServerError, svc.Status)
	assert.Equal(t, "upstream exploded", svc.Detail)
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 0}}`))
	}))
	defer server.Close()

	transport := NewOpenAI(server.URL, "k", server.Client())
	_, err := transport.Complete(context.Background(), Request{Model: "gpt-4", Prompt: "p"})

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, http.StatusOK, svc.Status)
	assert.Contains(t, svc.Detail, "no completion choices")
}

func TestOpenAI_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := NewOpenAI(server.URL, "k", server.Client())
	_, err := transport.Complete(ctx, Request{Model: "gpt-4", Prompt: "p"})

	require.ErrorIs(t, err, context.Canceled)
}
