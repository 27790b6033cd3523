// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportFunc func(ctx context.Context, req Request) (*Response, error)

func (f transportFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func TestClient_GenerateSucceedsAfterRetries(t *testing.T) {
	calls := 0
	transport := transportFunc(func(_ context.Context, req Request) (*Response, error) {
		calls++
		require.Equal(t, "gpt-4", req.Model)
		require.Equal(t, "the prompt", req.Prompt)
		if calls <= 2 {
			return nil, errors.New("connection reset")
		}
		return &Response{Text: "select 1", Tokens: 42}, nil
	})

	c := NewClient(transport, Settings{Model: "gpt-4", Retries: 2})
	result, err := c.Generate(context.Background(), "customer_orders", KindModelGeneration, "the prompt")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "select 1", result.Text)
	assert.Equal(t, 42, result.Tokens)

	require.Len(t, result.Log, 3)
	for i, entry := range result.Log {
		assert.Equal(t, i+1, entry.Attempt)
		assert.Equal(t, "customer_orders", entry.Name)
		assert.Equal(t, KindModelGeneration, entry.Kind)
		assert.Equal(t, "the prompt", entry.Prompt)
		assert.Equal(t, result.Log[0].Invocation, entry.Invocation)
		assert.False(t, entry.Time.IsZero())
	}
	assert.NotEmpty(t, result.Log[0].Err)
	assert.NotEmpty(t, result.Log[1].Err)
	assert.Empty(t, result.Log[2].Err)
	assert.Equal(t, "select 1", result.Log[2].Response)
	assert.Equal(t, 42, result.Log[2].Tokens)
}

func TestClient_GenerateStopsOnRejection(t *testing.T) {
	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		return nil, &ServiceError{Status: 401, Detail: "invalid api key"}
	})

	c := NewClient(transport, Settings{Retries: 3})
	result, err := c.Generate(context.Background(), "orders", KindTesterChecklist, "p")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	require.NotNil(t, result)
	require.Len(t, result.Log, 1)

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, 401, svc.Status)
}

func TestClient_ThrottlingNotRetried(t *testing.T) {
	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		return nil, &ServiceError{Status: 429, Detail: "quota exceeded"}
	})

	c := NewClient(transport, Settings{Retries: 3})
	result, err := c.Generate(context.Background(), "orders", KindModelGeneration, "p")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, result.Log, 1)

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, 429, svc.Status)
}

func TestClient_GenerateExhaustsBudget(t *testing.T) {
	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		return nil, errors.New("gateway timeout")
	})

	c := NewClient(transport, Settings{Retries: 1})
	result, err := c.Generate(context.Background(), "orders", KindModelGeneration, "p")

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "2 attempts failed")
	require.NotNil(t, result)
	assert.Len(t, result.Log, 2)
	assert.Empty(t, result.Text)
}

func TestClient_ZeroRetriesSingleAttempt(t *testing.T) {
	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		return nil, errors.New("unreachable")
	})

	c := NewClient(transport, Settings{})
	_, err := c.Generate(context.Background(), "orders", KindModelGeneration, "p")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_ContextCanceledIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		cancel()
		return nil, context.Canceled
	})

	c := NewClient(transport, Settings{Retries: 5})
	result, err := c.Generate(ctx, "orders", KindModelGeneration, "p")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Len(t, result.Log, 1)
}

func TestClient_BackoffStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	transport := transportFunc(func(context.Context, Request) (*Response, error) {
		calls++
		cancel()
		return nil, errors.New("connection reset")
	})

	c := NewClient(transport, Settings{Retries: 5, Backoff: time.Hour})
	result, err := c.Generate(ctx, "orders", KindModelGeneration, "p")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Len(t, result.Log, 1)
}
