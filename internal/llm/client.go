// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package llm invokes the external text generation service. Every
// invocation is retried within a fixed budget and produces a complete
// audit trail that callers persist regardless of the outcome.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names a prompt template and the artifact it produces.
type Kind string

const (
	KindModelGeneration Kind = "model_generation"
	KindTesterChecklist Kind = "tester_checklist"
	KindCodeReview      Kind = "code_review"
	KindUnitTest        Kind = "unit_test"
)

// Kinds lists every known prompt kind in stable order.
func Kinds() []Kind {
	return []Kind{KindModelGeneration, KindTesterChecklist, KindCodeReview, KindUnitTest}
}

// Settings bound a client's requests and its retry budget. Retries counts
// additional attempts after the first, so a client makes Retries+1 calls
// at most.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Retries     int
	Backoff     time.Duration
}

// LogEntry records one attempt of one invocation. Attempts of the same
// Generate call share an invocation ID.
type LogEntry struct {
	Time       time.Time
	Invocation uuid.UUID
	Name       string
	Kind       Kind
	Attempt    int
	Prompt     string
	Response   string
	Tokens     int
	Err        string
}

// Result is the outcome of a Generate call. Log holds one entry per
// attempt and is populated even when the call fails.
type Result struct {
	Text   string
	Tokens int
	Log    []LogEntry
}

// Client drives a Transport with bounded retries and exponential backoff.
type Client struct {
	transport Transport
	settings  Settings
	now       func() time.Time
}

// NewClient returns a client over t using the given settings.
func NewClient(t Transport, settings Settings) *Client {
	return &Client{transport: t, settings: settings, now: time.Now}
}

// Generate sends the prompt on behalf of the named artifact and returns
// the completion. The returned Result is never nil: on failure it still
// carries the audit log of every attempt made. A service rejection or
// context cancellation ends the call immediately; transport failures,
// timeouts included, are retried until the budget is spent.
func (c *Client) Generate(ctx context.Context, name string, kind Kind, prompt string) (*Result, error) {
	invocation := uuid.New()
	result := &Result{}
	attempts := c.settings.Retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.transport.Complete(ctx, Request{
			Model:       c.settings.Model,
			Prompt:      prompt,
			MaxTokens:   c.settings.MaxTokens,
			Temperature: c.settings.Temperature,
			TopP:        c.settings.TopP,
		})

		entry := LogEntry{
			Time:       c.now(),
			Invocation: invocation,
			Name:       name,
			Kind:       kind,
			Attempt:    attempt,
			Prompt:     prompt,
		}
		if err == nil {
			entry.Response = resp.Text
			entry.Tokens = resp.Tokens
			result.Log = append(result.Log, entry)
			result.Text = resp.Text
			result.Tokens = resp.Tokens
			return result, nil
		}
		entry.Err = err.Error()
		result.Log = append(result.Log, entry)
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return result, fmt.Errorf("generate %s for %s: %w", kind, name, err)
		}
		if attempt == attempts {
			break
		}
		if err := c.wait(ctx, attempt); err != nil {
			return result, fmt.Errorf("generate %s for %s: %w", kind, name, err)
		}
	}

	return result, fmt.Errorf("generate %s for %s: %d attempts failed: %w", kind, name, attempts, lastErr)
}

// wait sleeps for the backoff of the given attempt, doubling each time,
// and returns early if the context ends.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.settings.Backoff << (attempt - 1)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a failed attempt may be tried again. An
// answered non-2xx is definitive; transport failures are not. Per-attempt
// timeouts count as transport failures, so cancellation of the run itself
// is checked on the context, not the error.
func retryable(err error) bool {
	var svc *ServiceError
	return !errors.As(err, &svc)
}
