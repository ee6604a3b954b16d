// Package model is the language-model boundary. The rest of the
// system only sees the Client interface; whether a model is present
// at all is the caller's concern.
package model

import (
	"context"
	"sync"
)

type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

type Response struct {
	Text string
}

type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Serialize wraps inner so that at most one completion is in flight.
// Local single-slot model servers reject concurrent requests, so
// callers across sessions queue here instead.
func Serialize(inner Client) Client {
	return &serialized{inner: inner}
}

type serialized struct {
	mu    sync.Mutex
	inner Client
}

func (s *serialized) Complete(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return s.inner.Complete(ctx, req)
}
