package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LlamaClient talks to a local llama.cpp server's /completion
// endpoint.
type LlamaClient struct {
	baseURL string
	httpc   *http.Client
}

func NewLlamaClient(baseURL string, timeout time.Duration) *LlamaClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LlamaClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *LlamaClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.baseURL == "" {
		return Response{}, fmt.Errorf("model base url is empty")
	}

	body, err := json.Marshal(map[string]any{
		"prompt":      req.Prompt,
		"n_predict":   req.MaxTokens,
		"temperature": req.Temperature,
		"stop":        req.Stop,
		"stream":      false,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completion", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Response{}, fmt.Errorf("completion status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Response{}, fmt.Errorf("decode completion response: %w", err)
	}
	return Response{Text: payload.Content}, nil
}
