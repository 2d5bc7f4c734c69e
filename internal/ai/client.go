// Package ai talks to the external text-completion service. It is the only
// place intelligence lives; every failure here degrades to a *ServiceError
// that the agents surface as a user-visible result, never a retry.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServiceError wraps any failure of the completion call: network, quota,
// non-200 status or unparseable content.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai: %s: %v", e.Op, e.Err)
	}
	return "ai: " + e.Op
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Options tune a single completion call.
type Options struct {
	SystemContext string
	Temperature   float64
	MaxTokens     int
}

// Completer is the request/response seam to the completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if opts.SystemContext != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.SystemContext})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", &ServiceError{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", &ServiceError{Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "call completion service", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("ai: completion request failed",
			zap.Int("status", resp.StatusCode))
		return "", &ServiceError{
			Op:  fmt.Sprintf("completion status %d", resp.StatusCode),
			Err: errors.New(string(body)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &ServiceError{Op: "decode response", Err: err}
	}
	// The service sometimes returns 200 with an error object in the body.
	if chatResp.Error.Message != "" {
		return "", &ServiceError{Op: "model error", Err: errors.New(chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", &ServiceError{Op: "empty completion"}
	}
	return chatResp.Choices[0].Message.Content, nil
}
