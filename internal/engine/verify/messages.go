package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

// MessagesClient talks to a messages-style completion API:
// POST {base}/v1/messages with x-api-key and anthropic-version headers.
type MessagesClient struct {
	base      string
	apiKey    string
	model     string
	version   string
	maxTokens int
	hc        *http.Client
	retry     engine.RetryConfig
}

// NewMessagesClient builds a client from the verifier settings in cfg.
func NewMessagesClient(cfg engine.Config, hc *http.Client) *MessagesClient {
	if hc == nil {
		hc = engine.NewHTTPClient(60 * time.Second)
	}
	maxTokens := cfg.VerifierMaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &MessagesClient{
		base:      strings.TrimRight(cfg.VerifierAPIBase, "/"),
		apiKey:    cfg.VerifierAPIKey,
		model:     cfg.VerifierModel,
		version:   cfg.VerifierAPIVersion,
		maxTokens: maxTokens,
		hc:        hc,
		retry:     cfg.Retry,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends prompt as a single user message and returns the first text block.
func (c *MessagesClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	apiURL := c.base + "/v1/messages"
	resp, err := engine.RetryHTTP(ctx, c.retry, verifierService, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", c.version)
		req.Header.Set("User-Agent", engine.UserAgent)
		return c.hc.Do(req)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &engine.UpstreamError{Service: verifierService, StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", engine.NewParseError(verifierService, err)
	}
	for _, block := range out.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", engine.NewParseError(verifierService, errors.New("empty content"))
}
