// Package docschat implements the External LLM Client (spec §4.8):
// docs_chat's single collaborator outside the core. Grounded on the
// teacher's sampling.Client (pkg/infrastructure/ai_ml/sampling/client.go)
// for its connection-pool/timeout vocabulary and its MCP-sampling fallback
// path, adapted from an always-MCP-sampling RPC to a direct HTTP
// chat-completion endpoint with MCP sampling as the no-api-key fallback.
package docschat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

// Config configures the client (spec §4.8). When APIKey or BaseURL is
// empty, Chat falls back to the host's MCP sampling capability instead of
// making an HTTP call.
type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	Timeout             time.Duration
	MaxIdleConnsPerHost int
	RetryAttempts       int
	MaxTokens           int
	Temperature         float64
}

// DefaultConfig mirrors the teacher's sampling.DefaultConfig shape.
func DefaultConfig() Config {
	return Config{
		Model:               "gpt-4o-mini",
		Timeout:             30 * time.Second,
		MaxIdleConnsPerHost: 4,
		RetryAttempts:       3,
		MaxTokens:           1024,
		Temperature:         0.2,
	}
}

// Client is the docs_chat tool handler's collaborator. It never panics;
// every failure mode surfaces as a *client* mcperr.Error.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a Client. A zero-value Config's Timeout/MaxIdleConnsPerHost
// fields are filled from DefaultConfig.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = DefaultConfig().MaxIdleConnsPerHost
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultConfig().RetryAttempts
	}
	transport := &http.Transport{MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
	}
}

// configured reports whether direct HTTP chat completion is usable.
func (c *Client) configured() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseURL != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
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

// Chat answers prompt given history (oldest-first, role/content pairs) and
// systemPrompts (prepended as system messages). Falls back to MCP sampling
// when no api_key/base_url is configured; that path sends only the prompt
// and the first system prompt, not the history.
func (c *Client) Chat(ctx context.Context, prompt string, history []map[string]string, systemPrompts []string) (string, error) {
	if !c.configured() {
		return c.chatViaSampling(ctx, prompt, systemPrompts)
	}
	return c.chatViaHTTP(ctx, prompt, history, systemPrompts)
}

func (c *Client) chatViaHTTP(ctx context.Context, prompt string, history []map[string]string, systemPrompts []string) (string, error) {
	messages := make([]chatMessage, 0, len(systemPrompts)+len(history)+1)
	for _, sp := range systemPrompts {
		messages = append(messages, chatMessage{Role: "system", Content: sp})
	}
	for _, h := range history {
		messages = append(messages, chatMessage{Role: h["role"], Content: h["content"]})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	var result chatResponse
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.RetryAttempts))
	err := backoff.Retry(func() error {
		return c.doHTTPChat(ctx, reqBody, &result)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return "", mcperr.Wrap(mcperr.KindClient, err, "docs_chat: chat completion request failed")
	}
	if len(result.Choices) == 0 {
		return "", mcperr.New(mcperr.KindClient, "docs_chat: chat completion returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Client) doHTTPChat(ctx context.Context, reqBody chatRequest, out *chatResponse) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err // transient, retryable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("docs_chat: upstream returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return backoff.Permanent(fmt.Errorf("docs_chat: upstream returned status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(err)
	}
	return nil
}

// chatViaSampling falls back to the host's MCP sampling capability (spec
// §3 extension, grounded on the teacher's callMCPSampling): no api_key or
// base_url is required, but ctx must carry an *server.MCPServer (it does
// not when docs_chat is invoked outside an active MCP session).
func (c *Client) chatViaSampling(ctx context.Context, prompt string, systemPrompts []string) (string, error) {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return "", mcperr.New(mcperr.KindClient, "docs_chat: no api_key/base_url configured and no MCP server in context to fall back to sampling")
	}

	req := mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages: []mcp.SamplingMessage{
				{
					Role:    mcp.RoleUser,
					Content: mcp.TextContent{Type: "text", Text: prompt},
				},
			},
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		},
	}
	if len(systemPrompts) > 0 {
		req.CreateMessageParams.SystemPrompt = systemPrompts[0]
	}

	result, err := srv.RequestSampling(ctx, req)
	if err != nil {
		return "", mcperr.Wrap(mcperr.KindClient, err, "docs_chat: MCP sampling request failed")
	}

	if textContent, ok := result.Content.(mcp.TextContent); ok {
		return textContent.Text, nil
	}
	if contentMap, ok := result.Content.(map[string]interface{}); ok {
		if text, ok := contentMap["text"].(string); ok {
			return text, nil
		}
	}
	return "", mcperr.New(mcperr.KindClient, "docs_chat: MCP sampling returned unrecognized content")
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
