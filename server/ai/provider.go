package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrNoModel is returned by DetectModel when the server lists no models.
var ErrNoModel = errors.New("no model available")

// Config holds the upstream model server configuration.
type Config struct {
	BaseURL          string
	DiscoveryTimeout time.Duration
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxTokens        int
	Temperature      float32
	TopP             float32
}

// DefaultConfig returns the default configuration for a local LM Studio.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "http://127.0.0.1:1234/v1",
		DiscoveryTimeout: 10 * time.Second,
		ConnectTimeout:   10 * time.Second,
		ReadTimeout:      300 * time.Second,
		MaxTokens:        200,
		Temperature:      0.25,
		TopP:             0.8,
	}
}

// ChatRequest is a single-turn chat completion request.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
}

// Provider talks to an OpenAI-compatible model server.
type Provider struct {
	client     *openai.Client
	httpClient *http.Client
	config     *Config
}

// NewProvider creates a new provider. Unset config values take their defaults.
func NewProvider(cfg *Config) *Provider {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}

	// Apply defaults for unset values
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DiscoveryTimeout == 0 {
		cfg.DiscoveryTimeout = defaults.DiscoveryTimeout
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaults.Temperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = defaults.TopP
	}

	// LM Studio does not check the API key.
	clientConfig := openai.DefaultConfig("")
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.DiscoveryTimeout}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Provider{
		client:     openai.NewClientWithConfig(clientConfig),
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
	}
}

// BaseURL returns the upstream base URL without a trailing slash.
func (p *Provider) BaseURL() string {
	return p.config.BaseURL
}

// DetectModel returns the id of the first model listed by the server.
// A first entry without an id counts as no model.
func (p *Provider) DetectModel(ctx context.Context) (string, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(models.Models) == 0 {
		return "", ErrNoModel
	}
	id := strings.TrimSpace(models.Models[0].ID)
	if id == "" {
		return "", ErrNoModel
	}
	return id, nil
}

// ChatStream opens a streaming chat completion. The returned stream must be closed.
func (p *Provider) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	body, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	// The idle timer cancels this context when the body stalls.
	streamCtx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to send chat request: %w", err)
	}
	// An error status is not a transport failure: its body goes through the
	// same line parser, which skips anything that is not a completion chunk.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("chat request returned an error status",
			slog.Int("status", resp.StatusCode),
			slog.String("model", req.Model))
	}

	return newStreamReader(resp.Body, cancel, p.config.ReadTimeout), nil
}

func (p *Provider) buildRequest(req *ChatRequest) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		Stream:      true,
	}
}
