package openai

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/railmitra/railmitra/llm"
)

// Config holds OpenAI provider configuration
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     "gpt-4o-mini",
		MaxTokens: 2000,
	}
}

// WithBaseURL sets BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithModel sets the model.
func (cfg *Config) WithModel(model string) *Config {
	cfg.Model = model
	return cfg
}

// Provider implements the llm.Client interface for OpenAI
type Provider struct {
	config *Config
	client openaisdk.Client
}

// New creates a new OpenAI provider using the official SDK
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	client := openaisdk.NewClient(options...)

	return &Provider{
		config: config,
		client: client,
	}
}

// Complete implements the llm.Client interface
func (p *Provider) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("completion request cannot be nil")
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openaisdk.SystemMessage(req.System))
	}
	messages = append(messages, openaisdk.UserMessage(req.User))

	params := openaisdk.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openaisdk.ChatModel(p.config.Model),
		Temperature: param.NewOpt(req.Temperature),
	}
	if p.config.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(p.config.MaxTokens)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
