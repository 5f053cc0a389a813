package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// openAICompatible 通过 go-openai 调用 OpenAI 及兼容接口（DeepSeek）。
type openAICompatible struct {
	name   string
	client *openai.Client
	model  string
}

func newOpenAICompatible(name string, cfg Config, defaultModel, defaultBaseURL string) *openAICompatible {
	config := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := pick(cfg.BaseURL, defaultBaseURL); base != "" {
		config.BaseURL = strings.TrimRight(base, "/")
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &openAICompatible{
		name:   name,
		client: openai.NewClientWithConfig(config),
		model:  pick(cfg.Model, defaultModel),
	}
}

func (p *openAICompatible) Name() string    { return p.name }
func (p *openAICompatible) ModelID() string { return p.model }

func (p *openAICompatible) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.name, Err: ErrEmptyResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, &ProviderError{Provider: p.name, Err: ErrEmptyResponse}
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return &Response{
		Text:             text,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *openAICompatible) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: p.name, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: p.name, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: p.name, Err: err}
}
