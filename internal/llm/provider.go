// Package llm 封装文本补全服务，对上层只暴露 generate(system, prompt, maxTokens, temperature)。
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// 支持的补全平台。
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// SupportedProviders 按展示顺序列出全部平台。
var SupportedProviders = []string{ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini}

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultDeepSeekModel  = "deepseek-chat"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultGeminiModel    = "gemini-2.0-flash"

	deepSeekBaseURL = "https://api.deepseek.com/v1"
)

// Provider 是一次性补全调用的抽象。
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	// Name 返回平台名称，例如 openai
	Name() string
	// ModelID 返回实际使用的模型
	ModelID() string
}

// Request 描述一次补全请求
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response 是补全结果
type Response struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Config 描述构造 Provider 所需的参数，Model 与 BaseURL 留空时使用平台默认值。
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// ErrMissingAPIKey 表示所选平台未配置 API Key
var ErrMissingAPIKey = errors.New("llm api key is required")

// ErrEmptyResponse 表示平台返回了空结果
var ErrEmptyResponse = errors.New("llm returned empty response")

// ProviderError 包装平台返回的错误，StatusCode 为 0 表示网络层失败。
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NormalizeProvider 返回规范化的平台名，未知平台返回空字符串。
func NormalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, candidate := range SupportedProviders {
		if name == candidate {
			return candidate
		}
	}
	return ""
}

// New 按配置构造 Provider。
func New(ctx context.Context, cfg Config) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	switch NormalizeProvider(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAICompatible(ProviderOpenAI, cfg, defaultOpenAIModel, ""), nil
	case ProviderDeepSeek:
		return newOpenAICompatible(ProviderDeepSeek, cfg, defaultDeepSeekModel, deepSeekBaseURL), nil
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	case ProviderGemini:
		return newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

func pick(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
