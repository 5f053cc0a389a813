package service

import (
	"context"
	"errors"
	"testing"

	"github.com/healthup/internal/db"
	"github.com/healthup/internal/llm"
)

type fakeProvider struct {
	name     string
	text     string
	err      error
	requests []llm.Request
}

func (p *fakeProvider) Name() string    { return p.name }
func (p *fakeProvider) ModelID() string { return "fake-model" }

func (p *fakeProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.text, Model: "fake-model"}, nil
}

func fakeFactory(provider *fakeProvider, seen *llm.Config) ProviderFactory {
	return func(_ context.Context, cfg llm.Config) (llm.Provider, error) {
		if seen != nil {
			*seen = cfg
		}
		if provider.name == "" {
			provider.name = cfg.Provider
		}
		return provider, nil
	}
}

func TestSystemSettingServiceDefaultsAndUpdate(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)
	svc.SetDefaults(SystemSettings{AIProvider: "", OpenAIAPIKey: "sk-env"})

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}
	if settings.AIProvider != llm.ProviderOpenAI || settings.OpenAIAPIKey != "sk-env" {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	updated, err := svc.UpdateSettings(SystemSettingsInput{
		AIProvider:     "DeepSeek",
		AIModel:        "deepseek-chat",
		DeepSeekAPIKey: "ds-key",
		InsightPrompt:  "Be brief.",
	})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if updated.AIProvider != llm.ProviderDeepSeek || updated.DeepSeekAPIKey != "ds-key" || updated.InsightPrompt != "Be brief." {
		t.Fatalf("unexpected updated settings: %+v", updated)
	}
	if updated.OpenAIAPIKey != "sk-env" {
		t.Fatalf("expected env key to remain as default, got %q", updated.OpenAIAPIKey)
	}

	// 空 API Key 不覆盖已保存的值
	kept, err := svc.UpdateSettings(SystemSettingsInput{AIProvider: llm.ProviderDeepSeek})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if kept.DeepSeekAPIKey != "ds-key" {
		t.Fatalf("expected key to be kept, got %q", kept.DeepSeekAPIKey)
	}

	if _, err := svc.UpdateSettings(SystemSettingsInput{AIProvider: "mistral"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSystemSettingServiceProvider(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)
	svc.SetBaseURL(llm.ProviderAnthropic, "http://proxy.local/")
	fake := &fakeProvider{text: "pong"}
	var seen llm.Config
	svc.SetProviderFactory(fakeFactory(fake, &seen))

	if _, err := svc.Provider(context.Background(), SystemSettings{AIProvider: llm.ProviderAnthropic}); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}

	provider, err := svc.Provider(context.Background(), SystemSettings{AIProvider: llm.ProviderAnthropic, AnthropicAPIKey: "ak"})
	if err != nil {
		t.Fatalf("Provider returned error: %v", err)
	}
	if provider.Name() != llm.ProviderAnthropic {
		t.Fatalf("unexpected provider: %s", provider.Name())
	}
	if seen.APIKey != "ak" || seen.BaseURL != "http://proxy.local" {
		t.Fatalf("unexpected config: %+v", seen)
	}
}

func TestSystemSettingServiceTestAIConnection(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSystemSettingService(db.DB)
	fake := &fakeProvider{text: "pong"}
	var seen llm.Config
	svc.SetProviderFactory(fakeFactory(fake, &seen))

	if err := svc.TestAIConnection(context.Background(), llm.ProviderGemini, "g-key"); err != nil {
		t.Fatalf("TestAIConnection returned error: %v", err)
	}
	if seen.Provider != llm.ProviderGemini || seen.APIKey != "g-key" {
		t.Fatalf("unexpected config: %+v", seen)
	}
	if len(fake.requests) != 1 || fake.requests[0].MaxTokens != 5 {
		t.Fatalf("unexpected ping request: %+v", fake.requests)
	}

	fake.err = errors.New("unauthorized")
	if err := svc.TestAIConnection(context.Background(), llm.ProviderGemini, "bad"); !errors.Is(err, ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if err := svc.TestAIConnection(context.Background(), llm.ProviderOpenAI, ""); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"abc":           "****",
		"sk-1234567890": "********7890",
	}
	for input, want := range tests {
		if got := MaskSecret(input); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", input, got, want)
		}
	}
}
