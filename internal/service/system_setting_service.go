package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"github.com/healthup/internal/llm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemSettings 描述运行时可调整的 AI 配置。
type SystemSettings struct {
	AIProvider      string
	AIModel         string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AnthropicAPIKey string
	GeminiAPIKey    string
	InsightPrompt   string
}

// SystemSettingsInput 用于更新系统设置，API Key 留空表示保留原值。
type SystemSettingsInput struct {
	AIProvider      string
	AIModel         string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AnthropicAPIKey string
	GeminiAPIKey    string
	InsightPrompt   string
}

// ProviderFactory 根据配置构造补全平台客户端，测试中可替换。
type ProviderFactory func(ctx context.Context, cfg llm.Config) (llm.Provider, error)

// SystemSettingService 提供系统设置的读取与更新能力。
// 数据库中未设置的项回退到启动时注入的默认值（来自环境变量）。
type SystemSettingService struct {
	db          *gorm.DB
	defaults    SystemSettings
	baseURLs    map[string]string
	httpClient  *http.Client
	newProvider ProviderFactory
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{
		db:          gdb,
		defaults:    SystemSettings{AIProvider: llm.ProviderOpenAI},
		baseURLs:    map[string]string{},
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		newProvider: llm.New,
	}
}

var settingKeys = []string{
	db.SettingKeyAIProvider,
	db.SettingKeyAIModel,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
	db.SettingKeyAnthropicAPIKey,
	db.SettingKeyGeminiAPIKey,
	db.SettingKeyInsightPrompt,
}

// SetDefaults 设置数据库无记录时使用的默认值。
func (s *SystemSettingService) SetDefaults(defaults SystemSettings) {
	if llm.NormalizeProvider(defaults.AIProvider) == "" {
		defaults.AIProvider = llm.ProviderOpenAI
	}
	defaults.AIProvider = llm.NormalizeProvider(defaults.AIProvider)
	s.defaults = defaults
}

// SetBaseURL 覆盖指定平台的 API 地址，便于测试或自定义代理。
func (s *SystemSettingService) SetBaseURL(provider, base string) {
	if name := llm.NormalizeProvider(provider); name != "" {
		s.baseURLs[name] = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// SetProviderFactory 替换补全平台的构造函数，主要面向测试场景。
func (s *SystemSettingService) SetProviderFactory(factory ProviderFactory) {
	if factory == nil {
		s.newProvider = llm.New
		return
	}
	s.newProvider = factory
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := s.defaults

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, storeError("load system settings", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeyAIProvider:
			if provider := llm.NormalizeProvider(value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyAIModel:
			result.AIModel = value
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = value
		case db.SettingKeyAnthropicAPIKey:
			result.AnthropicAPIKey = value
		case db.SettingKeyGeminiAPIKey:
			result.GeminiAPIKey = value
		case db.SettingKeyInsightPrompt:
			result.InsightPrompt = record.Value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置并返回保存后的结果。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	provider := strings.TrimSpace(input.AIProvider)
	if provider != "" && llm.NormalizeProvider(provider) == "" {
		return SystemSettings{}, validationError("unsupported ai provider %q", input.AIProvider)
	}

	values := map[string]string{
		db.SettingKeyAIModel:       strings.TrimSpace(input.AIModel),
		db.SettingKeyInsightPrompt: strings.TrimSpace(input.InsightPrompt),
	}
	if provider != "" {
		values[db.SettingKeyAIProvider] = llm.NormalizeProvider(provider)
	}
	keys := map[string]string{
		db.SettingKeyOpenAIAPIKey:    input.OpenAIAPIKey,
		db.SettingKeyDeepSeekAPIKey:  input.DeepSeekAPIKey,
		db.SettingKeyAnthropicAPIKey: input.AnthropicAPIKey,
		db.SettingKeyGeminiAPIKey:    input.GeminiAPIKey,
	}
	for key, value := range keys {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			values[key] = trimmed
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, storeError("update system settings", err)
	}

	return s.GetSettings()
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// APIKeyFor 返回指定平台的 API Key。
func (settings SystemSettings) APIKeyFor(provider string) string {
	switch llm.NormalizeProvider(provider) {
	case llm.ProviderDeepSeek:
		return settings.DeepSeekAPIKey
	case llm.ProviderAnthropic:
		return settings.AnthropicAPIKey
	case llm.ProviderGemini:
		return settings.GeminiAPIKey
	default:
		return settings.OpenAIAPIKey
	}
}

// Provider 按当前设置构造补全平台客户端，未配置 API Key 时返回 ErrAIAPIKeyMissing。
func (s *SystemSettingService) Provider(ctx context.Context, settings SystemSettings) (llm.Provider, error) {
	name := llm.NormalizeProvider(settings.AIProvider)
	if name == "" {
		name = llm.ProviderOpenAI
	}
	key := strings.TrimSpace(settings.APIKeyFor(name))
	if key == "" {
		return nil, ErrAIAPIKeyMissing
	}

	provider, err := s.newProvider(ctx, llm.Config{
		Provider:   name,
		APIKey:     key,
		Model:      settings.AIModel,
		BaseURL:    s.baseURLs[name],
		HTTPClient: s.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return provider, nil
}

// TestAIConnection 用一次极短的补全验证平台与 API Key 是否可用。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	settings, err := s.GetSettings()
	if err != nil {
		return err
	}
	if name := llm.NormalizeProvider(provider); name != "" {
		settings.AIProvider = name
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		switch settings.AIProvider {
		case llm.ProviderDeepSeek:
			settings.DeepSeekAPIKey = key
		case llm.ProviderAnthropic:
			settings.AnthropicAPIKey = key
		case llm.ProviderGemini:
			settings.GeminiAPIKey = key
		default:
			settings.OpenAIAPIKey = key
		}
	}

	client, err := s.Provider(ctx, settings)
	if err != nil {
		return err
	}
	if _, err := client.Complete(ctx, llm.Request{Prompt: "ping", MaxTokens: 5}); err != nil {
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	return nil
}

// MaskSecret 仅保留末尾四位，用于在接口中回显 API Key。
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
