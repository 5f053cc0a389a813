package db

import "gorm.io/gorm"

// SystemSetting 存储可在运行时调整的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyAIProvider 表示当前使用的 AI 平台。
	SettingKeyAIProvider = "ai_provider"
	// SettingKeyAIModel 表示覆盖默认模型的名称。
	SettingKeyAIModel = "ai_model"
	// SettingKeyOpenAIAPIKey 表示 OpenAI API Key。
	SettingKeyOpenAIAPIKey = "openai_api_key"
	// SettingKeyDeepSeekAPIKey 表示 DeepSeek API Key。
	SettingKeyDeepSeekAPIKey = "deepseek_api_key"
	// SettingKeyAnthropicAPIKey 表示 Anthropic API Key。
	SettingKeyAnthropicAPIKey = "anthropic_api_key"
	// SettingKeyGeminiAPIKey 表示 Gemini API Key。
	SettingKeyGeminiAPIKey = "gemini_api_key"
	// SettingKeyInsightPrompt 表示生成建议时使用的系统提示词。
	SettingKeyInsightPrompt = "ai_insight_prompt"
)
