package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	SessionSecret  string
	GinMode        string
	LogMode        string
	CORSOrigins    []string

	AIProvider      string
	AIModel         string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	DeepSeekAPIKey  string
	AnthropicAPIKey string
	GeminiAPIKey    string

	InsightRatePerMinute int
	MetricsEnabled       bool
	OtelEnabled          bool
	OtelEndpoint         string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 当前目录存在 .env 时会先加载，已存在的环境变量不会被覆盖。
func Load() AppConfig {
	_ = godotenv.Load()

	port := env("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(env("DATABASE_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabaseDriver: driver,
		DatabasePath:   env("DATABASE_PATH", "healthup.db"),
		DatabaseURL:    env("DATABASE_URL", ""),
		SessionSecret:  env("SESSION_SECRET", "healthup-dev-secret"),
		GinMode:        env("GIN_MODE", "release"),
		LogMode:        env("LOG_MODE", "production"),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		AIProvider:      strings.ToLower(env("AI_PROVIDER", "openai")),
		AIModel:         env("AI_MODEL", ""),
		OpenAIAPIKey:    env("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   env("OPENAI_BASE_URL", ""),
		DeepSeekAPIKey:  env("DEEPSEEK_API_KEY", ""),
		AnthropicAPIKey: env("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    env("GEMINI_API_KEY", ""),

		InsightRatePerMinute: envInt("INSIGHT_RATE_PER_MINUTE", 6),
		MetricsEnabled:       envBool("METRICS_ENABLED", true),
		OtelEnabled:          envBool("OTEL_ENABLED", false),
		OtelEndpoint:         env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// DatabaseDSN 根据驱动返回连接串。
func (c AppConfig) DatabaseDSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
