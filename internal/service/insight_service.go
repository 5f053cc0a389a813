package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/healthup/internal/db"
	"github.com/healthup/internal/llm"
	"github.com/healthup/internal/logger"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultInsightSystemPrompt = "You are a helpful productivity coach. Provide concise, actionable, and encouraging advice. Keep responses under 100 words."
	insightMaxTokens           = 150
	insightTemperature         = 0.7
	insightConfidence          = 0.8
	latestInsightsLimit        = 3
)

var insightTypes = []string{
	db.InsightProductivityPattern,
	db.InsightLearningPreference,
	db.InsightMotivationTip,
	db.InsightSessionRecommendation,
}

// InsightService 调用补全平台生成建议并保存。
// 平台失败时直接返回错误，不重试，也不写入任何记录。
type InsightService struct {
	db        *gorm.DB
	settings  *SystemSettingService
	log       *logger.Logger
	sanitizer *bluemonday.Policy
}

// NewInsightService 构造 InsightService
func NewInsightService(gdb *gorm.DB, settings *SystemSettingService, log *logger.Logger) *InsightService {
	if settings == nil {
		settings = NewSystemSettingService(gdb)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InsightService{
		db:        gdb,
		settings:  settings,
		log:       log,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Latest 返回用户最近的有效建议
func (s *InsightService) Latest(userID uint) ([]db.AIInsight, error) {
	var insights []db.AIInsight
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		Limit(latestInsightsLimit).
		Find(&insights).Error; err != nil {
		return nil, storeError("list insights", err)
	}
	return insights, nil
}

// Generate 根据建议类型与上下文生成一条建议并保存
func (s *InsightService) Generate(ctx context.Context, userID uint, insightType string, userContext map[string]interface{}) (*db.AIInsight, error) {
	insightType = strings.ToLower(strings.TrimSpace(insightType))
	if !isInsightType(insightType) {
		return nil, validationError("unsupported insight type %q", insightType)
	}
	if userContext == nil {
		userContext = map[string]interface{}{}
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user", err)
	}

	contextJSON, err := json.Marshal(userContext)
	if err != nil {
		return nil, validationError("user_context must be a JSON object")
	}
	prompt := BuildInsightPrompt(insightType, string(contextJSON), user)
	logAIExchange(s.log, "INSIGHT", "prompt", prompt)

	settings, err := s.settings.GetSettings()
	if err != nil {
		return nil, err
	}
	systemPrompt := strings.TrimSpace(settings.InsightPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultInsightSystemPrompt
	}

	provider, err := s.settings.Provider(ctx, settings)
	if err != nil {
		insightsGenerated.WithLabelValues("unavailable").Inc()
		return nil, err
	}

	resp, err := provider.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   insightMaxTokens,
		Temperature: insightTemperature,
	})
	if err != nil {
		insightsGenerated.WithLabelValues("failed").Inc()
		s.log.Warn("insight generation failed", "provider", provider.Name(), "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	logAIExchange(s.log, "INSIGHT", "response", resp.Text)

	text := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(resp.Text)))
	if text == "" {
		insightsGenerated.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: empty insight", ErrExternalService)
	}

	insight := db.AIInsight{
		UserID:          userID,
		InsightType:     insightType,
		InsightData:     text,
		Context:         datatypes.JSON(contextJSON),
		ConfidenceScore: insightConfidence,
		IsActive:        true,
		Provider:        provider.Name(),
		ModelName:       resp.Model,
	}
	if err := s.db.Create(&insight).Error; err != nil {
		return nil, storeError("save insight", err)
	}
	insightsGenerated.WithLabelValues("ok").Inc()
	return &insight, nil
}

// BuildInsightPrompt 按建议类型构造确定性的提示词
func BuildInsightPrompt(insightType, contextJSON string, user db.User) string {
	switch insightType {
	case db.InsightSessionRecommendation:
		return fmt.Sprintf("Based on this user's productivity data: %s, provide a personalized recommendation for their next focus session. Keep it motivational and specific.", contextJSON)
	case db.InsightMotivationTip:
		return fmt.Sprintf("Create a motivational tip for a user who has completed %d focus sessions and %d learning lessons. Make it personal and encouraging.", user.TotalSessionsCompleted, user.TotalLessonsCompleted)
	default:
		return fmt.Sprintf("Generate a helpful productivity insight for a user with this context: %s", contextJSON)
	}
}

func isInsightType(value string) bool {
	for _, candidate := range insightTypes {
		if value == candidate {
			return true
		}
	}
	return false
}
