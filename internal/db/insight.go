package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InsightProductivityPattern   = "productivity_pattern"
	InsightLearningPreference    = "learning_preference"
	InsightMotivationTip         = "motivation_tip"
	InsightSessionRecommendation = "session_recommendation"
)

// AIInsight 保存一次模型生成的建议，Context 为请求时的用户上下文快照。
type AIInsight struct {
	gorm.Model
	UserID          uint   `gorm:"index;not null"`
	InsightType     string `gorm:"size:40;not null"`
	InsightData     string `gorm:"type:text"`
	Context         datatypes.JSON
	ConfidenceScore float64
	IsActive        bool `gorm:"index"`
	Provider        string
	ModelName       string `gorm:"column:model"`
}

// TableName 固定表名
func (AIInsight) TableName() string {
	return "ai_insights"
}
