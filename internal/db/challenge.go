package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChallengeDaily     = "daily"
	ChallengeWeekly    = "weekly"
	ChallengeMonthly   = "monthly"
	ChallengeMilestone = "milestone"
)

// WellnessChallenge 定义一个健康挑战
// HabitType 显式声明由哪类习惯日志驱动，为空时迁移阶段按 TargetUnit 回填
type WellnessChallenge struct {
	gorm.Model
	Title         string `gorm:"size:200;uniqueIndex;not null"`
	Description   string
	ChallengeType string  `gorm:"size:20;not null"`
	HabitType     string  `gorm:"size:20;index"`
	TargetValue   float64 `gorm:"not null"`
	TargetUnit    string  `gorm:"size:40"`
	PointsReward  int
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      bool `gorm:"index"`
}

// UserChallengeProgress 是 (user, challenge) 的累加器
// PeriodStart 标记当前统计周期，周期性挑战跨周期时归零
type UserChallengeProgress struct {
	gorm.Model
	UserID       uint              `gorm:"index:idx_user_challenge,unique;not null"`
	ChallengeID  uint              `gorm:"index:idx_user_challenge,unique;not null"`
	Challenge    WellnessChallenge `gorm:"constraint:OnDelete:CASCADE"`
	CurrentValue float64
	IsCompleted  bool
	CompletedAt  *time.Time
	PeriodStart  time.Time
}

// TableName 固定表名
func (UserChallengeProgress) TableName() string {
	return "user_challenge_progress"
}
