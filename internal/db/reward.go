package db

import (
	"time"

	"gorm.io/gorm"
)

// 奖励解锁条件所引用的用户计数器。
const (
	ConditionSessionsCompleted = "sessions_completed"
	ConditionLessonsCompleted  = "lessons_completed"
	ConditionTotalMinutes      = "total_minutes"
	ConditionStreakDays        = "streak_days"
)

// Reward 是成就目录中的一项，种子写入后不再修改。
type Reward struct {
	gorm.Model
	Name           string `gorm:"size:100;uniqueIndex;not null"`
	Description    string
	RewardType     string `gorm:"size:20"`
	ConditionType  string `gorm:"size:40;index;not null"`
	ConditionValue int    `gorm:"not null"`
	PointsValue    int    `gorm:"not null;default:0"`
	Icon           string
	Color          string
	Rarity         string `gorm:"size:20"`
}

// UserReward 记录用户获得的奖励，(user, reward) 唯一索引保证最多授予一次。
type UserReward struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index:idx_user_reward,unique;not null"`
	RewardID uint   `gorm:"index:idx_user_reward,unique;not null"`
	Reward   Reward `gorm:"constraint:OnDelete:CASCADE"`
	EarnedAt time.Time
}

// CounterFor 返回奖励条件对应的计数器当前值，未知条件返回 false。
func (u User) CounterFor(conditionType string) (int, bool) {
	switch conditionType {
	case ConditionSessionsCompleted:
		return u.TotalSessionsCompleted, true
	case ConditionLessonsCompleted:
		return u.TotalLessonsCompleted, true
	case ConditionTotalMinutes:
		return u.TotalFocusMinutes, true
	case ConditionStreakDays:
		return u.CurrentStreak, true
	default:
		return 0, false
	}
}
