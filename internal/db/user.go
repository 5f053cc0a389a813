package db

import (
	"time"

	"gorm.io/gorm"
)

// XPPerLevel 表示每升一级所需的经验值。
const XPPerLevel = 1000

// User 定义了用户模型
// 累计计数器只通过原子自增语句修改；等级不落库，由经验值在读取时推导
type User struct {
	gorm.Model
	Email                  string `gorm:"size:255;uniqueIndex;not null"`
	Name                   string
	AvatarURL              string
	PasswordHash           string `gorm:"not null"`
	FocusGoalMinutes       int
	LearningGoalLessons    int
	PreferredSessionLength int
	TotalFocusMinutes      int `gorm:"not null;default:0"`
	TotalSessionsCompleted int `gorm:"not null;default:0"`
	TotalLessonsCompleted  int `gorm:"not null;default:0"`
	CurrentStreak          int `gorm:"not null;default:0"`
	LongestStreak          int `gorm:"not null;default:0"`
	LastFocusDate          *time.Time
	ExperiencePoints       int `gorm:"not null;default:0"`
}

// Level 返回由经验值推导出的等级。
func (u User) Level() int {
	return LevelForXP(u.ExperiencePoints)
}

// LevelForXP 计算 floor(xp/1000)+1，负数经验值按 0 处理。
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}
