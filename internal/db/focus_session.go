package db

import (
	"time"

	"gorm.io/gorm"
)

const (
	SessionTypeFocus      = "focus"
	SessionTypeShortBreak = "short_break"
	SessionTypeLongBreak  = "long_break"
)

// FocusSession 记录一次番茄钟，start -> complete
// 只有 focus 类型会计入用户的专注时长与次数
type FocusSession struct {
	gorm.Model
	UserID                 uint   `gorm:"index;not null"`
	SessionType            string `gorm:"size:20;not null"`
	PlannedDurationMinutes int    `gorm:"not null"`
	ActualDurationMinutes  *int
	IsCompleted            bool `gorm:"not null;default:false"`
	StartedAt              time.Time
	CompletedAt            *time.Time
	MoodBefore             string
	MoodAfter              string
	FocusRating            *int
	Notes                  string
	AIEncouragement        string
}
