package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningCategory 学习分类
type LearningCategory struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Description string
	Icon        string
	Color       string
}

// LearningLesson 微课内容，Content 为 markdown
// Tags 使用 JSON 数组存储
type LearningLesson struct {
	gorm.Model
	CategoryID        uint             `gorm:"index;not null"`
	Category          LearningCategory `gorm:"constraint:OnDelete:CASCADE"`
	Title             string           `gorm:"size:200;uniqueIndex;not null"`
	Content           string           `gorm:"type:text"`
	LessonType        string           `gorm:"size:20"`
	DifficultyLevel   string           `gorm:"size:20"`
	EstimatedReadTime int
	Tags              datatypes.JSON
	IsAIGenerated     bool
}

// UserLessonProgress 记录用户完成课程的情况，(user, lesson) 唯一
type UserLessonProgress struct {
	gorm.Model
	UserID         uint `gorm:"index:idx_user_lesson,unique;not null"`
	LessonID       uint `gorm:"index:idx_user_lesson,unique;not null"`
	IsCompleted    bool
	CompletionDate *time.Time
	Rating         *int
	Notes          string
}

// TableName 固定表名
func (UserLessonProgress) TableName() string {
	return "user_lesson_progress"
}
