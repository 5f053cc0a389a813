package db

import (
	"time"

	"gorm.io/gorm"
)

// StudyMaterial 仅保存资料元数据，文件存储不在本服务内
type StudyMaterial struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	FilePath    string
	FileSize    int64
	MimeType    string
	TotalPages  int
	IsProcessed bool
}

// StudySession 针对某份资料的阅读计划
type StudySession struct {
	gorm.Model
	UserID                 uint `gorm:"index;not null"`
	MaterialID             uint `gorm:"index;not null"`
	SessionName            string
	StartPage              int
	EndPage                *int
	PlannedDurationMinutes int
	ActualDurationMinutes  *int
	IsCompleted            bool
	ComprehensionRating    *int
	StartedAt              *time.Time
	CompletedAt            *time.Time
}
