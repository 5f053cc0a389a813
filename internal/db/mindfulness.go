package db

import "gorm.io/gorm"

// MindfulnessExercise 正念练习目录
type MindfulnessExercise struct {
	gorm.Model
	Title           string `gorm:"size:200;uniqueIndex;not null"`
	Description     string
	ExerciseType    string `gorm:"size:20"`
	DurationMinutes int
	DifficultyLevel string `gorm:"size:20"`
	AudioURL        string
	Instructions    string `gorm:"type:text"`
}

// MindfulnessSession 记录一次完成的练习及前后情绪、压力
type MindfulnessSession struct {
	gorm.Model
	UserID            uint `gorm:"index;not null"`
	ExerciseID        uint `gorm:"index"`
	DurationMinutes   int
	MoodBefore        int
	MoodAfter         int
	StressLevelBefore int
	StressLevelAfter  int
	Notes             string
}
