package service

import (
	"errors"
	"strings"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
)

const (
	// MindfulnessXPPerMinute 是正念练习每分钟奖励的经验值
	MindfulnessXPPerMinute = 2

	maxMindfulnessMinutes = 120
)

// MindfulnessService 提供正念练习目录与练习完成记录。
// 完成练习只增加经验值，不影响奖励计数器。
type MindfulnessService struct {
	db *gorm.DB
}

// CompleteMindfulnessInput 定义完成练习时的参数，情绪与压力取值 1..10
type CompleteMindfulnessInput struct {
	ExerciseID        uint
	DurationMinutes   int
	MoodBefore        int
	MoodAfter         int
	StressLevelBefore int
	StressLevelAfter  int
	Notes             string
}

// NewMindfulnessService 构造 MindfulnessService
func NewMindfulnessService(gdb *gorm.DB) *MindfulnessService {
	return &MindfulnessService{db: gdb}
}

// Exercises 按难度与时长排序返回练习目录
func (s *MindfulnessService) Exercises() ([]db.MindfulnessExercise, error) {
	var exercises []db.MindfulnessExercise
	if err := s.db.Order("difficulty_level ASC, duration_minutes ASC").Find(&exercises).Error; err != nil {
		return nil, storeError("list mindfulness exercises", err)
	}
	return exercises, nil
}

// Complete 记录一次练习并增加 duration*2 的经验值
func (s *MindfulnessService) Complete(userID uint, input CompleteMindfulnessInput) (*db.MindfulnessSession, error) {
	if err := validateMindfulnessInput(input); err != nil {
		return nil, err
	}

	session := db.MindfulnessSession{
		UserID:            userID,
		ExerciseID:        input.ExerciseID,
		DurationMinutes:   input.DurationMinutes,
		MoodBefore:        input.MoodBefore,
		MoodAfter:         input.MoodAfter,
		StressLevelBefore: input.StressLevelBefore,
		StressLevelAfter:  input.StressLevelAfter,
		Notes:             strings.TrimSpace(input.Notes),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var exercise db.MindfulnessExercise
		if err := tx.Select("id").First(&exercise, input.ExerciseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExerciseNotFound
			}
			return err
		}

		var user db.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return creditXP(tx, userID, input.DurationMinutes*MindfulnessXPPerMinute)
	})
	if err != nil {
		return nil, storeError("complete mindfulness", err)
	}
	return &session, nil
}

// Recent 返回用户最近的练习记录
func (s *MindfulnessService) Recent(userID uint, limit int) ([]db.MindfulnessSession, error) {
	if limit <= 0 || limit > maxSessionsLimit {
		limit = defaultSessionsLimit
	}
	var sessions []db.MindfulnessSession
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, storeError("list mindfulness sessions", err)
	}
	return sessions, nil
}

func validateMindfulnessInput(input CompleteMindfulnessInput) error {
	if input.ExerciseID == 0 {
		return validationError("exercise_id is required")
	}
	if input.DurationMinutes < 1 || input.DurationMinutes > maxMindfulnessMinutes {
		return validationError("duration must be between 1 and %d minutes", maxMindfulnessMinutes)
	}
	scales := []struct {
		name  string
		value int
	}{
		{"mood_before", input.MoodBefore},
		{"mood_after", input.MoodAfter},
		{"stress_before", input.StressLevelBefore},
		{"stress_after", input.StressLevelAfter},
	}
	for _, scale := range scales {
		if scale.value < 1 || scale.value > 10 {
			return validationError("%s must be between 1 and 10", scale.name)
		}
	}
	return nil
}
