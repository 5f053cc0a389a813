package service

import (
	"errors"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const logDateLayout = "2006-01-02"

// HabitService 负责用户的习惯目标与习惯日志
// 日志只追加；写入日志时在同一事务中驱动挑战进度
type HabitService struct {
	db       *gorm.DB
	tracker  *ChallengeTracker
	now      func() time.Time
	location *time.Location
}

// HabitTargetInput 定义设置习惯目标时的参数
type HabitTargetInput struct {
	TargetValue float64
	Unit        string
}

// HabitLogInput 定义记录一次习惯时的参数
// LoggedDate 为 YYYY-MM-DD，留空表示今天
type HabitLogInput struct {
	HabitType  string
	Value      float64
	Unit       string
	Notes      string
	LoggedDate string
}

// HabitLogResult 返回新写入的日志及其驱动的挑战变化
type HabitLogResult struct {
	Log        db.HealthLog
	Challenges []ChallengeUpdate
}

// HabitLogSummary 汇总今日与近七日的日志
type HabitLogSummary struct {
	Today []db.HealthLog
	Week  []db.HealthLog
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB, tracker *ChallengeTracker) *HabitService {
	if tracker == nil {
		tracker = NewChallengeTracker()
	}
	return &HabitService{db: gdb, tracker: tracker, now: time.Now, location: time.Local}
}

// Targets 返回用户设置的全部习惯目标
func (s *HabitService) Targets(userID uint) ([]db.HealthHabit, error) {
	var habits []db.HealthHabit
	if err := s.db.Where("user_id = ?", userID).Order("habit_type ASC").Find(&habits).Error; err != nil {
		return nil, storeError("list habit targets", err)
	}
	return habits, nil
}

// SetTarget 幂等设置习惯目标：存在则更新目标值与单位，否则创建
func (s *HabitService) SetTarget(userID uint, habitType string, input HabitTargetInput) (*db.HealthHabit, error) {
	habitType = normalizeHabitType(habitType)
	if habitType == "" {
		return nil, validationError("unsupported habit type")
	}
	if input.TargetValue <= 0 {
		return nil, validationError("target value must be positive")
	}

	record := db.HealthHabit{
		UserID:      userID,
		HabitType:   habitType,
		TargetValue: input.TargetValue,
		Unit:        strings.TrimSpace(input.Unit),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "habit_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_value", "unit", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, storeError("upsert habit target", err)
	}

	if err := s.db.Where("user_id = ? AND habit_type = ?", userID, habitType).First(&record).Error; err != nil {
		return nil, storeError("reload habit target", err)
	}
	return &record, nil
}

// Log 写入一条习惯日志并把数值累加到匹配的挑战
func (s *HabitService) Log(userID uint, input HabitLogInput) (*HabitLogResult, error) {
	habitType := normalizeHabitType(input.HabitType)
	if habitType == "" {
		return nil, validationError("unsupported habit type %q", input.HabitType)
	}
	if input.Value < 0 {
		return nil, validationError("value must not be negative")
	}

	now := s.now().In(s.location)
	loggedDate := normalizeToDate(now)
	if raw := strings.TrimSpace(input.LoggedDate); raw != "" {
		parsed, err := time.ParseInLocation(logDateLayout, raw, s.location)
		if err != nil {
			return nil, validationError("logged_date must use YYYY-MM-DD")
		}
		// 未来日期会把挑战进度推进到尚未开始的周期
		if parsed.After(loggedDate) {
			return nil, validationError("logged_date must not be in the future")
		}
		loggedDate = parsed
	}

	result := &HabitLogResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.Select("id").Where("id = ?", userID).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		record := db.HealthLog{
			UserID:     userID,
			HabitType:  habitType,
			Value:      input.Value,
			Unit:       strings.TrimSpace(input.Unit),
			Notes:      strings.TrimSpace(input.Notes),
			LoggedDate: loggedDate,
			LoggedAt:   now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		result.Log = record

		updates, err := s.tracker.Track(tx, userID, habitType, input.Value, loggedDate)
		if err != nil {
			return err
		}
		result.Challenges = updates
		return nil
	})
	if err != nil {
		return nil, storeError("log habit", err)
	}
	return result, nil
}

// Summary 返回今天与最近七天（含今天）的日志，按记录时间倒序
func (s *HabitService) Summary(userID uint) (*HabitLogSummary, error) {
	today := normalizeToDate(s.now().In(s.location))
	weekStart := today.AddDate(0, 0, -6)

	var week []db.HealthLog
	if err := s.db.Where("user_id = ? AND logged_date >= ? AND logged_date <= ?", userID, weekStart, today).
		Order("logged_date DESC, logged_at DESC, id DESC").
		Find(&week).Error; err != nil {
		return nil, storeError("list week habit logs", err)
	}

	summary := &HabitLogSummary{Today: make([]db.HealthLog, 0), Week: week}
	for _, entry := range week {
		if normalizeToDate(entry.LoggedDate.In(s.location)).Equal(today) {
			summary.Today = append(summary.Today, entry)
		}
	}
	return summary, nil
}

func normalizeHabitType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, habit := range db.HabitTypes {
		if value == habit {
			return habit
		}
	}
	return ""
}
