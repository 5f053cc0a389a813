package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeTracker 把一次习惯日志的数值累加到所有匹配的进行中挑战。
// 匹配依据挑战显式声明的 habit_type；daily/weekly/monthly 挑战按周期懒惰归零，
// milestone 挑战不归零。完成后当期数值冻结，奖励经验只发放一次。
type ChallengeTracker struct {
	now func() time.Time
}

// NewChallengeTracker 构造 ChallengeTracker。
func NewChallengeTracker() *ChallengeTracker {
	return &ChallengeTracker{now: time.Now}
}

// ChallengeUpdate 描述一次日志对某个挑战的影响。
type ChallengeUpdate struct {
	Challenge    db.WellnessChallenge
	CurrentValue float64
	IsCompleted  bool
	JustComplete bool
}

// Track 在给定事务中累加数值，at 为日志所属日期。
func (t *ChallengeTracker) Track(tx *gorm.DB, userID uint, habitType string, value float64, at time.Time) ([]ChallengeUpdate, error) {
	habitType = strings.ToLower(strings.TrimSpace(habitType))

	var challenges []db.WellnessChallenge
	if err := tx.Where("is_active = ? AND habit_type = ?", true, habitType).
		Order("id ASC").
		Find(&challenges).Error; err != nil {
		return nil, storeError("list matching challenges", err)
	}

	updates := make([]ChallengeUpdate, 0, len(challenges))
	for _, challenge := range challenges {
		if !challengeOpenAt(challenge, at) {
			continue
		}
		update, err := t.apply(tx, userID, challenge, value, at)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, nil
}

func (t *ChallengeTracker) apply(tx *gorm.DB, userID uint, challenge db.WellnessChallenge, value float64, at time.Time) (ChallengeUpdate, error) {
	period := PeriodStart(challenge.ChallengeType, at)

	progress, err := fetchOrCreateProgress(tx, userID, challenge.ID, period)
	if err != nil {
		return ChallengeUpdate{}, err
	}

	// 日志属于更早的周期时不影响当前周期
	if period.Before(progress.PeriodStart) {
		return ChallengeUpdate{Challenge: challenge, CurrentValue: progress.CurrentValue, IsCompleted: progress.IsCompleted}, nil
	}
	if period.After(progress.PeriodStart) {
		progress.CurrentValue = 0
		progress.IsCompleted = false
		progress.CompletedAt = nil
		progress.PeriodStart = period
	}

	update := ChallengeUpdate{Challenge: challenge}
	if progress.IsCompleted {
		update.CurrentValue = progress.CurrentValue
		update.IsCompleted = true
		return update, nil
	}

	progress.CurrentValue += value
	if progress.CurrentValue >= challenge.TargetValue {
		completedAt := t.now()
		progress.IsCompleted = true
		progress.CompletedAt = &completedAt
		update.JustComplete = true
	}

	if err := tx.Model(&db.UserChallengeProgress{}).Where("id = ?", progress.ID).Updates(map[string]interface{}{
		"current_value": progress.CurrentValue,
		"is_completed":  progress.IsCompleted,
		"completed_at":  progress.CompletedAt,
		"period_start":  progress.PeriodStart,
	}).Error; err != nil {
		return ChallengeUpdate{}, storeError("update challenge progress", err)
	}

	if update.JustComplete {
		if err := creditXP(tx, userID, challenge.PointsReward); err != nil {
			return ChallengeUpdate{}, storeError("credit challenge reward", err)
		}
		challengesCompleted.WithLabelValues(challenge.ChallengeType).Inc()
	}

	update.CurrentValue = progress.CurrentValue
	update.IsCompleted = progress.IsCompleted
	return update, nil
}

func fetchOrCreateProgress(tx *gorm.DB, userID, challengeID uint, period time.Time) (db.UserChallengeProgress, error) {
	record := db.UserChallengeProgress{UserID: userID, ChallengeID: challengeID, PeriodStart: period}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return db.UserChallengeProgress{}, storeError("create challenge progress", err)
	}

	var progress db.UserChallengeProgress
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&progress).Error; err != nil {
		return db.UserChallengeProgress{}, storeError("load challenge progress", err)
	}
	return progress, nil
}

func challengeOpenAt(challenge db.WellnessChallenge, at time.Time) bool {
	day := normalizeToDate(at)
	if challenge.StartDate != nil && day.Before(normalizeToDate(*challenge.StartDate)) {
		return false
	}
	if challenge.EndDate != nil && day.After(normalizeToDate(*challenge.EndDate)) {
		return false
	}
	return true
}

// PeriodStart 返回 at 所在统计周期的起点：日、周（周一）、月；milestone 固定为零值。
func PeriodStart(challengeType string, at time.Time) time.Time {
	day := normalizeToDate(at)
	switch challengeType {
	case db.ChallengeDaily:
		return day
	case db.ChallengeWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case db.ChallengeMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return time.Time{}
	}
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ChallengeView 是挑战及当前用户在当期的进度。
type ChallengeView struct {
	Challenge          db.WellnessChallenge
	Joined             bool
	CurrentValue       float64
	IsCompleted        bool
	CompletedAt        *time.Time
	ProgressPercentage int
}

// ChallengeService 提供挑战列表与参加操作。
type ChallengeService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewChallengeService 构造 ChallengeService。
func NewChallengeService(gdb *gorm.DB) *ChallengeService {
	return &ChallengeService{db: gdb, now: time.Now}
}

// List 返回所有进行中的挑战，已跨周期的进度按零展示。
func (s *ChallengeService) List(userID uint) ([]ChallengeView, error) {
	var challenges []db.WellnessChallenge
	if err := s.db.Where("is_active = ?", true).Order("challenge_type ASC, id ASC").Find(&challenges).Error; err != nil {
		return nil, storeError("list challenges", err)
	}

	var rows []db.UserChallengeProgress
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, storeError("list challenge progress", err)
	}
	byChallenge := make(map[uint]db.UserChallengeProgress, len(rows))
	for _, row := range rows {
		byChallenge[row.ChallengeID] = row
	}

	now := s.now()
	views := make([]ChallengeView, 0, len(challenges))
	for _, challenge := range challenges {
		view := ChallengeView{Challenge: challenge}
		if progress, ok := byChallenge[challenge.ID]; ok {
			view.Joined = true
			if !PeriodStart(challenge.ChallengeType, now).After(progress.PeriodStart) {
				view.CurrentValue = progress.CurrentValue
				view.IsCompleted = progress.IsCompleted
				view.CompletedAt = progress.CompletedAt
			}
		}
		view.ProgressPercentage = progressPercent(view.CurrentValue, challenge.TargetValue)
		views = append(views, view)
	}
	return views, nil
}

// Join 为用户创建空的进度记录，重复调用不会重置已有进度。
func (s *ChallengeService) Join(userID, challengeID uint) error {
	var challenge db.WellnessChallenge
	if err := s.db.Where("is_active = ?", true).First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return storeError("get challenge", err)
	}

	if _, err := fetchOrCreateProgress(s.db, userID, challenge.ID, PeriodStart(challenge.ChallengeType, s.now())); err != nil {
		return fmt.Errorf("join challenge: %w", err)
	}
	return nil
}
