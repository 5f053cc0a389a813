package service

import (
	"errors"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxSessionMinutes    = 180
	defaultSessionsLimit = 10
	maxSessionsLimit     = 100
)

// FocusService 负责番茄钟会话的开始、完成与查询。
// 完成 focus 类型会话时累加专注时长与次数、更新连续天数并评估奖励，全部在同一事务中完成。
type FocusService struct {
	db      *gorm.DB
	rewards *RewardEvaluator
	now     func() time.Time
}

// StartFocusInput 定义开始会话时的参数
type StartFocusInput struct {
	SessionType     string
	PlannedDuration int
	MoodBefore      string
}

// CompleteFocusInput 定义完成会话时的参数，可选字段为 nil 表示未填写
type CompleteFocusInput struct {
	ActualDuration int
	MoodAfter      string
	FocusRating    *int
	Notes          string
}

// FocusCompletion 返回更新后的会话以及本次新获得的奖励。
type FocusCompletion struct {
	Session        db.FocusSession
	RewardsGranted []db.Reward
}

// NewFocusService 构造 FocusService
func NewFocusService(gdb *gorm.DB, rewards *RewardEvaluator) *FocusService {
	if rewards == nil {
		rewards = NewRewardEvaluator()
	}
	return &FocusService{db: gdb, rewards: rewards, now: time.Now}
}

// Start 新建一条未完成的会话
func (s *FocusService) Start(userID uint, input StartFocusInput) (*db.FocusSession, error) {
	sessionType := normalizeSessionType(input.SessionType)
	if sessionType == "" {
		return nil, validationError("unsupported session type %q", input.SessionType)
	}
	if input.PlannedDuration < 1 || input.PlannedDuration > maxSessionMinutes {
		return nil, validationError("planned duration must be between 1 and %d minutes", maxSessionMinutes)
	}

	session := db.FocusSession{
		UserID:                 userID,
		SessionType:            sessionType,
		PlannedDurationMinutes: input.PlannedDuration,
		StartedAt:              s.now(),
		MoodBefore:             strings.TrimSpace(input.MoodBefore),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, storeError("create focus session", err)
	}
	return &session, nil
}

// Complete 完成会话。只有会话所有者可以完成，重复完成返回 ErrSessionCompleted。
func (s *FocusService) Complete(userID, sessionID uint, input CompleteFocusInput) (*FocusCompletion, error) {
	if input.ActualDuration < 0 || input.ActualDuration > maxSessionMinutes {
		return nil, validationError("actual duration must be between 0 and %d minutes", maxSessionMinutes)
	}
	if err := validateRating("focus rating", input.FocusRating, 1, 5); err != nil {
		return nil, err
	}

	result := &FocusCompletion{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session db.FocusSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", sessionID, userID).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.IsCompleted {
			return ErrSessionCompleted
		}

		now := s.now()
		actual := input.ActualDuration
		session.ActualDurationMinutes = &actual
		session.IsCompleted = true
		session.CompletedAt = &now
		session.MoodAfter = strings.TrimSpace(input.MoodAfter)
		session.FocusRating = input.FocusRating
		session.Notes = strings.TrimSpace(input.Notes)

		// 条件更新防止并发请求重复完成
		res := tx.Model(&db.FocusSession{}).
			Where("id = ? AND is_completed = ?", session.ID, false).
			Updates(map[string]interface{}{
				"actual_duration_minutes": actual,
				"is_completed":            true,
				"completed_at":            now,
				"mood_after":              session.MoodAfter,
				"focus_rating":            session.FocusRating,
				"notes":                   session.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionCompleted
		}

		if session.SessionType == db.SessionTypeFocus {
			if err := s.accrueFocus(tx, userID, actual, now); err != nil {
				return err
			}
			granted, err := s.rewards.Evaluate(tx, userID)
			if err != nil {
				return err
			}
			result.RewardsGranted = granted
		}

		result.Session = session
		return nil
	})
	if err != nil {
		return nil, storeError("complete focus session", err)
	}
	return result, nil
}

func (s *FocusService) accrueFocus(tx *gorm.DB, userID uint, minutes int, now time.Time) error {
	if err := tx.Model(&db.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
		"total_focus_minutes":      gorm.Expr("total_focus_minutes + ?", minutes),
		"total_sessions_completed": gorm.Expr("total_sessions_completed + ?", 1),
	}).Error; err != nil {
		return err
	}

	var user db.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	current, longest := nextStreak(user.CurrentStreak, user.LongestStreak, user.LastFocusDate, now)
	today := normalizeToDate(now)
	return tx.Model(&db.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
		"current_streak":  current,
		"longest_streak":  longest,
		"last_focus_date": today,
	}).Error
}

// nextStreak 计算完成一次专注后的连续天数：昨天专注过则 +1，今天已计入则不变，否则从 1 开始。
func nextStreak(current, longest int, last *time.Time, now time.Time) (int, int) {
	today := normalizeToDate(now)
	switch {
	case last == nil:
		current = 1
	case normalizeToDate(last.In(now.Location())).Equal(today):
		if current < 1 {
			current = 1
		}
	case normalizeToDate(last.In(now.Location())).Equal(today.AddDate(0, 0, -1)):
		current++
	default:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// ListRecent 返回最近的会话，limit 超出范围时使用默认值
func (s *FocusService) ListRecent(userID uint, limit int) ([]db.FocusSession, error) {
	if limit <= 0 || limit > maxSessionsLimit {
		limit = defaultSessionsLimit
	}
	var sessions []db.FocusSession
	if err := s.db.Where("user_id = ?", userID).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, storeError("list focus sessions", err)
	}
	return sessions, nil
}

func normalizeSessionType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", db.SessionTypeFocus:
		return db.SessionTypeFocus
	case db.SessionTypeShortBreak:
		return db.SessionTypeShortBreak
	case db.SessionTypeLongBreak:
		return db.SessionTypeLongBreak
	default:
		return ""
	}
}

func validateRating(field string, value *int, min, max int) error {
	if value == nil {
		return nil
	}
	if *value < min || *value > max {
		return validationError("%s must be between %d and %d", field, min, max)
	}
	return nil
}
