package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardEvaluator 在计数器变化后检查奖励目录并授予新达成的奖励。
// 每个奖励的“写入 UserReward + 增加经验”在同一个保存点内完成，
// 唯一索引 (user_id, reward_id) 保证同一奖励最多授予一次。
type RewardEvaluator struct {
	now func() time.Time
}

// NewRewardEvaluator 构造 RewardEvaluator。
func NewRewardEvaluator() *RewardEvaluator {
	return &RewardEvaluator{now: time.Now}
}

// Evaluate 在给定事务中执行一次评估，返回本次新授予的奖励。
// 计数器未变化时重复调用不会授予任何奖励。
func (e *RewardEvaluator) Evaluate(tx *gorm.DB, userID uint) ([]db.Reward, error) {
	var user db.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("load user counters", err)
	}

	var rewards []db.Reward
	if err := tx.
		Where("id NOT IN (?)", tx.Model(&db.UserReward{}).Select("reward_id").Where("user_id = ?", userID)).
		Order("condition_value ASC, id ASC").
		Find(&rewards).Error; err != nil {
		return nil, storeError("load unearned rewards", err)
	}

	granted := make([]db.Reward, 0)
	for _, reward := range rewards {
		counter, ok := user.CounterFor(reward.ConditionType)
		if !ok || counter < reward.ConditionValue {
			continue
		}

		ok, err := e.grant(tx, userID, reward)
		if err != nil {
			return nil, err
		}
		if ok {
			granted = append(granted, reward)
			rewardsGranted.WithLabelValues(reward.ConditionType).Inc()
		}
	}
	return granted, nil
}

func (e *RewardEvaluator) grant(tx *gorm.DB, userID uint, reward db.Reward) (bool, error) {
	granted := false
	err := tx.Transaction(func(sp *gorm.DB) error {
		record := db.UserReward{UserID: userID, RewardID: reward.ID, EarnedAt: e.now()}
		result := sp.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}},
			DoNothing: true,
		}).Create(&record)
		if result.Error != nil {
			return fmt.Errorf("insert user reward: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := creditXP(sp, userID, reward.PointsValue); err != nil {
			return err
		}
		granted = true
		return nil
	})
	if err != nil {
		return false, storeError(fmt.Sprintf("grant reward %d", reward.ID), err)
	}
	return granted, nil
}

// creditXP 以原子自增的方式增加经验值，负数或零不做任何修改。
func creditXP(tx *gorm.DB, userID uint, points int) error {
	if points <= 0 {
		return nil
	}
	if err := tx.Model(&db.User{}).Where("id = ?", userID).
		UpdateColumn("experience_points", gorm.Expr("experience_points + ?", points)).Error; err != nil {
		return fmt.Errorf("credit experience points: %w", err)
	}
	return nil
}

// NextReward 描述距离最近的一个未获得奖励。
type NextReward struct {
	Reward   db.Reward
	Current  int
	Progress int
}

// RewardStatus 是奖励目录中的一项及其获得状态。
type RewardStatus struct {
	Reward   db.Reward
	Earned   bool
	EarnedAt *time.Time
}

// RewardService 提供奖励目录与用户奖励的查询。
type RewardService struct {
	db *gorm.DB
}

// NewRewardService 构造 RewardService。
func NewRewardService(gdb *gorm.DB) *RewardService {
	return &RewardService{db: gdb}
}

// Earned 返回用户已获得的奖励，最新获得的在前。
func (s *RewardService) Earned(userID uint) ([]db.UserReward, error) {
	var earned []db.UserReward
	if err := s.db.Preload("Reward").
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&earned).Error; err != nil {
		return nil, storeError("list earned rewards", err)
	}
	return earned, nil
}

// Next 按 condition_value 升序找到第一个尚未满足的未获得奖励，全部达成时返回 nil。
func (s *RewardService) Next(user db.User) (*NextReward, error) {
	var rewards []db.Reward
	if err := s.db.
		Where("id NOT IN (?)", s.db.Model(&db.UserReward{}).Select("reward_id").Where("user_id = ?", user.ID)).
		Order("condition_value ASC, id ASC").
		Find(&rewards).Error; err != nil {
		return nil, storeError("list unearned rewards", err)
	}

	for _, reward := range rewards {
		current, ok := user.CounterFor(reward.ConditionType)
		if !ok || current >= reward.ConditionValue {
			continue
		}
		return &NextReward{
			Reward:   reward,
			Current:  current,
			Progress: progressPercent(float64(current), float64(reward.ConditionValue)),
		}, nil
	}
	return nil, nil
}

// Catalog 返回完整的奖励目录并标记用户是否已获得。
func (s *RewardService) Catalog(userID uint) ([]RewardStatus, error) {
	var rewards []db.Reward
	if err := s.db.Order("condition_type ASC, condition_value ASC").Find(&rewards).Error; err != nil {
		return nil, storeError("list rewards", err)
	}
	earned, err := s.Earned(userID)
	if err != nil {
		return nil, err
	}
	earnedAt := make(map[uint]time.Time, len(earned))
	for _, item := range earned {
		earnedAt[item.RewardID] = item.EarnedAt
	}

	result := make([]RewardStatus, 0, len(rewards))
	for _, reward := range rewards {
		status := RewardStatus{Reward: reward}
		if at, ok := earnedAt[reward.ID]; ok {
			at := at
			status.Earned = true
			status.EarnedAt = &at
		}
		result = append(result, status)
	}
	return result, nil
}

// progressPercent 返回 current/target 的整数百分比，封顶 100。
func progressPercent(current, target float64) int {
	if target <= 0 {
		return 100
	}
	pct := int(current * 100 / target)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
