package service

import (
	"github.com/healthup/internal/db"
	"gorm.io/gorm"
)

const statsRecentSessions = 10

// UserStats 汇总用户统计页所需的数据
type UserStats struct {
	User           db.User
	Level          int
	RecentSessions []db.FocusSession
	EarnedRewards  []db.UserReward
	NextReward     *NextReward
}

// StatsService 组合用户、会话与奖励数据
type StatsService struct {
	users    *UserService
	sessions *FocusService
	rewards  *RewardService
}

// NewStatsService 构造 StatsService
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{
		users:    NewUserService(gdb),
		sessions: NewFocusService(gdb, nil),
		rewards:  NewRewardService(gdb),
	}
}

// UserStats 返回用户、最近 10 次会话、已获得奖励与下一个奖励的进度
func (s *StatsService) UserStats(userID uint) (*UserStats, error) {
	user, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListRecent(userID, statsRecentSessions)
	if err != nil {
		return nil, err
	}

	earned, err := s.rewards.Earned(userID)
	if err != nil {
		return nil, err
	}

	next, err := s.rewards.Next(*user)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		User:           *user,
		Level:          user.Level(),
		RecentSessions: sessions,
		EarnedRewards:  earned,
		NextReward:     next,
	}, nil
}
