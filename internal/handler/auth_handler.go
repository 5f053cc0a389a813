package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/middleware"
	"github.com/healthup/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type goalsRequest struct {
	Name                   string `json:"name"`
	FocusGoalMinutes       int    `json:"focus_goal_minutes"`
	LearningGoalLessons    int    `json:"learning_goal_lessons"`
	PreferredSessionLength int    `json:"preferred_session_length"`
}

// Register 创建账号并直接登录
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !bindJSON(c, &payload, "请填写邮箱和密码") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
	})
	if err != nil {
		respondServiceError(c, err, "注册失败")
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userPayload(*user)})
}

// Login 校验邮箱密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload, "请填写邮箱和密码") {
		return
	}

	user, err := a.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

func (a *API) saveSession(c *gin.Context, userID uint) bool {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return false
	}
	return true
}

// GetMe 返回当前用户资料
func (a *API) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := a.users.Get(userID)
	if err != nil {
		respondServiceError(c, err, "获取用户信息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// UpdateMe 更新姓名与目标，未填写的字段保持不变
func (a *API) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload goalsRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	user, err := a.users.UpdateGoals(userID, service.GoalsInput{
		Name:                   payload.Name,
		FocusGoalMinutes:       payload.FocusGoalMinutes,
		LearningGoalLessons:    payload.LearningGoalLessons,
		PreferredSessionLength: payload.PreferredSessionLength,
	})
	if err != nil {
		respondServiceError(c, err, "更新用户信息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// GetStats 返回用户统计：等级、最近会话、已获得奖励与下一个奖励
func (a *API) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := a.stats.UserStats(userID)
	if err != nil {
		respondServiceError(c, err, "获取统计数据失败")
		return
	}

	recent := make([]gin.H, 0, len(stats.RecentSessions))
	for _, session := range stats.RecentSessions {
		recent = append(recent, focusSessionPayload(session))
	}
	earned := make([]gin.H, 0, len(stats.EarnedRewards))
	for _, item := range stats.EarnedRewards {
		earned = append(earned, earnedRewardPayload(item))
	}

	var next interface{}
	progress := 100
	if stats.NextReward != nil {
		next = rewardPayload(stats.NextReward.Reward)
		progress = stats.NextReward.Progress
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                 userPayload(stats.User),
		"level":                stats.Level,
		"recent_sessions":      recent,
		"earned_rewards":       earned,
		"next_reward":          next,
		"next_reward_progress": progress,
	})
}

// ListRewards 返回完整奖励目录并标记是否已获得
func (a *API) ListRewards(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	catalog, err := a.rewards.Catalog(userID)
	if err != nil {
		respondServiceError(c, err, "获取奖励列表失败")
		return
	}

	items := make([]gin.H, 0, len(catalog))
	for _, status := range catalog {
		item := rewardPayload(status.Reward)
		item["earned"] = status.Earned
		item["earned_at"] = formatTimePtr(status.EarnedAt)
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"rewards": items})
}
