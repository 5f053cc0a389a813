package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/service"
)

type habitTargetRequest struct {
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
}

type habitLogRequest struct {
	HabitType  string  `json:"habit_type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Notes      string  `json:"notes"`
	LoggedDate string  `json:"logged_date"`
}

// ListHabitTargets 返回用户的习惯目标
func (a *API) ListHabitTargets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habits, err := a.habits.Targets(userID)
	if err != nil {
		respondServiceError(c, err, "获取习惯目标失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitTargetPayload(habit))
	}
	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// SetHabitTarget 设置某类习惯的每日目标
func (a *API) SetHabitTarget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload habitTargetRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	habit, err := a.habits.SetTarget(userID, c.Param("type"), service.HabitTargetInput{
		TargetValue: payload.TargetValue,
		Unit:        payload.Unit,
	})
	if err != nil {
		respondServiceError(c, err, "保存习惯目标失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habitTargetPayload(*habit)})
}

// LogHabit 记录一次习惯并返回受影响的挑战
func (a *API) LogHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload habitLogRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	result, err := a.habits.Log(userID, service.HabitLogInput{
		HabitType:  payload.HabitType,
		Value:      payload.Value,
		Unit:       payload.Unit,
		Notes:      payload.Notes,
		LoggedDate: payload.LoggedDate,
	})
	if err != nil {
		respondServiceError(c, err, "记录习惯失败")
		return
	}

	updates := make([]gin.H, 0, len(result.Challenges))
	for _, update := range result.Challenges {
		updates = append(updates, challengeUpdatePayload(update))
	}
	c.JSON(http.StatusCreated, gin.H{
		"log":        healthLogPayload(result.Log),
		"challenges": updates,
	})
}

// ListHabitLogs 返回今日与近七日的日志
func (a *API) ListHabitLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := a.habits.Summary(userID)
	if err != nil {
		respondServiceError(c, err, "获取习惯日志失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"today": healthLogsPayload(summary.Today),
		"week":  healthLogsPayload(summary.Week),
	})
}

// ListChallenges 返回进行中的挑战及当前用户的进度
func (a *API) ListChallenges(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	views, err := a.challenges.List(userID)
	if err != nil {
		respondServiceError(c, err, "获取挑战失败")
		return
	}

	items := make([]gin.H, 0, len(views))
	for _, view := range views {
		items = append(items, challengeViewPayload(view))
	}
	c.JSON(http.StatusOK, gin.H{"challenges": items})
}

// JoinChallenge 参加挑战，重复参加不会重置进度
func (a *API) JoinChallenge(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := a.challenges.Join(userID, challengeID); err != nil {
		respondServiceError(c, err, "参加挑战失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已参加挑战"})
}
