package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/service"
)

type startFocusRequest struct {
	SessionType     string `json:"session_type"`
	PlannedDuration int    `json:"planned_duration"`
	MoodBefore      string `json:"mood_before"`
}

type completeFocusRequest struct {
	ActualDuration int    `json:"actual_duration"`
	MoodAfter      string `json:"mood_after"`
	FocusRating    *int   `json:"focus_rating"`
	Notes          string `json:"notes"`
}

// StartFocusSession 开始一次专注或休息
func (a *API) StartFocusSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload startFocusRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	session, err := a.focus.Start(userID, service.StartFocusInput{
		SessionType:     payload.SessionType,
		PlannedDuration: payload.PlannedDuration,
		MoodBefore:      payload.MoodBefore,
	})
	if err != nil {
		respondServiceError(c, err, "创建会话失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": focusSessionPayload(*session)})
}

// CompleteFocusSession 完成会话并返回本次获得的奖励
func (a *API) CompleteFocusSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload completeFocusRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	result, err := a.focus.Complete(userID, sessionID, service.CompleteFocusInput{
		ActualDuration: payload.ActualDuration,
		MoodAfter:      payload.MoodAfter,
		FocusRating:    payload.FocusRating,
		Notes:          payload.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "完成会话失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":     focusSessionPayload(result.Session),
		"new_rewards": rewardsPayload(result.RewardsGranted),
	})
}

// ListFocusSessions 返回最近的会话
func (a *API) ListFocusSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := a.focus.ListRecent(userID, parseIntQuery(c, "limit", 0))
	if err != nil {
		respondServiceError(c, err, "获取会话列表失败")
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, focusSessionPayload(session))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}
