package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/service"
)

type completeMindfulnessRequest struct {
	ExerciseID        uint   `json:"exercise_id"`
	DurationMinutes   int    `json:"duration_minutes"`
	MoodBefore        int    `json:"mood_before"`
	MoodAfter         int    `json:"mood_after"`
	StressLevelBefore int    `json:"stress_level_before"`
	StressLevelAfter  int    `json:"stress_level_after"`
	Notes             string `json:"notes"`
}

// ListExercises 返回正念练习目录
func (a *API) ListExercises(c *gin.Context) {
	exercises, err := a.mindfulness.Exercises()
	if err != nil {
		respondServiceError(c, err, "获取练习失败")
		return
	}

	items := make([]gin.H, 0, len(exercises))
	for _, exercise := range exercises {
		items = append(items, exercisePayload(exercise))
	}
	c.JSON(http.StatusOK, gin.H{"exercises": items})
}

// CompleteMindfulness 记录一次正念练习
func (a *API) CompleteMindfulness(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload completeMindfulnessRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	session, err := a.mindfulness.Complete(userID, service.CompleteMindfulnessInput{
		ExerciseID:        payload.ExerciseID,
		DurationMinutes:   payload.DurationMinutes,
		MoodBefore:        payload.MoodBefore,
		MoodAfter:         payload.MoodAfter,
		StressLevelBefore: payload.StressLevelBefore,
		StressLevelAfter:  payload.StressLevelAfter,
		Notes:             payload.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "记录练习失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":   mindfulnessSessionPayload(*session),
		"xp_earned": session.DurationMinutes * service.MindfulnessXPPerMinute,
	})
}

// ListMindfulnessSessions 返回最近的练习记录
func (a *API) ListMindfulnessSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := a.mindfulness.Recent(userID, parseIntQuery(c, "limit", 0))
	if err != nil {
		respondServiceError(c, err, "获取练习记录失败")
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, mindfulnessSessionPayload(session))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}
