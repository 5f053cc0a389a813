package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/db"
	"github.com/healthup/internal/service"
)

type completeLessonRequest struct {
	Rating *int   `json:"rating"`
	Notes  string `json:"notes"`
}

// ListCategories 返回学习分类
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.learning.Categories()
	if err != nil {
		respondServiceError(c, err, "获取分类失败")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryPayload(category))
	}
	c.JSON(http.StatusOK, gin.H{"categories": items})
}

// ListLessons 返回课程列表，支持 category_id 与 limit
func (a *API) ListLessons(c *gin.Context) {
	filter := service.LessonFilter{Limit: parseIntQuery(c, "limit", 0)}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = uint(id)
	}

	lessons, err := a.learning.Lessons(filter)
	if err != nil {
		respondServiceError(c, err, "获取课程失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessonsPayload(lessons)})
}

// GetLesson 返回单节课程
func (a *API) GetLesson(c *gin.Context) {
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}

	lesson, err := a.learning.Get(lessonID)
	if err != nil {
		respondServiceError(c, err, "获取课程失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lessonPayload(*lesson)})
}

// PersonalizedLessons 推荐最多 5 节尚未完成的课程
func (a *API) PersonalizedLessons(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	lessons, err := a.learning.Personalized(userID)
	if err != nil {
		respondServiceError(c, err, "获取推荐课程失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessonsPayload(lessons)})
}

// CompleteLesson 记录课程完成
func (a *API) CompleteLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload completeLessonRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	result, err := a.learning.Complete(userID, lessonID, service.CompleteLessonInput{
		Rating: payload.Rating,
		Notes:  payload.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "记录课程完成失败")
		return
	}

	xp := 0
	if result.FirstCompletion {
		xp = service.LessonXP
	}
	c.JSON(http.StatusOK, gin.H{
		"progress":         lessonProgressPayload(result.Progress),
		"first_completion": result.FirstCompletion,
		"xp_earned":        xp,
		"new_rewards":      rewardsPayload(result.RewardsGranted),
	})
}

func lessonsPayload(lessons []db.LearningLesson) []gin.H {
	items := make([]gin.H, 0, len(lessons))
	for _, lesson := range lessons {
		items = append(items, lessonPayload(lesson))
	}
	return items
}
