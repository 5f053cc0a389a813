package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/service"
)

type materialRequest struct {
	Title      string `json:"title"`
	FilePath   string `json:"file_path"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	TotalPages int    `json:"total_pages"`
}

type studySessionRequest struct {
	MaterialID      uint   `json:"material_id"`
	SessionName     string `json:"session_name"`
	StartPage       int    `json:"start_page"`
	EndPage         *int   `json:"end_page"`
	PlannedDuration int    `json:"planned_duration"`
}

type completeStudyRequest struct {
	ActualDuration      int  `json:"actual_duration"`
	ComprehensionRating *int `json:"comprehension_rating"`
}

// ListMaterials 返回用户登记的资料
func (a *API) ListMaterials(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	materials, err := a.study.Materials(userID)
	if err != nil {
		respondServiceError(c, err, "获取资料失败")
		return
	}

	items := make([]gin.H, 0, len(materials))
	for _, material := range materials {
		items = append(items, materialPayload(material))
	}
	c.JSON(http.StatusOK, gin.H{"materials": items})
}

// CreateMaterial 登记资料元数据
func (a *API) CreateMaterial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload materialRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	material, err := a.study.CreateMaterial(userID, service.StudyMaterialInput{
		Title:      payload.Title,
		FilePath:   payload.FilePath,
		FileSize:   payload.FileSize,
		MimeType:   payload.MimeType,
		TotalPages: payload.TotalPages,
	})
	if err != nil {
		respondServiceError(c, err, "登记资料失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"material": materialPayload(*material)})
}

// ListStudySessions 返回阅读会话
func (a *API) ListStudySessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := a.study.Sessions(userID)
	if err != nil {
		respondServiceError(c, err, "获取阅读会话失败")
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, studySessionPayload(session))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}

// CreateStudySession 为自己的资料新建阅读会话
func (a *API) CreateStudySession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload studySessionRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	session, err := a.study.CreateSession(userID, service.StudySessionInput{
		MaterialID:      payload.MaterialID,
		SessionName:     payload.SessionName,
		StartPage:       payload.StartPage,
		EndPage:         payload.EndPage,
		PlannedDuration: payload.PlannedDuration,
	})
	if err != nil {
		respondServiceError(c, err, "创建阅读会话失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": studySessionPayload(*session)})
}

// StartStudySession 标记阅读会话开始
func (a *API) StartStudySession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := a.study.StartSession(userID, sessionID)
	if err != nil {
		respondServiceError(c, err, "开始阅读会话失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": studySessionPayload(*session)})
}

// CompleteStudySession 完成阅读会话
func (a *API) CompleteStudySession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload completeStudyRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	session, err := a.study.CompleteSession(userID, sessionID, service.CompleteStudyInput{
		ActualDuration:      payload.ActualDuration,
		ComprehensionRating: payload.ComprehensionRating,
	})
	if err != nil {
		respondServiceError(c, err, "完成阅读会话失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": studySessionPayload(*session)})
}
