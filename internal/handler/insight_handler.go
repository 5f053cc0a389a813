package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type generateInsightRequest struct {
	InsightType string                 `json:"insight_type"`
	UserContext map[string]interface{} `json:"user_context"`
}

// ListInsights 返回最近 3 条有效建议
func (a *API) ListInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	insights, err := a.insights.Latest(userID)
	if err != nil {
		respondServiceError(c, err, "获取建议失败")
		return
	}

	items := make([]gin.H, 0, len(insights))
	for _, insight := range insights {
		items = append(items, insightPayload(insight))
	}
	c.JSON(http.StatusOK, gin.H{"insights": items})
}

// GenerateInsight 调用模型生成一条建议，平台失败时返回 502 且不保存
func (a *API) GenerateInsight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload generateInsightRequest
	if !bindJSON(c, &payload, "请求格式错误") {
		return
	}

	insight, err := a.insights.Generate(c.Request.Context(), userID, payload.InsightType, payload.UserContext)
	if err != nil {
		respondServiceError(c, err, "生成建议失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insight": insightPayload(*insight)})
}
