package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionUserKey 是会话中保存登录用户 ID 的键
const SessionUserKey = "user_id"

const contextUserKey = "current_user_id"

// AuthRequired 要求请求携带有效的登录会话，并把用户 ID 写入 gin 上下文
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := toUserID(session.Get(SessionUserKey))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		SetCurrentUserID(c, userID)
		c.Next()
	}
}

// SetCurrentUserID 把已认证的用户 ID 写入 gin 上下文
func SetCurrentUserID(c *gin.Context, userID uint) {
	c.Set(contextUserKey, userID)
}

// CurrentUserID 返回 AuthRequired 写入的用户 ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

func toUserID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case uint64:
		return uint(v), v != 0
	default:
		return 0, false
	}
}
