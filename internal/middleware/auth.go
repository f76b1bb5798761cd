package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/utils"
)

// 上下文键
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAuth 需要认证的中间件
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, errors.NewErrorResponse(
				errors.New(errors.ErrAuthentication, "缺少认证令牌"), ""))
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, errors.NewErrorResponse(errors.From(err), ""))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// extractToken 从Authorization头或查询参数提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	// WebSocket握手无法带自定义头
	return c.Query("token")
}

// GetUserID 从上下文取用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// GetUsername 从上下文取用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
