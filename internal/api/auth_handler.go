package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wfunc/clue-less/internal/utils"
)

// AuthHandler 游客认证处理器。
// 没有账号体系：给一个用户名就签发带随机用户ID的令牌
type AuthHandler struct {
	jwtManager *utils.JWTManager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(jwtManager *utils.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// GuestLoginRequest 游客登录请求
type GuestLoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
}

// GuestLoginResponse 游客登录响应
type GuestLoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// GuestLogin 游客登录，签发JWT令牌
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	var req GuestLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	userID := uuid.New().String()
	token, err := h.jwtManager.GenerateToken(userID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, GuestLoginResponse{
		UserID:   userID,
		Username: req.Username,
		Token:    token,
	})
}
