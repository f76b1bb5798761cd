package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// SuccessResponse 成功响应包装
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// respondOK 输出成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// respondError 按错误码映射HTTP状态输出错误响应。
// 可恢复的对局前置条件错误落在422，其余按各自分组
func respondError(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(appErr, c.GetString("requestID")))
}

// respondBadRequest 请求体解析失败
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrInvalidParam, "请求参数错误"))
}

// parseCategory 解析卡牌类别参数
func parseCategory(s string) (deck.Category, error) {
	switch s {
	case "character":
		return deck.CategoryCharacter, nil
	case "weapon":
		return deck.CategoryWeapon, nil
	case "room":
		return deck.CategoryRoom, nil
	default:
		return 0, errors.Newf(errors.ErrInvalidParam, "未知卡牌类别: %s", s)
	}
}
