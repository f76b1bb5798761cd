package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wfunc/clue-less/internal/config"
	"github.com/wfunc/clue-less/internal/middleware"
	"github.com/wfunc/clue-less/internal/websocket"
)

// WebSocketHandler 序号推送的握手入口
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	log      *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *websocket.Hub, cfg *config.WebSocketConfig, log *zap.Logger) *WebSocketHandler {
	readBuf, writeBuf := cfg.ReadBufferSize, cfg.WriteBufferSize
	if readBuf <= 0 {
		readBuf = 1024
	}
	if writeBuf <= 0 {
		writeBuf = 1024
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// 浏览器客户端已由JWT鉴权，握手不再限制来源
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Handle 升级连接并启动读写泵；带game_id参数时直接订阅
func (h *WebSocketHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, middleware.GetUserID(c))
	client.Register()

	if gameID := c.Query("game_id"); gameID != "" {
		h.hub.Subscribe(client, gameID)
	}

	go client.WritePump()
	go client.ReadPump()
}
