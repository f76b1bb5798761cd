package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/clue-less/internal/config"
	"github.com/wfunc/clue-less/internal/game"
	"github.com/wfunc/clue-less/internal/middleware"
	"github.com/wfunc/clue-less/internal/repository"
	"github.com/wfunc/clue-less/internal/utils"
	"github.com/wfunc/clue-less/internal/websocket"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	manager        *game.Manager
	hub            *websocket.Hub
	authHandler    *AuthHandler
	gameHandler    *GameHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器并完成内部装配。
// db为nil时跳过持久化，纯内存运行
func NewRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 持久化层
	var persister game.StatePersister
	var records repository.GameRecordRepository
	if db != nil {
		persister = game.NewDatabaseStatePersister(db)
		records = repository.NewGameRecordRepository(db)
	} else {
		persister = game.NewMemoryStatePersister()
	}

	// 对局管理器与推送中心
	manager := game.NewManager(&cfg.Game, persister, records)
	hub := websocket.NewHub(log.Named("websocket"))
	manager.SetOnUpdate(hub.NotifySequence)

	// 认证
	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
	)

	router := &Router{
		engine:         engine,
		manager:        manager,
		hub:            hub,
		authHandler:    NewAuthHandler(jwtManager),
		gameHandler:    NewGameHandler(manager, records),
		wsHandler:      NewWebSocketHandler(hub, &cfg.WebSocket, log.Named("websocket")),
		authMiddleware: middleware.NewAuthMiddleware(jwtManager),
		log:            log,
	}
	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/guest", r.authHandler.GuestLogin)
		}

		// 对局相关路由（需要认证）
		games := v1.Group("/games")
		games.Use(r.authMiddleware.RequireAuth())
		{
			games.GET("", r.gameHandler.ListGames)
			games.POST("", r.gameHandler.CreateGame)
			games.POST("/:id/join", r.gameHandler.JoinGame)
			games.POST("/:id/start", r.gameHandler.StartGame)
			games.GET("/:id/state", r.gameHandler.GetState)
			games.GET("/:id/actions", r.gameHandler.GetAvailableActions)
			games.POST("/:id/actions", r.gameHandler.TakeAction)
			games.POST("/:id/endturn", r.gameHandler.EndTurn)
			games.GET("/:id/reveal", r.gameHandler.GetPendingReveal)
			games.POST("/:id/reveal", r.gameHandler.Reveal)
			games.GET("/:id/sheet", r.gameHandler.GetSheet)
			games.POST("/:id/sheet", r.gameHandler.CheckSheet)
		}

		// 战绩查询（需要认证）
		records := v1.Group("/records")
		records.Use(r.authMiddleware.RequireAuth())
		{
			records.GET("", r.gameHandler.ListRecords)
		}

		// 序号推送（需要认证，令牌走查询参数）
		ws := v1.Group("/ws")
		ws.Use(r.authMiddleware.RequireAuth())
		{
			ws.GET("", r.wsHandler.Handle)
		}
	}
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"games":  r.manager.Count(),
		"time":   time.Now().Unix(),
	})
}

// Engine 返回Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Manager 返回对局管理器，供启动/停止后台任务
func (r *Router) Manager() *game.Manager {
	return r.manager
}

// Hub 返回WebSocket中心
func (r *Router) Hub() *websocket.Hub {
	return r.hub
}
