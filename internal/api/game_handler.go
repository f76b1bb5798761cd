package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game"
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/middleware"
	"github.com/wfunc/clue-less/internal/repository"
)

// GameHandler 对局处理器，把HTTP请求翻译成引擎操作
type GameHandler struct {
	manager *game.Manager
	records repository.GameRecordRepository
}

// NewGameHandler 创建对局处理器
func NewGameHandler(manager *game.Manager, records repository.GameRecordRepository) *GameHandler {
	return &GameHandler{manager: manager, records: records}
}

// CreateGameRequest 创建对局请求
type CreateGameRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Character string `json:"character" binding:"required"`
}

// CreateGame 创建对局，请求者成为房主
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := h.manager.CreateGame(req.Name, middleware.GetUserID(c), middleware.GetUsername(c), req.Character)
	if err != nil {
		respondError(c, err)
		return
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// lookupGame 按路径参数取对局
func (h *GameHandler) lookupGame(c *gin.Context) (*game.Game, bool) {
	g, err := h.manager.GetGame(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return g, true
}

// JoinGameRequest 加入对局请求
type JoinGameRequest struct {
	Character string `json:"character" binding:"required"`
}

// JoinGame 选择角色加入对局
func (h *GameHandler) JoinGame(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if _, err := g.AddPlayer(middleware.GetUserID(c), middleware.GetUsername(c), req.Character); err != nil {
		respondError(c, err)
		return
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// StartGame 房主开始对局
func (h *GameHandler) StartGame(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	if err := g.Start(middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// GetState 轮询对局状态。带cached_seq且与当前序号相同时
// 返回304，省掉投影开销
func (h *GameHandler) GetState(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	if cached := c.Query("cached_seq"); cached != "" {
		if seq, err := strconv.ParseUint(cached, 10, 64); err == nil && seq == g.Sequence() {
			c.Status(http.StatusNotModified)
			return
		}
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// TakeActionRequest 回合动作请求
type TakeActionRequest struct {
	Type      string `json:"type" binding:"required,oneof=move suggestion accusation"`
	SpaceID   *int   `json:"space_id,omitempty"`
	Character string `json:"character,omitempty"`
	Weapon    string `json:"weapon,omitempty"`
	Room      string `json:"room,omitempty"`
}

// buildAction 把请求体翻译成引擎动作
func (h *GameHandler) buildAction(g *game.Game, req *TakeActionRequest) (game.Action, error) {
	switch req.Type {
	case "move":
		if req.SpaceID == nil {
			return nil, errors.New(errors.ErrInvalidParam, "移动需要space_id")
		}
		return game.NewMove(board.SpaceID(*req.SpaceID)), nil
	case "suggestion", "accusation":
		claim, err := g.TripleFromNames(req.Character, req.Weapon, req.Room)
		if err != nil {
			return nil, err
		}
		if req.Type == "suggestion" {
			return game.NewSuggestion(claim), nil
		}
		return game.NewAccusation(claim), nil
	}
	return nil, errors.Newf(errors.ErrInvalidParam, "未知动作类型: %s", req.Type)
}

// TakeAction 执行回合动作
func (h *GameHandler) TakeAction(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	var req TakeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	action, err := h.buildAction(g, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := g.TakeAction(middleware.GetUserID(c), action); err != nil {
		respondError(c, err)
		return
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// GetAvailableActions 查询当前可用动作
func (h *GameHandler) GetAvailableActions(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	kinds, err := g.AvailableActions(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	respondOK(c, gin.H{"actions": names})
}

// EndTurn 结束自己的回合
func (h *GameHandler) EndTurn(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	if err := g.EndTurn(middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	state, err := g.StateJSON(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, state)
}

// GetPendingReveal 亮牌人查询待处理亮牌和可出示的牌
func (h *GameHandler) GetPendingReveal(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	view, err := g.PendingRevealFor(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// RevealRequest 亮牌请求
type RevealRequest struct {
	Category string `json:"category" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Reveal 出示一张牌回应建议
func (h *GameHandler) Reveal(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	card, err := g.CardFromNames(category, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := g.Reveal(middleware.GetUserID(c), card); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// GetSheet 查询自己的侦探表
func (h *GameHandler) GetSheet(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	view, err := g.DetectiveSheetView(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// SheetNoteRequest 侦探表手动标记请求
type SheetNoteRequest struct {
	Category string `json:"category" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Checked  bool   `json:"checked"`
}

// CheckSheet 在自己的侦探表上做手动标记
func (h *GameHandler) CheckSheet(c *gin.Context) {
	g, ok := h.lookupGame(c)
	if !ok {
		return
	}
	var req SheetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	card, err := g.CardFromNames(category, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := g.ManualNote(middleware.GetUserID(c), card, req.Checked); err != nil {
		respondError(c, err)
		return
	}
	view, err := g.DetectiveSheetView(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// LobbyGame 大厅里一局可加入对局的摘要
type LobbyGame struct {
	GameID      string   `json:"game_id"`
	Name        string   `json:"name"`
	Host        string   `json:"host"`
	PlayerCount int      `json:"player_count"`
	Available   []string `json:"available_characters"`
}

// ListGames 大厅：尚未开始的对局列表
func (h *GameHandler) ListGames(c *gin.Context) {
	var lobby []LobbyGame
	for _, g := range h.manager.ListOpenGames() {
		humans := 0
		for _, p := range g.Players() {
			if !p.Ghost {
				humans++
			}
		}
		var available []string
		for _, card := range g.UnusedCharacters() {
			available = append(available, card.Name)
		}
		lobby = append(lobby, LobbyGame{
			GameID:      g.ID(),
			Name:        g.Name(),
			Host:        g.HostPlayer().Username,
			PlayerCount: humans,
			Available:   available,
		})
	}
	respondOK(c, gin.H{"games": lobby})
}

// ListRecords 已归档对局的战绩列表
func (h *GameHandler) ListRecords(c *gin.Context) {
	if h.records == nil {
		respondOK(c, gin.H{"records": []interface{}{}, "total": 0})
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, total, err := h.records.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"records": records, "total": total})
}
