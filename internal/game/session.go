package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/game/deck"
	"github.com/wfunc/clue-less/internal/logger"
)

// GameStatus 游戏状态
type GameStatus int

const (
	StatusNotStarted GameStatus = iota // 未开始
	StatusStarted                     // 进行中
	StatusComplete                    // 已结束
)

func (s GameStatus) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusComplete:
		return "complete"
	default:
		return "not_started"
	}
}

var (
	boardOnce     sync.Once
	standardBoard *board.Board
)

// sharedBoard 所有游戏共用同一份不可变棋盘
func sharedBoard() *board.Board {
	boardOnce.Do(func() {
		standardBoard = board.NewStandardBoard()
	})
	return standardBoard
}

// newGameRNG 每局独立的随机源
func newGameRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// gameLogger 带game_id字段的模块日志器
func gameLogger(gameID string) *zap.Logger {
	return logger.GetModuleLogger("game").With(zap.String("game_id", gameID))
}

// UpdateFunc 每次序号递增时的通知回调。
// 在游戏锁内触发，回调中不得再调用游戏方法
type UpdateFunc func(gameID string, sequence uint64)

// Game 一局游戏的聚合根。棋盘、底牌、玩家、当前回合和
// 单调递增的序号都归它管；所有变更操作经由同一把互斥锁串行化
type Game struct {
	mu sync.Mutex

	id       string
	name     string
	board    *board.Board
	catalog  *deck.Catalog
	caseFile *deck.CaseFile
	rng      *rand.Rand

	players      []*Player // 按ID升序追加
	sheets       map[int]*deck.DetectiveSheet
	nextPlayerID int
	host         *Player

	status        GameStatus
	currentTurn   *Turn
	turns         []*Turn // 历史回合，只增不删
	pendingReveal *CardReveal

	sequence  uint64
	createdAt time.Time
	updatedAt time.Time
	onUpdate  UpdateFunc

	log *zap.Logger
}

// NewGame 房主创建游戏：绑定共享棋盘、随机抽取底牌、
// 房主作为首个玩家入局
func NewGame(name, hostUserID, hostUsername, character string) (*Game, error) {
	g := &Game{
		id:      uuid.New().String(),
		name:    name,
		board:   sharedBoard(),
		catalog: deck.NewCatalog(),
		rng:     newGameRNG(),
		sheets:  make(map[int]*deck.DetectiveSheet),

		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	g.log = gameLogger(g.id)
	g.caseFile = deck.NewRandomCaseFile(g.catalog, g.rng)

	host, err := g.addPlayerLocked(hostUserID, hostUsername, character)
	if err != nil {
		return nil, err
	}
	g.host = host

	logger.LogGameEvent("game_created", g.id, map[string]interface{}{
		"name": name,
		"host": hostUsername,
	})
	return g, nil
}

// ID 游戏唯一标识
func (g *Game) ID() string { return g.id }

// Name 游戏名
func (g *Game) Name() string { return g.name }

// Status 当前状态
func (g *Game) Status() GameStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Sequence 当前序号，协作方据此做变更检测
func (g *Game) Sequence() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sequence
}

// CreatedAt 创建时间
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt 最近一次变更时间
func (g *Game) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatedAt
}

// HostPlayer 房主
func (g *Game) HostPlayer() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.host
}

// Players 玩家列表快照
func (g *Game) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Solution 底牌三元组，仅供结束后归档，游戏期间不得外泄
func (g *Game) Solution() deck.WhoWhatWhere {
	return g.caseFile.Solution()
}

// SetOnUpdate 注册序号变更回调
func (g *Game) SetOnUpdate(fn UpdateFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUpdate = fn
}

// bump 每次对外可见的变更都要递增序号
func (g *Game) bump() {
	g.sequence++
	g.updatedAt = time.Now()
	if g.onUpdate != nil {
		g.onUpdate(g.id, g.sequence)
	}
}

// playerByUser 按用户查人类玩家
func (g *Game) playerByUser(userID string) *Player {
	for _, p := range g.players {
		if !p.Ghost && p.UserID == userID {
			return p
		}
	}
	return nil
}

// playerByCharacter 按角色名查玩家（含幽灵）
func (g *Game) playerByCharacter(name string) *Player {
	for _, p := range g.players {
		if p.Character.Name == name {
			return p
		}
	}
	return nil
}

// nextPlayer 回合环的下一位：按ID升序回绕，只数人类玩家，
// excludeLosers时跳过已出局者。只剩一位合格玩家时返回其本人；
// 没有合格玩家时返回nil
func (g *Game) nextPlayer(after *Player, excludeLosers bool) *Player {
	eligible := func(p *Player) bool {
		if p.Ghost {
			return false
		}
		if excludeLosers && p.Eliminated() {
			return false
		}
		return true
	}
	var next, first *Player
	for _, p := range g.players {
		if !eligible(p) {
			continue
		}
		if first == nil || p.ID < first.ID {
			first = p
		}
		if p.ID > after.ID && (next == nil || p.ID < next.ID) {
			next = p
		}
	}
	if next != nil {
		return next
	}
	return first
}

// addPlayerLocked 加入玩家并创建侦探表，调用方持锁
func (g *Game) addPlayerLocked(userID, username, character string) (*Player, error) {
	if g.status != StatusNotStarted {
		return nil, errors.New(errors.ErrGameAlreadyStarted, "游戏已开始，无法加入")
	}
	card := deck.Card{Category: deck.CategoryCharacter, Name: character}
	if !g.catalog.Contains(card) {
		return nil, errors.Newf(errors.ErrInvalidParam, "未知角色: %s", character)
	}
	for _, p := range g.players {
		if !p.Ghost && p.UserID == userID {
			return nil, errors.New(errors.ErrDuplicateUser, "该用户已在本局中")
		}
		if p.Character.Name == character {
			return nil, errors.Newf(errors.ErrDuplicateCharacter, "角色%s已被选择", character)
		}
	}
	p := &Player{
		ID:        g.nextPlayerID,
		UserID:    userID,
		Username:  username,
		Character: card,
		Space:     g.board.StartSpace(character),
	}
	g.nextPlayerID++
	g.players = append(g.players, p)
	g.sheets[p.ID] = deck.NewDetectiveSheet(g.catalog)
	g.bump()
	return p, nil
}

// AddPlayer 玩家加入游戏
func (g *Game) AddPlayer(userID, username, character string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addPlayerLocked(userID, username, character)
}

// UnusedCharacters 目录角色中尚未被选择的
func (g *Game) UnusedCharacters() []deck.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unusedCharactersLocked()
}

func (g *Game) unusedCharactersLocked() []deck.Card {
	var unused []deck.Card
	for _, c := range g.catalog.Characters() {
		if g.playerByCharacter(c.Name) == nil {
			unused = append(unused, c)
		}
	}
	return unused
}

// Start 房主开局：校验状态/人数/身份，随后为无人选择的角色
// 创建幽灵玩家、发出除底牌外的18张牌、开出房主的首个回合
func (g *Game) Start(requestingUserID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusNotStarted {
		return errors.New(errors.ErrGameAlreadyStarted, "游戏已开始")
	}
	if len(g.players) < 2 {
		return errors.New(errors.ErrNotEnoughPlayers, "至少需要2名玩家")
	}
	if g.host == nil || g.host.UserID != requestingUserID {
		return errors.New(errors.ErrNotGameHost, "只有房主可以开始游戏")
	}

	for _, c := range g.unusedCharactersLocked() {
		ghost := &Player{
			ID:        g.nextPlayerID,
			Username:  c.Name,
			Character: c,
			Space:     g.board.StartSpace(c.Name),
			Ghost:     true,
		}
		g.nextPlayerID++
		g.players = append(g.players, ghost)
		g.sheets[ghost.ID] = deck.NewDetectiveSheet(g.catalog)
	}

	var humanSheets []*deck.DetectiveSheet
	for _, p := range g.players {
		if !p.Ghost {
			sheet, ok := g.sheets[p.ID]
			if !ok {
				panic(errors.Newf(errors.ErrMissingSheet, "玩家%d缺少侦探表", p.ID))
			}
			humanSheets = append(humanSheets, sheet)
		}
	}
	deck.Deal(g.catalog, g.caseFile, humanSheets, g.rng)

	g.status = StatusStarted
	g.currentTurn = newTurn(g.host)
	g.turns = append(g.turns, g.currentTurn)
	g.bump()

	logger.LogGameEvent("game_started", g.id, map[string]interface{}{
		"players": len(humanSheets),
	})
	return nil
}

// checkStarted 进行中的游戏才能行动
func (g *Game) checkStarted() error {
	switch g.status {
	case StatusNotStarted:
		return errors.New(errors.ErrGameNotStarted, "游戏尚未开始")
	case StatusComplete:
		return errors.New(errors.ErrGameComplete, "游戏已结束")
	}
	return nil
}

// actingPlayer 校验用户在局内、未出局且轮到其行动
func (g *Game) actingPlayer(userID string) (*Player, error) {
	p := g.playerByUser(userID)
	if p == nil {
		return nil, errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	if p.Eliminated() {
		return nil, errors.New(errors.ErrPlayerEliminated, "指控失败后不能再行动")
	}
	if g.currentTurn == nil || g.currentTurn.Player != p {
		return nil, errors.New(errors.ErrNotPlayersTurn, "还没轮到该玩家")
	}
	return p, nil
}

// TakeAction 执行一个回合动作。
// 顺序检查、动作自身校验失败都返回可恢复错误且不改动状态；
// 通过后执行副作用、记入回合并递增序号
func (g *Game) TakeAction(userID string, a Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkStarted(); err != nil {
		return err
	}
	if _, err := g.actingPlayer(userID); err != nil {
		return err
	}
	t := g.currentTurn
	if err := t.checkSequence(a.Kind()); err != nil {
		return err
	}
	if err := a.validate(g, t); err != nil {
		return err
	}
	if err := a.perform(g, t); err != nil {
		return err
	}
	t.record(a)
	g.bump()

	logger.LogGameEvent("action_taken", g.id, map[string]interface{}{
		"player": t.Player.Username,
		"action": a.Kind().String(),
	})
	return nil
}

// advanceTurn 结束当前回合：为下一位合格玩家开新回合；
// 没有合格玩家时游戏直接结束。历史回合保留
func (g *Game) advanceTurn() {
	next := g.nextPlayer(g.currentTurn.Player, true)
	if next == nil {
		g.status = StatusComplete
		return
	}
	g.currentTurn = newTurn(next)
	g.turns = append(g.turns, g.currentTurn)
}

// EndTurn 玩家主动结束自己的回合
func (g *Game) EndTurn(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkStarted(); err != nil {
		return err
	}
	p := g.playerByUser(userID)
	if p == nil {
		return errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	if g.currentTurn == nil || g.currentTurn.Player != p {
		return errors.New(errors.ErrNotPlayersTurn, "还没轮到该玩家")
	}
	if g.pendingReveal != nil {
		return errors.New(errors.ErrRevealPending, "亮牌完成前不能结束回合")
	}
	g.advanceTurn()
	g.bump()
	return nil
}

// AvailableActions 纯查询：当前回合玩家的可用动作。
// 不是该用户的回合时返回空集
func (g *Game) AvailableActions(userID string) ([]ActionKind, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkStarted(); err != nil {
		return nil, err
	}
	p := g.playerByUser(userID)
	if p == nil {
		return nil, errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	if g.currentTurn == nil || g.currentTurn.Player != p || p.Eliminated() {
		return nil, nil
	}
	return g.currentTurn.availableKinds(g), nil
}

// TripleFromNames 把用户输入的三个牌名解析为三元组，
// 未知牌名返回可恢复错误
func (g *Game) TripleFromNames(character, weapon, room string) (deck.WhoWhatWhere, error) {
	var w deck.WhoWhatWhere
	c := deck.Card{Category: deck.CategoryCharacter, Name: character}
	wp := deck.Card{Category: deck.CategoryWeapon, Name: weapon}
	r := deck.Card{Category: deck.CategoryRoom, Name: room}
	if !g.catalog.Contains(c) {
		return w, errors.Newf(errors.ErrInvalidParam, "未知角色牌: %s", character)
	}
	if !g.catalog.Contains(wp) {
		return w, errors.Newf(errors.ErrInvalidParam, "未知凶器牌: %s", weapon)
	}
	if !g.catalog.Contains(r) {
		return w, errors.Newf(errors.ErrInvalidParam, "未知房间牌: %s", room)
	}
	return deck.WhoWhatWhere{Character: c, Weapon: wp, Room: r}, nil
}

// CardFromNames 解析单张牌
func (g *Game) CardFromNames(category deck.Category, name string) (deck.Card, error) {
	c := deck.Card{Category: category, Name: name}
	if !g.catalog.Contains(c) {
		return deck.Card{}, errors.Newf(errors.ErrInvalidParam, "未知卡牌: %s", name)
	}
	return c, nil
}

// Reveal 亮牌人出示一张牌回应建议
func (g *Game) Reveal(userID string, card deck.Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkStarted(); err != nil {
		return err
	}
	cr := g.pendingReveal
	if cr == nil || cr.Status != RevealPending {
		return errors.New(errors.ErrNoPendingReveal, "当前没有待处理的亮牌")
	}
	if cr.Revealer.Ghost || cr.Revealer.UserID != userID {
		return errors.New(errors.ErrNoPendingReveal, "没有轮到该用户亮牌")
	}
	if err := g.resolveReveal(cr, card); err != nil {
		return err
	}
	g.bump()
	return nil
}

// ManualNote 玩家在自己的侦探表上做手动标记
func (g *Game) ManualNote(userID string, card deck.Card, checked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerByUser(userID)
	if p == nil {
		return errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	if !g.catalog.Contains(card) {
		return errors.Newf(errors.ErrInvalidParam, "未知卡牌: %s", card.Name)
	}
	sheet, ok := g.sheets[p.ID]
	if !ok {
		panic(errors.Newf(errors.ErrMissingSheet, "玩家%d缺少侦探表", p.ID))
	}
	sheet.MakeNote(card, checked, false, true)
	g.bump()
	return nil
}

// SheetView 玩家自己的侦探表视图，三个类别各自排好序
type SheetView struct {
	CharacterItems []deck.SheetItem `json:"character_items"`
	WeaponItems    []deck.SheetItem `json:"weapon_items"`
	RoomItems      []deck.SheetItem `json:"room_items"`
}

// DetectiveSheetView 查询玩家自己的侦探表
func (g *Game) DetectiveSheetView(userID string) (*SheetView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerByUser(userID)
	if p == nil {
		return nil, errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	sheet, ok := g.sheets[p.ID]
	if !ok {
		panic(errors.Newf(errors.ErrMissingSheet, "玩家%d缺少侦探表", p.ID))
	}
	return &SheetView{
		CharacterItems: sheet.CharacterItems(),
		WeaponItems:    sheet.WeaponItems(),
		RoomItems:      sheet.RoomItems(),
	}, nil
}
