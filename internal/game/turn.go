package game

import (
	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// ActionKind 回合内动作的类型标签
type ActionKind int

const (
	ActionMove       ActionKind = iota // 移动
	ActionSuggestion                   // 建议
	ActionAccusation                   // 指控
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionSuggestion:
		return "suggestion"
	case ActionAccusation:
		return "accusation"
	default:
		return "unknown"
	}
}

// Action 回合内动作，两段式契约：validate只读检查前置条件，
// perform执行状态变更。校验失败一律返回可恢复错误且不触碰状态
type Action interface {
	Kind() ActionKind
	validate(g *Game, t *Turn) error
	perform(g *Game, t *Turn) error
}

// Turn 一名玩家的回合。动作列表只增不改，
// 三个计数器同时驱动合法性检查和可用动作查询
type Turn struct {
	Player  *Player
	actions []Action

	moves       int
	suggestions int
	accusations int
}

// newTurn 上一回合结束或开局时创建
func newTurn(p *Player) *Turn {
	return &Turn{Player: p}
}

// Actions 本回合已执行的动作
func (t *Turn) Actions() []Action {
	return t.actions
}

// closed 出现指控后回合在规则上关闭，只能结束
func (t *Turn) closed() bool {
	return t.accusations > 0
}

// checkSequence 动作顺序检查：至多一次移动且必须是首个动作；
// 至多一次建议，指控之后不可建议；至多一次指控
func (t *Turn) checkSequence(kind ActionKind) error {
	switch kind {
	case ActionMove:
		// 用计数器而非动作列表判定：快照恢复只还原计数器
		if t.moves+t.suggestions+t.accusations > 0 {
			return errors.New(errors.ErrActionOrder, "移动必须是回合的第一个动作")
		}
	case ActionSuggestion:
		if t.suggestions > 0 {
			return errors.New(errors.ErrActionOrder, "每回合至多提出一次建议")
		}
		if t.accusations > 0 {
			return errors.New(errors.ErrActionOrder, "指控之后不能再提建议")
		}
	case ActionAccusation:
		if t.accusations > 0 {
			return errors.New(errors.ErrActionOrder, "每回合至多提出一次指控")
		}
	}
	return nil
}

// record 动作执行成功后追加并更新计数
func (t *Turn) record(a Action) {
	t.actions = append(t.actions, a)
	switch a.Kind() {
	case ActionMove:
		t.moves++
	case ActionSuggestion:
		t.suggestions++
	case ActionAccusation:
		t.accusations++
	}
}

// availableKinds 与checkSequence同源的三个计数推导可用动作。
// 建议还要求玩家当前在房间内
func (t *Turn) availableKinds(g *Game) []ActionKind {
	var kinds []ActionKind
	if t.moves+t.suggestions+t.accusations == 0 {
		kinds = append(kinds, ActionMove)
	}
	if t.suggestions == 0 && t.accusations == 0 && g.pendingReveal == nil {
		if g.board.CollectorOf(t.Player.Space).Kind == board.KindRoom {
			kinds = append(kinds, ActionSuggestion)
		}
	}
	if t.accusations == 0 {
		kinds = append(kinds, ActionAccusation)
	}
	return kinds
}

// MoveAction 移动动作
type MoveAction struct {
	From board.SpaceID
	To   board.SpaceID
}

// NewMove 构造移动到目标格子的动作，起点在执行时记录
func NewMove(to board.SpaceID) *MoveAction {
	return &MoveAction{From: board.NoSpace, To: to}
}

func (a *MoveAction) Kind() ActionKind { return ActionMove }

// validate 要求目标与当前格子有边相连（密道算一步），
// 走廊目标必须无人占用，密道合成格子不可作为落点
func (a *MoveAction) validate(g *Game, t *Turn) error {
	from := t.Player.Space
	if a.To == from {
		return errors.New(errors.ErrInvalidMove, "已经在目标格子")
	}
	if a.To < 0 || int(a.To) >= len(g.board.Spaces()) {
		return errors.New(errors.ErrInvalidMove, "目标格子不存在")
	}
	dest := g.board.CollectorOf(a.To)
	if dest.Kind == board.KindSecretPassage {
		return errors.New(errors.ErrInvalidMove, "不能停留在密道中")
	}
	if !g.board.IsAdjacent(from, a.To) && !g.board.SecretPassageBetween(from, a.To) {
		return errors.New(errors.ErrInvalidMove, "目标格子不相邻")
	}
	if dest.Kind == board.KindHallway {
		for _, p := range g.players {
			if p != t.Player && p.Space == a.To {
				return errors.New(errors.ErrHallwayOccupied, "走廊已被其他玩家占用")
			}
		}
	}
	return nil
}

// perform 记录起点并移动玩家棋子
func (a *MoveAction) perform(g *Game, t *Turn) error {
	a.From = t.Player.Space
	t.Player.Space = a.To
	return nil
}

// SuggestionAction 建议动作，携带独立的三元组
type SuggestionAction struct {
	Claim deck.WhoWhatWhere
}

// NewSuggestion 构造建议动作
func NewSuggestion(claim deck.WhoWhatWhere) *SuggestionAction {
	return &SuggestionAction{Claim: claim}
}

func (a *SuggestionAction) Kind() ActionKind { return ActionSuggestion }

// validate 建议者必须身处所建议的房间，
// 且上一条建议欠下的亮牌必须先被回应
func (a *SuggestionAction) validate(g *Game, t *Turn) error {
	if g.pendingReveal != nil {
		return errors.New(errors.ErrRevealPending, "亮牌完成前不能提出新建议")
	}
	c := g.board.CollectorOf(t.Player.Space)
	if c.Kind != board.KindRoom || c.Name != a.Claim.Room.Name {
		return errors.Newf(errors.ErrNotInRoom, "必须身处%s才能提出该建议", a.Claim.Room.Name)
	}
	return nil
}

// perform 把被指认角色的棋子强制移入建议房间（不受走廊占用和
// 相邻限制），随后启动亮牌链
func (a *SuggestionAction) perform(g *Game, t *Turn) error {
	room := g.board.SpaceOfRoom(a.Claim.Room.Name)
	if accused := g.playerByCharacter(a.Claim.Character.Name); accused != nil {
		accused.Space = room
	}
	g.beginRevealChain(t.Player, a.Claim)
	return nil
}

// AccusationAction 指控动作，携带独立的三元组
type AccusationAction struct {
	Claim deck.WhoWhatWhere
}

// NewAccusation 构造指控动作
func NewAccusation(claim deck.WhoWhatWhere) *AccusationAction {
	return &AccusationAction{Claim: claim}
}

func (a *AccusationAction) Kind() ActionKind { return ActionAccusation }

// validate 指控没有前置条件
func (a *AccusationAction) validate(g *Game, t *Turn) error {
	return nil
}

// perform 与底牌比对：命中则指控者胜、其余玩家皆负、游戏结束；
// 未命中则指控者出局并立即结束其回合
func (a *AccusationAction) perform(g *Game, t *Turn) error {
	if g.caseFile.Matches(a.Claim) {
		for _, p := range g.players {
			if p == t.Player {
				p.Result = ResultWon
			} else {
				p.Result = ResultLost
			}
		}
		g.status = StatusComplete
		return nil
	}
	t.Player.Result = ResultLost
	g.advanceTurn()
	return nil
}
