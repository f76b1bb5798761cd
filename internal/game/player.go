package game

import (
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// GameResult 玩家在一局中的胜负状态
type GameResult int

const (
	ResultUndecided GameResult = iota // 未定
	ResultWon                        // 胜
	ResultLost                       // 负
)

func (r GameResult) String() string {
	switch r {
	case ResultWon:
		return "won"
	case ResultLost:
		return "lost"
	default:
		return "undecided"
	}
}

// Player 一局中的玩家。人类玩家绑定用户和唯一角色；
// 幽灵玩家在开局时为无人选择的角色自动创建，
// 可持牌亮牌但不参与回合轮转
type Player struct {
	ID        int           `json:"player_id"` // 局内递增，环序按此升序
	UserID    string        `json:"user_id"`
	Username  string        `json:"username"`
	Character deck.Card     `json:"character"`
	Space     board.SpaceID `json:"space"`
	Ghost     bool          `json:"ghost"`
	Result    GameResult    `json:"result"`
}

// Eliminated 指控失败后出局，保留观战但不再行动
func (p *Player) Eliminated() bool {
	return p.Result == ResultLost
}
