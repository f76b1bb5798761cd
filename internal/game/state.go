package game

import (
	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// HostInfo 房主公开信息
type HostInfo struct {
	PlayerID int    `json:"player_id"`
	Username string `json:"username"`
}

// PlayerState 单个玩家的公开状态，对所有局内玩家可见
type PlayerState struct {
	PlayerID  int    `json:"player_id"`
	Username  string `json:"username"`
	Character string `json:"character"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	SpaceID   int    `json:"space_id"`
	Collector string `json:"collector"`
	Ghost     bool   `json:"ghost"`
	Result    string `json:"result"`
}

// TurnInfo 当前回合的公开信息
type TurnInfo struct {
	PlayerID  int    `json:"player_id"`
	Username  string `json:"username"`
	Character string `json:"character"`
}

// ClaimView 三元组的展示形式
type ClaimView struct {
	Character string `json:"character"`
	Weapon    string `json:"weapon"`
	Room      string `json:"room"`
}

// RevealView 亮牌人视角的待处理亮牌：
// 含可出示的牌，只有轮到的亮牌人能看到
type RevealView struct {
	Suggester      string      `json:"suggester"`
	Claim          ClaimView   `json:"claim"`
	PotentialCards []deck.Card `json:"potential_cards"`
}

// StateProjection 按观看者裁剪后的游戏状态投影。
// 永不包含底牌和他人的侦探表
type StateProjection struct {
	GameID           string        `json:"game_id"`
	Name             string        `json:"name"`
	Status           string        `json:"status"`
	Sequence         uint64        `json:"sequence"`
	IsHostPlayer     bool          `json:"is_host_player"`
	HostPlayer       HostInfo      `json:"hostplayer"`
	PlayerStates     []PlayerState `json:"playerstates"`
	CurrentTurn      *TurnInfo     `json:"currentturn,omitempty"`
	IsMyTurn         bool          `json:"is_my_turn"`
	AvailableActions []string      `json:"available_actions,omitempty"`
	PendingReveal    *RevealView   `json:"pending_reveal,omitempty"`
	AwaitingReveal   bool          `json:"awaiting_reveal"`
	MyResult         string        `json:"my_result"`
}

func claimView(w deck.WhoWhatWhere) ClaimView {
	return ClaimView{
		Character: w.Character.Name,
		Weapon:    w.Weapon.Name,
		Room:      w.Room.Name,
	}
}

// StateJSON 生成观看者视角的状态投影
func (g *Game) StateJSON(forUserID string) (*StateProjection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	viewer := g.playerByUser(forUserID)
	if viewer == nil {
		return nil, errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}

	proj := &StateProjection{
		GameID:       g.id,
		Name:         g.name,
		Status:       g.status.String(),
		Sequence:     g.sequence,
		IsHostPlayer: viewer == g.host,
		HostPlayer: HostInfo{
			PlayerID: g.host.ID,
			Username: g.host.Username,
		},
		MyResult: viewer.Result.String(),
	}

	for _, p := range g.players {
		s := g.board.Space(p.Space)
		proj.PlayerStates = append(proj.PlayerStates, PlayerState{
			PlayerID:  p.ID,
			Username:  p.Username,
			Character: p.Character.Name,
			X:         s.X,
			Y:         s.Y,
			SpaceID:   int(p.Space),
			Collector: s.Owner.Name,
			Ghost:     p.Ghost,
			Result:    p.Result.String(),
		})
	}

	if g.currentTurn != nil && g.status == StatusStarted {
		cp := g.currentTurn.Player
		proj.CurrentTurn = &TurnInfo{
			PlayerID:  cp.ID,
			Username:  cp.Username,
			Character: cp.Character.Name,
		}
		if cp == viewer && !viewer.Eliminated() {
			proj.IsMyTurn = true
			for _, k := range g.currentTurn.availableKinds(g) {
				proj.AvailableActions = append(proj.AvailableActions, k.String())
			}
		}
	}

	if cr := g.pendingReveal; cr != nil && cr.Status == RevealPending {
		if cr.Revealer == viewer {
			proj.PendingReveal = &RevealView{
				Suggester:      cr.Suggester.Username,
				Claim:          claimView(cr.Claim),
				PotentialCards: g.potentialCards(cr),
			}
		}
		if cr.Suggester == viewer {
			proj.AwaitingReveal = true
		}
	}

	return proj, nil
}

// PendingRevealFor 亮牌人查询自己的待处理亮牌，
// 没有轮到该用户时返回可恢复错误
func (g *Game) PendingRevealFor(userID string) (*RevealView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerByUser(userID)
	if p == nil {
		return nil, errors.New(errors.ErrPlayerNotInGame, "用户不在本局中")
	}
	cr := g.pendingReveal
	if cr == nil || cr.Status != RevealPending || cr.Revealer != p {
		return nil, errors.New(errors.ErrNoPendingReveal, "当前没有待处理的亮牌")
	}
	return &RevealView{
		Suggester:      cr.Suggester.Username,
		Claim:          claimView(cr.Claim),
		PotentialCards: g.potentialCards(cr),
	}, nil
}
