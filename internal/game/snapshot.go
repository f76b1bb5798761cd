package game

import (
	"encoding/json"
	"time"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// 快照的序列化形式。只保留恢复现场所需的状态：
// 回合历史的动作明细不在其中，只还原当前回合的三个计数器
type snapshotClaim struct {
	Character string `json:"character"`
	Weapon    string `json:"weapon"`
	Room      string `json:"room"`
}

type snapshotPlayer struct {
	ID        int    `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Username  string `json:"username"`
	Character string `json:"character"`
	Space     int    `json:"space"`
	Ghost     bool   `json:"ghost"`
	Result    int    `json:"result"`
}

type snapshotItem struct {
	Category int    `json:"category"`
	Name     string `json:"name"`
	Checked  bool   `json:"checked"`
	Dealt    bool   `json:"dealt"`
	Manual   bool   `json:"manual"`
}

type snapshotTurn struct {
	PlayerID    int `json:"player_id"`
	Moves       int `json:"moves"`
	Suggestions int `json:"suggestions"`
	Accusations int `json:"accusations"`
}

type snapshotReveal struct {
	SuggesterID int           `json:"suggester_id"`
	RevealerID  int           `json:"revealer_id"`
	Claim       snapshotClaim `json:"claim"`
	Status      int           `json:"status"`
}

type snapshotState struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Status       int                    `json:"status"`
	Sequence     uint64                 `json:"sequence"`
	HostID       int                    `json:"host_id"`
	NextPlayerID int                    `json:"next_player_id"`
	Solution     snapshotClaim          `json:"solution"`
	Players      []snapshotPlayer       `json:"players"`
	Sheets       map[int][]snapshotItem `json:"sheets"`
	CurrentTurn  *snapshotTurn          `json:"current_turn,omitempty"`
	Reveal       *snapshotReveal        `json:"reveal,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func toSnapshotClaim(w deck.WhoWhatWhere) snapshotClaim {
	return snapshotClaim{
		Character: w.Character.Name,
		Weapon:    w.Weapon.Name,
		Room:      w.Room.Name,
	}
}

func (c snapshotClaim) triple() deck.WhoWhatWhere {
	return deck.WhoWhatWhere{
		Character: deck.Card{Category: deck.CategoryCharacter, Name: c.Character},
		Weapon:    deck.Card{Category: deck.CategoryWeapon, Name: c.Weapon},
		Room:      deck.Card{Category: deck.CategoryRoom, Name: c.Room},
	}
}

// Snapshot 序列化当前对局状态，每次变更后由持久化层调用
func (g *Game) Snapshot() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := snapshotState{
		ID:           g.id,
		Name:         g.name,
		Status:       int(g.status),
		Sequence:     g.sequence,
		HostID:       g.host.ID,
		NextPlayerID: g.nextPlayerID,
		Solution:     toSnapshotClaim(g.caseFile.Solution()),
		Sheets:       make(map[int][]snapshotItem),
		CreatedAt:    g.createdAt,
		UpdatedAt:    g.updatedAt,
	}
	for _, p := range g.players {
		st.Players = append(st.Players, snapshotPlayer{
			ID:        p.ID,
			UserID:    p.UserID,
			Username:  p.Username,
			Character: p.Character.Name,
			Space:     int(p.Space),
			Ghost:     p.Ghost,
			Result:    int(p.Result),
		})
		sheet := g.sheets[p.ID]
		var items []snapshotItem
		for _, c := range g.catalog.All() {
			it := sheet.Item(c)
			if !it.Checked && !it.Dealt && !it.ManuallyChecked {
				continue
			}
			items = append(items, snapshotItem{
				Category: int(c.Category),
				Name:     c.Name,
				Checked:  it.Checked,
				Dealt:    it.Dealt,
				Manual:   it.ManuallyChecked,
			})
		}
		st.Sheets[p.ID] = items
	}
	if g.currentTurn != nil {
		st.CurrentTurn = &snapshotTurn{
			PlayerID:    g.currentTurn.Player.ID,
			Moves:       g.currentTurn.moves,
			Suggestions: g.currentTurn.suggestions,
			Accusations: g.currentTurn.accusations,
		}
	}
	if cr := g.pendingReveal; cr != nil && cr.Status == RevealPending {
		st.Reveal = &snapshotReveal{
			SuggesterID: cr.Suggester.ID,
			RevealerID:  cr.Revealer.ID,
			Claim:       toSnapshotClaim(cr.Claim),
			Status:      int(cr.Status),
		}
	}
	return json.Marshal(st)
}

// RestoreGame 从快照重建对局。
// 快照损坏或引用不存在的玩家按数据完整性错误处理
func RestoreGame(data []byte) (*Game, error) {
	var st snapshotState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(err, errors.ErrDataIntegrity, "快照解析失败")
	}

	g := &Game{
		id:           st.ID,
		name:         st.Name,
		board:        sharedBoard(),
		catalog:      deck.NewCatalog(),
		rng:          newGameRNG(),
		sheets:       make(map[int]*deck.DetectiveSheet),
		nextPlayerID: st.NextPlayerID,
		status:       GameStatus(st.Status),
		sequence:     st.Sequence,
		createdAt:    st.CreatedAt,
		updatedAt:    st.UpdatedAt,
	}
	g.log = gameLogger(g.id)
	g.caseFile = deck.NewCaseFile(st.Solution.triple())

	byID := make(map[int]*Player)
	for _, sp := range st.Players {
		p := &Player{
			ID:        sp.ID,
			UserID:    sp.UserID,
			Username:  sp.Username,
			Character: deck.Card{Category: deck.CategoryCharacter, Name: sp.Character},
			Space:     board.SpaceID(sp.Space),
			Ghost:     sp.Ghost,
			Result:    GameResult(sp.Result),
		}
		g.players = append(g.players, p)
		byID[p.ID] = p

		sheet := deck.NewDetectiveSheet(g.catalog)
		for _, it := range st.Sheets[p.ID] {
			card := deck.Card{Category: deck.Category(it.Category), Name: it.Name}
			sheet.MakeNote(card, it.Checked, it.Dealt, it.Manual)
		}
		g.sheets[p.ID] = sheet
	}

	host, ok := byID[st.HostID]
	if !ok {
		return nil, errors.New(errors.ErrDataIntegrity, "快照缺少房主")
	}
	g.host = host

	if st.CurrentTurn != nil {
		p, found := byID[st.CurrentTurn.PlayerID]
		if !found {
			return nil, errors.New(errors.ErrDataIntegrity, "快照的当前回合玩家不存在")
		}
		t := newTurn(p)
		t.moves = st.CurrentTurn.Moves
		t.suggestions = st.CurrentTurn.Suggestions
		t.accusations = st.CurrentTurn.Accusations
		g.currentTurn = t
		g.turns = append(g.turns, t)
	}
	if st.Reveal != nil {
		suggester, okS := byID[st.Reveal.SuggesterID]
		revealer, okR := byID[st.Reveal.RevealerID]
		if !okS || !okR {
			return nil, errors.New(errors.ErrDataIntegrity, "快照的亮牌记录引用不存在的玩家")
		}
		g.pendingReveal = &CardReveal{
			Claim:     st.Reveal.Claim.triple(),
			Suggester: suggester,
			Revealer:  revealer,
			Status:    RevealStatus(st.Reveal.Status),
		}
	}
	return g, nil
}
