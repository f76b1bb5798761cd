package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/board"
	"github.com/wfunc/clue-less/internal/game/deck"
)

const (
	hostUser   = "user-host"
	secondUser = "user-second"
	thirdUser  = "user-third"
)

// testSolution 固定底牌，测试里所有推断都以它为准
var testSolution = deck.WhoWhatWhere{
	Character: deck.Card{Category: deck.CategoryCharacter, Name: "Prof. Plum"},
	Weapon:    deck.Card{Category: deck.CategoryWeapon, Name: "Rope"},
	Room:      deck.Card{Category: deck.CategoryRoom, Name: "Study"},
}

// newTestGame 两名人类玩家、固定底牌的未开始对局
func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame("test", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	g.caseFile = deck.NewCaseFile(testSolution)
	_, err = g.AddPlayer(secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)
	return g
}

// startedGame 已开始的双人对局
func startedGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGame(t)
	require.NoError(t, g.Start(hostUser))
	return g
}

// findPlayer 按用户取玩家
func findPlayer(t *testing.T, g *Game, userID string) *Player {
	t.Helper()
	p := g.playerByUser(userID)
	require.NotNil(t, p)
	return p
}

// placeIn 把玩家直接放进某个房间
func placeIn(g *Game, p *Player, room string) {
	p.Space = g.board.SpaceOfRoom(room)
}

func TestAddPlayerDuplicates(t *testing.T) {
	g := newTestGame(t)

	_, err := g.AddPlayer(hostUser, "alice2", "Mrs. White")
	assert.Equal(t, apperrors.ErrDuplicateUser, apperrors.GetCode(err))

	_, err = g.AddPlayer(thirdUser, "carol", "Mrs. Peacock")
	assert.Equal(t, apperrors.ErrDuplicateCharacter, apperrors.GetCode(err))

	_, err = g.AddPlayer(thirdUser, "carol", "Sherlock")
	assert.Equal(t, apperrors.ErrInvalidParam, apperrors.GetCode(err))
}

func TestStartPreconditions(t *testing.T) {
	g, err := NewGame("solo", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)

	// 人数不足
	err = g.Start(hostUser)
	assert.Equal(t, apperrors.ErrNotEnoughPlayers, apperrors.GetCode(err))

	_, err = g.AddPlayer(secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)

	// 非房主
	err = g.Start(secondUser)
	assert.Equal(t, apperrors.ErrNotGameHost, apperrors.GetCode(err))

	require.NoError(t, g.Start(hostUser))

	// 重复开始
	err = g.Start(hostUser)
	assert.Equal(t, apperrors.ErrGameAlreadyStarted, apperrors.GetCode(err))

	// 开始后禁止加入
	_, err = g.AddPlayer(thirdUser, "carol", "Mrs. White")
	assert.Equal(t, apperrors.ErrGameAlreadyStarted, apperrors.GetCode(err))
}

// TestStartDealInvariants 开局后：6名玩家（2人类+4幽灵），
// 18张非底牌平均发给人类，底牌永不出现在任何侦探表的手牌里
func TestStartDealInvariants(t *testing.T) {
	g := startedGame(t)

	players := g.Players()
	require.Len(t, players, 6)

	humans := 0
	ghosts := 0
	totalDealt := 0
	for _, p := range players {
		sheet := g.sheets[p.ID]
		require.NotNil(t, sheet)
		dealt := sheet.DealtCards()
		if p.Ghost {
			ghosts++
			assert.Empty(t, dealt)
			continue
		}
		humans++
		assert.Len(t, dealt, 9)
		totalDealt += len(dealt)
		for _, c := range dealt {
			assert.False(t, g.caseFile.Contains(c), "底牌%s被发出", c.Name)
		}
	}
	assert.Equal(t, 2, humans)
	assert.Equal(t, 4, ghosts)
	assert.Equal(t, 18, totalDealt)

	// 首个回合属于房主
	assert.Equal(t, StatusStarted, g.Status())
	assert.Equal(t, hostUser, g.currentTurn.Player.UserID)
}

func TestTurnSequencing(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	// 走廊起点向相邻房间移动
	dest := g.board.NeighborsOf(host.Space).North
	require.NotEqual(t, board.NoSpace, dest)
	require.NoError(t, g.TakeAction(hostUser, NewMove(dest)))

	// 同回合第二次移动被拒
	err := g.TakeAction(hostUser, NewMove(host.Space))
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(err))

	// 不在回合的玩家被拒
	err = g.TakeAction(secondUser, NewMove(dest))
	assert.Equal(t, apperrors.ErrNotPlayersTurn, apperrors.GetCode(err))
}

// TestCheckSequence 三个计数器驱动的动作顺序规则
func TestCheckSequence(t *testing.T) {
	p := &Player{ID: 0}
	claim := testSolution

	// 每种动作作为回合首个动作都合法
	for _, a := range []Action{NewMove(0), NewSuggestion(claim), NewAccusation(claim)} {
		fresh := newTurn(p)
		assert.NoError(t, fresh.checkSequence(a.Kind()))
	}

	// 任何动作之后不能再移动
	after := newTurn(p)
	after.record(NewSuggestion(claim))
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(after.checkSequence(ActionMove)))

	// 指控之后不能建议、不能再指控
	closed := newTurn(p)
	closed.record(NewAccusation(claim))
	assert.True(t, closed.closed())
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(closed.checkSequence(ActionSuggestion)))
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(closed.checkSequence(ActionAccusation)))

	// 建议之后不能再建议，但仍可指控
	suggested := newTurn(p)
	suggested.record(NewSuggestion(claim))
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(suggested.checkSequence(ActionSuggestion)))
	assert.NoError(t, suggested.checkSequence(ActionAccusation))

	// 只有计数器、动作列表为空（快照恢复后的形态）时移动同样被拒
	counted := newTurn(p)
	counted.moves = 1
	assert.Equal(t, apperrors.ErrActionOrder, apperrors.GetCode(counted.checkSequence(ActionMove)))
}

func TestMoveValidation(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	// 不相邻
	err := g.TakeAction(hostUser, NewMove(g.board.SpaceOfRoom(board.RoomKitchen)))
	assert.Equal(t, apperrors.ErrInvalidMove, apperrors.GetCode(err))

	// 原地不动
	err = g.TakeAction(hostUser, NewMove(host.Space))
	assert.Equal(t, apperrors.ErrInvalidMove, apperrors.GetCode(err))

	// 被占用的走廊
	second := findPlayer(t, g, secondUser)
	placeIn(g, host, board.RoomStudy)
	hallway := g.board.NeighborsOf(g.board.SpaceOfRoom(board.RoomStudy)).East
	require.NotEqual(t, board.NoSpace, hallway)
	second.Space = hallway
	err = g.TakeAction(hostUser, NewMove(hallway))
	assert.Equal(t, apperrors.ErrHallwayOccupied, apperrors.GetCode(err))

	// 密道一步到对角房间
	require.NoError(t, g.TakeAction(hostUser, NewMove(g.board.SpaceOfRoom(board.RoomKitchen))))
	assert.Equal(t, g.board.SpaceOfRoom(board.RoomKitchen), host.Space)
}

func TestAvailableActions(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	// 走廊起点：能移动和指控，不能建议
	kinds, err := g.AvailableActions(hostUser)
	require.NoError(t, err)
	assert.Equal(t, []ActionKind{ActionMove, ActionAccusation}, kinds)

	// 不在回合的玩家没有可用动作
	kinds, err = g.AvailableActions(secondUser)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	// 身处房间后建议可用
	placeIn(g, host, board.RoomHall)
	kinds, err = g.AvailableActions(hostUser)
	require.NoError(t, err)
	assert.Equal(t, []ActionKind{ActionMove, ActionSuggestion, ActionAccusation}, kinds)
}

func TestNextPlayerRing(t *testing.T) {
	g, err := NewGame("ring", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	g.caseFile = deck.NewCaseFile(testSolution)
	_, err = g.AddPlayer(secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)
	_, err = g.AddPlayer(thirdUser, "carol", "Mrs. White")
	require.NoError(t, err)
	require.NoError(t, g.Start(hostUser))

	host := findPlayer(t, g, hostUser)
	second := findPlayer(t, g, secondUser)
	third := findPlayer(t, g, thirdUser)

	// 升序环回绕，幽灵不入环
	assert.Equal(t, second, g.nextPlayer(host, true))
	assert.Equal(t, third, g.nextPlayer(second, true))
	assert.Equal(t, host, g.nextPlayer(third, true))

	// 出局者被跳过
	second.Result = ResultLost
	assert.Equal(t, third, g.nextPlayer(host, true))
	assert.Equal(t, host, g.nextPlayer(third, true))

	// 只剩一位合格玩家的退化环返回其本人
	third.Result = ResultLost
	assert.Equal(t, host, g.nextPlayer(host, true))
}

func TestEndTurnAdvances(t *testing.T) {
	g := startedGame(t)

	require.NoError(t, g.EndTurn(hostUser))
	assert.Equal(t, secondUser, g.currentTurn.Player.UserID)

	// 轮不到的人不能结束回合
	err := g.EndTurn(hostUser)
	assert.Equal(t, apperrors.ErrNotPlayersTurn, apperrors.GetCode(err))

	require.NoError(t, g.EndTurn(secondUser))
	assert.Equal(t, hostUser, g.currentTurn.Player.UserID)
}

// TestSuggestionFlow 建议把被指认角色拉进房间并停在
// 第一个能出牌的环上玩家；亮牌写进建议者的侦探表
func TestSuggestionFlow(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	placeIn(g, host, board.RoomLounge)

	revolver := deck.Card{Category: deck.CategoryWeapon, Name: "Revolver"}
	// 确保第二名玩家手里有可出示的牌
	g.sheets[findPlayer(t, g, secondUser).ID].MakeNote(revolver, true, true, false)

	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(claim)))

	// 被指认角色被强制移入建议房间
	scarlet := g.playerByCharacter("Miss Scarlet")
	require.NotNil(t, scarlet)
	assert.Equal(t, g.board.SpaceOfRoom(board.RoomLounge), scarlet.Space)

	// 亮牌停在第二名玩家
	cr := g.pendingReveal
	require.NotNil(t, cr)
	assert.Equal(t, RevealPending, cr.Status)
	assert.Equal(t, secondUser, cr.Revealer.UserID)
	assert.Contains(t, g.potentialCards(cr), revolver)

	// 出示底牌之外的一张
	require.NoError(t, g.Reveal(secondUser, revolver))
	assert.Nil(t, g.pendingReveal)
	assert.True(t, g.sheets[host.ID].Item(revolver).Checked)
}

// TestPendingRevealBlocksEndTurn 亮牌未回应前建议者不能结束回合
func TestPendingRevealBlocksEndTurn(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	placeIn(g, host, board.RoomLounge)

	revolver := deck.Card{Category: deck.CategoryWeapon, Name: "Revolver"}
	g.sheets[findPlayer(t, g, secondUser).ID].MakeNote(revolver, true, true, false)

	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(claim)))
	require.NotNil(t, g.pendingReveal)

	// 欠着亮牌时不能结束回合
	err = g.EndTurn(hostUser)
	assert.Equal(t, apperrors.ErrRevealPending, apperrors.GetCode(err))

	// 回应之后回合照常结束，事实已写进建议者的侦探表
	require.NoError(t, g.Reveal(secondUser, revolver))
	require.NoError(t, g.EndTurn(hostUser))
	assert.Equal(t, secondUser, g.currentTurn.Player.UserID)
	assert.True(t, g.sheets[host.ID].Item(revolver).Checked)
}

// TestPendingRevealBlocksNewSuggestion 前一条建议的亮牌未回应时，
// 下一位玩家的建议被拒绝而不是悄悄覆盖欠下的记录
func TestPendingRevealBlocksNewSuggestion(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	second := findPlayer(t, g, secondUser)
	placeIn(g, host, board.RoomLounge)
	placeIn(g, second, board.RoomStudy)

	revolver := deck.Card{Category: deck.CategoryWeapon, Name: "Revolver"}
	g.sheets[second.ID].MakeNote(revolver, true, true, false)
	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(claim)))
	owed := g.pendingReveal
	require.NotNil(t, owed)

	// 指控失败把回合移交，亮牌仍悬而未决
	wrong, err := g.TripleFromNames("Mrs. White", "Wrench", "Ballroom")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewAccusation(wrong)))
	require.Equal(t, secondUser, g.currentTurn.Player.UserID)

	// 新建议不能覆盖欠着的亮牌
	next, err := g.TripleFromNames("Mr. Green", "Knife", "Study")
	require.NoError(t, err)
	err = g.TakeAction(secondUser, NewSuggestion(next))
	assert.Equal(t, apperrors.ErrRevealPending, apperrors.GetCode(err))
	assert.Same(t, owed, g.pendingReveal)

	kinds, err := g.AvailableActions(secondUser)
	require.NoError(t, err)
	assert.NotContains(t, kinds, ActionSuggestion)

	// 回应之后建议恢复可用
	require.NoError(t, g.Reveal(secondUser, revolver))
	require.NoError(t, g.TakeAction(secondUser, NewSuggestion(next)))
}

// TestSuggestionUnchallenged 没有人持有建议牌时环自动闭合
func TestSuggestionUnchallenged(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	placeIn(g, host, board.RoomStudy)

	// 建议恰好是底牌：三张牌都不在任何人手中
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(testSolution)))
	assert.Nil(t, g.pendingReveal)
}

func TestSuggestionRequiresRoom(t *testing.T) {
	g := startedGame(t)

	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)

	// 走廊起点不在Lounge里
	err = g.TakeAction(hostUser, NewSuggestion(claim))
	assert.Equal(t, apperrors.ErrNotInRoom, apperrors.GetCode(err))
}

func TestRevealValidation(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	placeIn(g, host, board.RoomLounge)

	// 没有待处理亮牌
	revolver := deck.Card{Category: deck.CategoryWeapon, Name: "Revolver"}
	err := g.Reveal(secondUser, revolver)
	assert.Equal(t, apperrors.ErrNoPendingReveal, apperrors.GetCode(err))

	g.sheets[findPlayer(t, g, secondUser).ID].MakeNote(revolver, true, true, false)
	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(claim)))

	// 轮不到的用户亮牌被拒
	err = g.Reveal(hostUser, revolver)
	assert.Equal(t, apperrors.ErrNoPendingReveal, apperrors.GetCode(err))

	// 出示手里没有的牌被拒
	knife := deck.Card{Category: deck.CategoryWeapon, Name: "Knife"}
	if g.sheets[findPlayer(t, g, secondUser).ID].Item(knife).Dealt {
		knife = deck.Card{Category: deck.CategoryWeapon, Name: "Rope"}
	}
	err = g.Reveal(secondUser, knife)
	assert.Equal(t, apperrors.ErrCardNotRevealable, apperrors.GetCode(err))
}

// TestRevealRingClosedPanics 环闭合后继续推进属于驱动方违约
func TestRevealRingClosedPanics(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	// 环上ID最大的一位，其后继回绕到ID最小的房主
	last := host
	for _, p := range g.players {
		if p.ID > last.ID {
			last = p
		}
	}
	require.Equal(t, host, g.revealRingNext(last))

	cr := &CardReveal{Claim: testSolution, Suggester: host, Revealer: last}
	assert.False(t, g.hasNext(cr))
	assert.Panics(t, func() { g.createNext(cr) })
}

// TestAccusationCorrect 命中底牌：指控者胜，其余皆负，游戏结束
func TestAccusationCorrect(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	require.NoError(t, g.TakeAction(hostUser, NewAccusation(g.Solution())))

	assert.Equal(t, StatusComplete, g.Status())
	assert.Equal(t, ResultWon, host.Result)
	for _, p := range g.Players() {
		if p != host {
			assert.Equal(t, ResultLost, p.Result)
		}
	}

	// 结束后不再接受动作
	err := g.TakeAction(secondUser, NewAccusation(g.Solution()))
	assert.Equal(t, apperrors.ErrGameComplete, apperrors.GetCode(err))
}

// TestAccusationIncorrect 未命中：指控者出局、回合立即转移；
// 全员出局时游戏结束
func TestAccusationIncorrect(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)

	wrong, err := g.TripleFromNames("Miss Scarlet", "Knife", "Kitchen")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewAccusation(wrong)))

	assert.Equal(t, ResultLost, host.Result)
	assert.Equal(t, StatusStarted, g.Status())
	assert.Equal(t, secondUser, g.currentTurn.Player.UserID)

	// 出局者不能再行动
	err = g.TakeAction(hostUser, NewMove(0))
	assert.Equal(t, apperrors.ErrPlayerEliminated, apperrors.GetCode(err))

	// 最后一名玩家也指控失败后游戏结束
	require.NoError(t, g.TakeAction(secondUser, NewAccusation(wrong)))
	assert.Equal(t, StatusComplete, g.Status())
}

func TestSequenceBumps(t *testing.T) {
	g := newTestGame(t)
	before := g.Sequence()

	require.NoError(t, g.Start(hostUser))
	afterStart := g.Sequence()
	assert.Greater(t, afterStart, before)

	require.NoError(t, g.EndTurn(hostUser))
	assert.Greater(t, g.Sequence(), afterStart)
}

func TestOnUpdateCallback(t *testing.T) {
	g := newTestGame(t)

	var gotID string
	var gotSeq uint64
	g.SetOnUpdate(func(id string, seq uint64) {
		gotID = id
		gotSeq = seq
	})

	require.NoError(t, g.Start(hostUser))
	assert.Equal(t, g.ID(), gotID)
	assert.Equal(t, g.Sequence(), gotSeq)
}

func TestManualNoteAndSheetView(t *testing.T) {
	g := startedGame(t)

	knife := deck.Card{Category: deck.CategoryWeapon, Name: "Knife"}
	require.NoError(t, g.ManualNote(hostUser, knife, true))

	view, err := g.DetectiveSheetView(hostUser)
	require.NoError(t, err)
	assert.Len(t, view.CharacterItems, 6)
	assert.Len(t, view.WeaponItems, 6)
	assert.Len(t, view.RoomItems, 9)

	// 局外用户不可见
	_, err = g.DetectiveSheetView("stranger")
	assert.Equal(t, apperrors.ErrPlayerNotInGame, apperrors.GetCode(err))
}

func TestStateProjection(t *testing.T) {
	g := startedGame(t)

	proj, err := g.StateJSON(hostUser)
	require.NoError(t, err)
	assert.Equal(t, g.ID(), proj.GameID)
	assert.Equal(t, "started", proj.Status)
	assert.True(t, proj.IsHostPlayer)
	assert.Equal(t, "alice", proj.HostPlayer.Username)
	assert.Len(t, proj.PlayerStates, 6)
	require.NotNil(t, proj.CurrentTurn)
	assert.True(t, proj.IsMyTurn)
	assert.NotEmpty(t, proj.AvailableActions)
	assert.Equal(t, "undecided", proj.MyResult)

	// 另一名玩家的视角
	proj2, err := g.StateJSON(secondUser)
	require.NoError(t, err)
	assert.False(t, proj2.IsHostPlayer)
	assert.False(t, proj2.IsMyTurn)
	assert.Empty(t, proj2.AvailableActions)

	_, err = g.StateJSON("stranger")
	assert.Equal(t, apperrors.ErrPlayerNotInGame, apperrors.GetCode(err))
}

// TestStateProjectionRevealVisibility 待处理亮牌只对亮牌人
// 展示可出示的牌，建议者只看到等待标志
func TestStateProjectionRevealVisibility(t *testing.T) {
	g := startedGame(t)
	host := findPlayer(t, g, hostUser)
	placeIn(g, host, board.RoomLounge)

	revolver := deck.Card{Category: deck.CategoryWeapon, Name: "Revolver"}
	g.sheets[findPlayer(t, g, secondUser).ID].MakeNote(revolver, true, true, false)
	claim, err := g.TripleFromNames("Miss Scarlet", "Revolver", "Lounge")
	require.NoError(t, err)
	require.NoError(t, g.TakeAction(hostUser, NewSuggestion(claim)))

	hostView, err := g.StateJSON(hostUser)
	require.NoError(t, err)
	assert.Nil(t, hostView.PendingReveal)
	assert.True(t, hostView.AwaitingReveal)

	revealerView, err := g.StateJSON(secondUser)
	require.NoError(t, err)
	require.NotNil(t, revealerView.PendingReveal)
	assert.Equal(t, "alice", revealerView.PendingReveal.Suggester)
	assert.Contains(t, revealerView.PendingReveal.PotentialCards, revolver)
	assert.False(t, revealerView.AwaitingReveal)

	// PendingRevealFor与投影一致
	rv, err := g.PendingRevealFor(secondUser)
	require.NoError(t, err)
	assert.Equal(t, "Lounge", rv.Claim.Room)
	_, err = g.PendingRevealFor(hostUser)
	assert.Equal(t, apperrors.ErrNoPendingReveal, apperrors.GetCode(err))
}
