package game

import (
	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/game/deck"
)

// RevealStatus 亮牌记录的状态
type RevealStatus int

const (
	RevealPending RevealStatus = iota // 等待亮牌
	RevealDone                       // 已完成
)

func (s RevealStatus) String() string {
	if s == RevealDone {
		return "done"
	}
	return "pending"
}

// CardReveal 一次建议触发的单个亮牌记录。
// 按环序逐人开启，被亮出的牌只写入建议者自己的侦探表
type CardReveal struct {
	Claim        deck.WhoWhatWhere
	Suggester    *Player
	Revealer     *Player
	RevealedCard *deck.Card
	Status       RevealStatus
}

// revealRingNext 亮牌环的下一位：按玩家ID升序回绕，
// 幽灵玩家也在环内（与回合轮转不同，它们可能持牌）
func (g *Game) revealRingNext(after *Player) *Player {
	var next *Player
	var first *Player
	for _, p := range g.players {
		if first == nil || p.ID < first.ID {
			first = p
		}
		if p.ID > after.ID && (next == nil || p.ID < next.ID) {
			next = p
		}
	}
	if next == nil {
		return first
	}
	return next
}

// potentialCards 该亮牌人能够出示的牌：
// 三张建议牌与其开局手牌的交集。幽灵没有手牌时交集为空
func (g *Game) potentialCards(cr *CardReveal) []deck.Card {
	sheet, ok := g.sheets[cr.Revealer.ID]
	if !ok {
		return nil
	}
	var cards []deck.Card
	for _, c := range cr.Claim.Cards() {
		if sheet.Item(c).Dealt {
			cards = append(cards, c)
		}
	}
	return cards
}

// hasNext 环上的下一位尚未回到建议者本人
func (g *Game) hasNext(cr *CardReveal) bool {
	return g.revealRingNext(cr.Revealer) != cr.Suggester
}

// createNext 为环上的下一位开启亮牌记录。
// 环已闭合时继续调用属于驱动方违约，直接panic
func (g *Game) createNext(cr *CardReveal) *CardReveal {
	next := g.revealRingNext(cr.Revealer)
	if next == cr.Suggester {
		panic(errors.New(errors.ErrRevealRingClosed, "亮牌环已闭合"))
	}
	return &CardReveal{
		Claim:     cr.Claim,
		Suggester: cr.Suggester,
		Revealer:  next,
		Status:    RevealPending,
	}
}

// beginRevealChain 建议生效后启动亮牌链：从建议者的环序后继开始，
// 无牌可出的直接关闭并推进，停在第一个能出牌的人；
// 环回到建议者则无人能反驳，建议成立。
// 进入前pendingReveal必为nil，旧的亮牌由建议校验挡在前面
func (g *Game) beginRevealChain(suggester *Player, claim deck.WhoWhatWhere) {
	first := g.revealRingNext(suggester)
	if first == suggester {
		return
	}
	cr := &CardReveal{
		Claim:     claim,
		Suggester: suggester,
		Revealer:  first,
		Status:    RevealPending,
	}
	for {
		if len(g.potentialCards(cr)) > 0 {
			g.pendingReveal = cr
			return
		}
		cr.Status = RevealDone
		if !g.hasNext(cr) {
			return
		}
		cr = g.createNext(cr)
	}
}

// resolveReveal 亮牌人选择一张牌出示：校验其确实可出，
// 记到建议者的侦探表上并关闭整条链
func (g *Game) resolveReveal(cr *CardReveal, card deck.Card) error {
	ok := false
	for _, c := range g.potentialCards(cr) {
		if c == card {
			ok = true
			break
		}
	}
	if !ok {
		return errors.Newf(errors.ErrCardNotRevealable, "无法出示%s", card.Name)
	}
	sheet, found := g.sheets[cr.Suggester.ID]
	if !found {
		panic(errors.Newf(errors.ErrMissingSheet, "玩家%d缺少侦探表", cr.Suggester.ID))
	}
	sheet.MakeNote(card, true, false, false)
	cr.RevealedCard = &card
	cr.Status = RevealDone
	g.pendingReveal = nil
	return nil
}
