package deck

import (
	"math/rand"
	"sort"
)

// SheetItem 侦探表上一张牌的标记状态
type SheetItem struct {
	Card            Card `json:"card"`
	Checked         bool `json:"checked"`          // 已排除/已知
	Dealt           bool `json:"dealt"`            // 开局发到手中
	ManuallyChecked bool `json:"manually_checked"` // 玩家手动标记，与系统推断区分
}

// DetectiveSheet 侦探表，每个(游戏,玩家)一份，
// 覆盖目录中全部21张牌
type DetectiveSheet struct {
	catalog *Catalog
	items   map[Card]*SheetItem
}

// NewDetectiveSheet 玩家加入游戏时创建空白侦探表
func NewDetectiveSheet(cat *Catalog) *DetectiveSheet {
	s := &DetectiveSheet{
		catalog: cat,
		items:   make(map[Card]*SheetItem, cat.Size()),
	}
	for _, c := range cat.All() {
		s.items[c] = &SheetItem{Card: c}
	}
	return s
}

// item 取一张牌的条目，目录外的牌属于数据损坏
func (s *DetectiveSheet) item(card Card) *SheetItem {
	it, ok := s.items[card]
	if !ok {
		panic("deck: card not in detective sheet: " + card.String())
	}
	return it
}

// Item 查询一张牌的标记状态副本
func (s *DetectiveSheet) Item(card Card) SheetItem {
	return *s.item(card)
}

// MakeNote 更新一张牌的标记。
// 系统记录（manual=false）总是覆盖并清除玩家的手动标记；
// dealt一旦置位不再撤销，且发牌必然同时置checked
func (s *DetectiveSheet) MakeNote(card Card, checked, dealt, manual bool) {
	it := s.item(card)
	it.Checked = checked
	if manual {
		it.ManuallyChecked = checked
	} else {
		it.ManuallyChecked = false
	}
	if dealt {
		it.Dealt = true
		it.Checked = true
	}
}

// leftByCategory 目录中指定类别尚未checked的牌
func (s *DetectiveSheet) leftByCategory(cards []Card) []Card {
	var left []Card
	for _, c := range cards {
		if !s.item(c).Checked {
			left = append(left, c)
		}
	}
	return left
}

// CharactersLeft 尚未排除的角色牌
func (s *DetectiveSheet) CharactersLeft() []Card {
	return s.leftByCategory(s.catalog.Characters())
}

// WeaponsLeft 尚未排除的凶器牌
func (s *DetectiveSheet) WeaponsLeft() []Card {
	return s.leftByCategory(s.catalog.Weapons())
}

// RoomsLeft 尚未排除的房间牌
func (s *DetectiveSheet) RoomsLeft() []Card {
	return s.leftByCategory(s.catalog.Rooms())
}

// DealtCards 开局发到本表的牌
func (s *DetectiveSheet) DealtCards() []Card {
	var dealt []Card
	for _, c := range s.catalog.All() {
		if s.item(c).Dealt {
			dealt = append(dealt, c)
		}
	}
	return dealt
}

// sortedItems 按用户可见顺序排列：未解决在前，然后手动标记、
// 开局手牌，同级按牌名字母序
func (s *DetectiveSheet) sortedItems(cards []Card) []SheetItem {
	out := make([]SheetItem, 0, len(cards))
	for _, c := range cards {
		out = append(out, *s.item(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Checked != b.Checked {
			return !a.Checked
		}
		if a.ManuallyChecked != b.ManuallyChecked {
			return a.ManuallyChecked
		}
		if a.Dealt != b.Dealt {
			return a.Dealt
		}
		return a.Card.Name < b.Card.Name
	})
	return out
}

// CharacterItems 角色牌条目，排序见sortedItems
func (s *DetectiveSheet) CharacterItems() []SheetItem {
	return s.sortedItems(s.catalog.Characters())
}

// WeaponItems 凶器牌条目
func (s *DetectiveSheet) WeaponItems() []SheetItem {
	return s.sortedItems(s.catalog.Weapons())
}

// RoomItems 房间牌条目
func (s *DetectiveSheet) RoomItems() []SheetItem {
	return s.sortedItems(s.catalog.Rooms())
}

// Deal 开局发牌：目录中除底牌外的18张，洗匀后轮流分给各人类玩家
// 的侦探表，标记dealt+checked。游戏启动时调用一次
func Deal(cat *Catalog, file *CaseFile, sheets []*DetectiveSheet, rng *rand.Rand) {
	if len(sheets) == 0 {
		return
	}
	var pool []Card
	for _, c := range cat.All() {
		if !file.Contains(c) {
			pool = append(pool, c)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for i, c := range pool {
		sheets[i%len(sheets)].MakeNote(c, true, true, false)
	}
}
