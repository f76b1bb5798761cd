package deck

import (
	"fmt"
	"math/rand"
)

// Category 卡牌类别
type Category int

const (
	CategoryCharacter Category = iota // 角色牌
	CategoryWeapon                    // 凶器牌
	CategoryRoom                      // 房间牌
)

func (c Category) String() string {
	switch c {
	case CategoryCharacter:
		return "character"
	case CategoryWeapon:
		return "weapon"
	case CategoryRoom:
		return "room"
	default:
		return "unknown"
	}
}

// Card 卡牌。同类别内按名字判等
type Card struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, c.Category)
}

// 标准角色名，同时也是角色牌牌面
var CharacterNames = []string{
	"Miss Scarlet",
	"Col. Mustard",
	"Mrs. White",
	"Mr. Green",
	"Mrs. Peacock",
	"Prof. Plum",
}

// 标准凶器名
var WeaponNames = []string{
	"Rope",
	"Lead Pipe",
	"Knife",
	"Wrench",
	"Candlestick",
	"Revolver",
}

// 标准房间名，与棋盘房间一一对应
var RoomNames = []string{
	"Study",
	"Hall",
	"Lounge",
	"Library",
	"Billiard Room",
	"Dining Room",
	"Conservatory",
	"Ballroom",
	"Kitchen",
}

// Catalog 固定的21张牌全集（6角色/6凶器/9房间），构建后不再变化
type Catalog struct {
	characters []Card
	weapons    []Card
	rooms      []Card
	byKey      map[Card]struct{}
}

// NewCatalog 构建标准卡牌目录
func NewCatalog() *Catalog {
	cat := &Catalog{byKey: make(map[Card]struct{})}
	for _, n := range CharacterNames {
		cat.characters = append(cat.characters, Card{Category: CategoryCharacter, Name: n})
	}
	for _, n := range WeaponNames {
		cat.weapons = append(cat.weapons, Card{Category: CategoryWeapon, Name: n})
	}
	for _, n := range RoomNames {
		cat.rooms = append(cat.rooms, Card{Category: CategoryRoom, Name: n})
	}
	for _, c := range cat.All() {
		cat.byKey[c] = struct{}{}
	}
	return cat
}

// Characters 全部角色牌
func (cat *Catalog) Characters() []Card { return cat.characters }

// Weapons 全部凶器牌
func (cat *Catalog) Weapons() []Card { return cat.weapons }

// Rooms 全部房间牌
func (cat *Catalog) Rooms() []Card { return cat.rooms }

// All 全部21张牌，角色/凶器/房间顺序拼接
func (cat *Catalog) All() []Card {
	all := make([]Card, 0, len(cat.characters)+len(cat.weapons)+len(cat.rooms))
	all = append(all, cat.characters...)
	all = append(all, cat.weapons...)
	all = append(all, cat.rooms...)
	return all
}

// Size 目录总牌数
func (cat *Catalog) Size() int {
	return len(cat.characters) + len(cat.weapons) + len(cat.rooms)
}

// Contains 判断一张牌是否属于目录
func (cat *Catalog) Contains(c Card) bool {
	_, ok := cat.byKey[c]
	return ok
}

// MustCard 按类别和名字取牌，不存在属于部署数据损坏，直接panic
func (cat *Catalog) MustCard(category Category, name string) Card {
	c := Card{Category: category, Name: name}
	if !cat.Contains(c) {
		panic(fmt.Sprintf("deck: no such card %s(%s)", name, category))
	}
	return c
}

// WhoWhatWhere 一组(角色,凶器,房间)三元组，
// 用于建议、指控以及底牌
type WhoWhatWhere struct {
	Character Card `json:"character"`
	Weapon    Card `json:"weapon"`
	Room      Card `json:"room"`
}

// Compare 三张牌牌名逐一相等时为真
func (w WhoWhatWhere) Compare(other WhoWhatWhere) bool {
	return w.Character.Name == other.Character.Name &&
		w.Weapon.Name == other.Weapon.Name &&
		w.Room.Name == other.Room.Name
}

// Cards 按角色/凶器/房间顺序返回三张牌
func (w WhoWhatWhere) Cards() []Card {
	return []Card{w.Character, w.Weapon, w.Room}
}

// NewRandomWhoWhatWhere 三个类别各自独立均匀抽一张
func NewRandomWhoWhatWhere(cat *Catalog, rng *rand.Rand) WhoWhatWhere {
	return WhoWhatWhere{
		Character: cat.characters[rng.Intn(len(cat.characters))],
		Weapon:    cat.weapons[rng.Intn(len(cat.weapons))],
		Room:      cat.rooms[rng.Intn(len(cat.rooms))],
	}
}
