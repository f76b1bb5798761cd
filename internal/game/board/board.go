package board

import "fmt"

// SpaceID 格子编号
type SpaceID int

// NoSpace 表示方向上没有相邻格子
const NoSpace SpaceID = -1

// CollectorKind 格子占用者类型
type CollectorKind int

const (
	KindRoom          CollectorKind = iota // 房间
	KindHallway                            // 走廊
	KindSecretPassage                      // 密道
)

// String 返回类型名称
func (k CollectorKind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindHallway:
		return "hallway"
	case KindSecretPassage:
		return "secret_passage"
	default:
		return "unknown"
	}
}

// Collector 格子占用者（房间/走廊/密道三选一）
// 房间的Name与房间卡牌同名，二者共享同一个主键
type Collector struct {
	Kind CollectorKind `json:"kind"`
	Name string        `json:"name"`
}

// Space 棋盘格子
// North/West在建盘时显式声明，South/East由对称关系推导；
// 密道格子的连接是不对称的，由建盘代码单独声明
type Space struct {
	ID    SpaceID   `json:"id"`
	X     int       `json:"x"`
	Y     int       `json:"y"`
	North SpaceID   `json:"-"`
	South SpaceID   `json:"-"`
	East  SpaceID   `json:"-"`
	West  SpaceID   `json:"-"`
	Owner Collector `json:"collector"`
}

// Neighbors 四个方向的相邻格子
type Neighbors struct {
	North SpaceID
	South SpaceID
	East  SpaceID
	West  SpaceID
}

// Board 静态棋盘图，建盘后不可变
type Board struct {
	spaces      []*Space
	byCollector map[Collector]SpaceID
	starts      map[string]SpaceID // 角色名 -> 起始格子
}

// Space 按编号取格子，编号越界属于编程错误
func (b *Board) Space(id SpaceID) *Space {
	if id < 0 || int(id) >= len(b.spaces) {
		panic(fmt.Sprintf("board: 非法的格子编号 %d", id))
	}
	return b.spaces[id]
}

// Spaces 返回全部格子（按编号升序）
func (b *Board) Spaces() []*Space {
	return b.spaces
}

// NeighborsOf 查询格子四个方向的邻居
func (b *Board) NeighborsOf(id SpaceID) Neighbors {
	s := b.Space(id)
	return Neighbors{North: s.North, South: s.South, East: s.East, West: s.West}
}

// CollectorOf 查询格子的占用者
func (b *Board) CollectorOf(id SpaceID) Collector {
	return b.Space(id).Owner
}

// SpaceOf 按占用者反查格子
// 占用者目录在部署时固定，查不到说明建盘不变量被破坏，直接panic
func (b *Board) SpaceOf(c Collector) SpaceID {
	id, ok := b.byCollector[c]
	if !ok {
		panic(fmt.Sprintf("board: 占用者不存在: %s %q", c.Kind, c.Name))
	}
	return id
}

// SpaceOfRoom 按房间名反查格子
func (b *Board) SpaceOfRoom(name string) SpaceID {
	return b.SpaceOf(Collector{Kind: KindRoom, Name: name})
}

// StartSpace 查询角色的起始格子
func (b *Board) StartSpace(character string) SpaceID {
	id, ok := b.starts[character]
	if !ok {
		panic(fmt.Sprintf("board: 角色没有起始格子: %q", character))
	}
	return id
}

// IsAdjacent 判断两个格子之间是否存在有向边
func (b *Board) IsAdjacent(from, to SpaceID) bool {
	n := b.NeighborsOf(from)
	return n.North == to || n.South == to || n.East == to || n.West == to
}

// SecretPassageBetween 判断from到to是否可以经由密道一步到达
// 密道以合成格子建模：from的某个邻居是密道格子，且to也是该密道格子的邻居
func (b *Board) SecretPassageBetween(from, to SpaceID) bool {
	n := b.NeighborsOf(from)
	for _, mid := range []SpaceID{n.North, n.South, n.East, n.West} {
		if mid == NoSpace {
			continue
		}
		if b.CollectorOf(mid).Kind != KindSecretPassage {
			continue
		}
		if mid == to {
			continue
		}
		m := b.NeighborsOf(mid)
		if m.North == to || m.South == to || m.East == to || m.West == to {
			return true
		}
	}
	return false
}
