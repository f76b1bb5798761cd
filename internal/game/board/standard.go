package board

// 标准Clue-Less棋盘的房间名（与房间卡牌同名）
const (
	RoomStudy        = "Study"
	RoomHall         = "Hall"
	RoomLounge       = "Lounge"
	RoomLibrary      = "Library"
	RoomBilliardRoom = "Billiard Room"
	RoomDiningRoom   = "Dining Room"
	RoomConservatory = "Conservatory"
	RoomBallroom     = "Ballroom"
	RoomKitchen      = "Kitchen"
)

// 标准棋盘的密道名
const (
	PassageStudyKitchen       = "Study-Kitchen"
	PassageLoungeConservatory = "Lounge-Conservatory"
)

// builder 建盘辅助结构
type builder struct {
	b *Board
}

// addSpace 追加一个格子并登记占用者
func (bd *builder) addSpace(x, y int, c Collector) SpaceID {
	id := SpaceID(len(bd.b.spaces))
	bd.b.spaces = append(bd.b.spaces, &Space{
		ID: id, X: x, Y: y,
		North: NoSpace, South: NoSpace, East: NoSpace, West: NoSpace,
		Owner: c,
	})
	bd.b.byCollector[c] = id
	return id
}

// linkNorth 声明b在a的北侧，并推导反向连接
func (bd *builder) linkNorth(a, b SpaceID) {
	bd.b.spaces[a].North = b
	bd.b.spaces[b].South = a
}

// linkWest 声明b在a的西侧，并推导反向连接
func (bd *builder) linkWest(a, b SpaceID) {
	bd.b.spaces[a].West = b
	bd.b.spaces[b].East = a
}

func room(name string) Collector {
	return Collector{Kind: KindRoom, Name: name}
}

func hallway(name string) Collector {
	return Collector{Kind: KindHallway, Name: name}
}

func passage(name string) Collector {
	return Collector{Kind: KindSecretPassage, Name: name}
}

// NewStandardBoard 构建标准Clue-Less棋盘
// 5x5网格：9个房间、12条走廊，外加2个用于密道回绕的合成格子。
// 布局与连接关系严格按照原版棋盘定义
func NewStandardBoard() *Board {
	bd := &builder{b: &Board{
		byCollector: make(map[Collector]SpaceID),
		starts:      make(map[string]SpaceID),
	}}

	// 第一行
	study := bd.addSpace(1, 1, room(RoomStudy))
	h01 := bd.addSpace(2, 1, hallway("Hallway-01"))
	hall := bd.addSpace(3, 1, room(RoomHall))
	h02 := bd.addSpace(4, 1, hallway("Hallway-02"))
	lounge := bd.addSpace(5, 1, room(RoomLounge))
	bd.linkWest(h01, study)
	bd.linkWest(hall, h01)
	bd.linkWest(h02, hall)
	bd.linkWest(lounge, h02)

	// 第二行（密道格子稍后创建）
	h03 := bd.addSpace(1, 2, hallway("Hallway-03"))
	h04 := bd.addSpace(3, 2, hallway("Hallway-04"))
	h05 := bd.addSpace(5, 2, hallway("Hallway-05"))
	bd.linkNorth(h03, study)
	bd.linkNorth(h04, hall)
	bd.linkNorth(h05, lounge)

	// 第三行
	library := bd.addSpace(1, 3, room(RoomLibrary))
	h06 := bd.addSpace(2, 3, hallway("Hallway-06"))
	billiard := bd.addSpace(3, 3, room(RoomBilliardRoom))
	h07 := bd.addSpace(4, 3, hallway("Hallway-07"))
	dining := bd.addSpace(5, 3, room(RoomDiningRoom))
	bd.linkNorth(library, h03)
	bd.linkWest(h06, library)
	bd.linkNorth(billiard, h04)
	bd.linkWest(billiard, h06)
	bd.linkWest(h07, billiard)
	bd.linkNorth(dining, h05)
	bd.linkWest(dining, h07)

	// 第四行
	h08 := bd.addSpace(1, 4, hallway("Hallway-08"))
	h09 := bd.addSpace(3, 4, hallway("Hallway-09"))
	h10 := bd.addSpace(5, 4, hallway("Hallway-10"))
	bd.linkNorth(h08, library)
	bd.linkNorth(h09, billiard)
	bd.linkNorth(h10, dining)

	// 第五行
	conservatory := bd.addSpace(1, 5, room(RoomConservatory))
	h11 := bd.addSpace(2, 5, hallway("Hallway-11"))
	ballroom := bd.addSpace(3, 5, room(RoomBallroom))
	h12 := bd.addSpace(4, 5, hallway("Hallway-12"))
	kitchen := bd.addSpace(5, 5, room(RoomKitchen))
	bd.linkNorth(conservatory, h08)
	bd.linkWest(h11, conservatory)
	bd.linkNorth(ballroom, h09)
	bd.linkWest(ballroom, h11)
	bd.linkWest(h12, ballroom)
	bd.linkNorth(kitchen, h10)
	bd.linkWest(kitchen, h12)

	// 密道合成格子。位置(2,2)和(4,2)只是占位，
	// 连接关系让两个互不相邻的房间可以一步互达
	psgSK := bd.addSpace(2, 2, passage(PassageStudyKitchen))
	bd.linkWest(psgSK, kitchen)
	bd.linkNorth(study, psgSK)

	psgLC := bd.addSpace(4, 2, passage(PassageLoungeConservatory))
	bd.linkNorth(lounge, psgLC)
	bd.linkWest(conservatory, psgLC)

	// 角色起始格子
	bd.b.starts["Miss Scarlet"] = h02
	bd.b.starts["Col. Mustard"] = h05
	bd.b.starts["Mrs. White"] = h12
	bd.b.starts["Mr. Green"] = h11
	bd.b.starts["Mrs. Peacock"] = h08
	bd.b.starts["Prof. Plum"] = h03

	return bd.b
}
