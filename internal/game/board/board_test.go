package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStandardBoardLayout 测试标准棋盘的格子数量和房间分布
func TestStandardBoardLayout(t *testing.T) {
	b := NewStandardBoard()

	// 9房间 + 12走廊 + 2密道格子
	assert.Len(t, b.Spaces(), 23)

	rooms := []string{
		RoomStudy, RoomHall, RoomLounge,
		RoomLibrary, RoomBilliardRoom, RoomDiningRoom,
		RoomConservatory, RoomBallroom, RoomKitchen,
	}
	for _, name := range rooms {
		id := b.SpaceOfRoom(name)
		assert.Equal(t, KindRoom, b.CollectorOf(id).Kind)
		assert.Equal(t, name, b.CollectorOf(id).Name)
	}
}

// TestNeighborSymmetry 测试所有连接都是双向对称的
func TestNeighborSymmetry(t *testing.T) {
	b := NewStandardBoard()

	for _, s := range b.Spaces() {
		n := b.NeighborsOf(s.ID)
		if n.North != NoSpace {
			assert.Equal(t, s.ID, b.NeighborsOf(n.North).South, "space %d north", s.ID)
		}
		if n.South != NoSpace {
			assert.Equal(t, s.ID, b.NeighborsOf(n.South).North, "space %d south", s.ID)
		}
		if n.East != NoSpace {
			assert.Equal(t, s.ID, b.NeighborsOf(n.East).West, "space %d east", s.ID)
		}
		if n.West != NoSpace {
			assert.Equal(t, s.ID, b.NeighborsOf(n.West).East, "space %d west", s.ID)
		}
	}
}

// TestRoomAdjacency 测试房间与走廊的相邻关系
func TestRoomAdjacency(t *testing.T) {
	b := NewStandardBoard()

	study := b.SpaceOfRoom(RoomStudy)
	hall := b.SpaceOfRoom(RoomHall)
	billiard := b.SpaceOfRoom(RoomBilliardRoom)

	// Study和Hall之间隔一条走廊
	assert.False(t, b.IsAdjacent(study, hall))
	h01 := b.NeighborsOf(study).East
	require.NotEqual(t, NoSpace, h01)
	assert.Equal(t, KindHallway, b.CollectorOf(h01).Kind)
	assert.True(t, b.IsAdjacent(h01, hall))

	// Billiard Room位于中央，四面都是走廊
	n := b.NeighborsOf(billiard)
	for _, id := range []SpaceID{n.North, n.South, n.East, n.West} {
		require.NotEqual(t, NoSpace, id)
		assert.Equal(t, KindHallway, b.CollectorOf(id).Kind)
	}
}

// TestSecretPassages 测试对角房间之间的密道
func TestSecretPassages(t *testing.T) {
	b := NewStandardBoard()

	study := b.SpaceOfRoom(RoomStudy)
	kitchen := b.SpaceOfRoom(RoomKitchen)
	lounge := b.SpaceOfRoom(RoomLounge)
	conservatory := b.SpaceOfRoom(RoomConservatory)

	// 双向可达
	assert.True(t, b.SecretPassageBetween(study, kitchen))
	assert.True(t, b.SecretPassageBetween(kitchen, study))
	assert.True(t, b.SecretPassageBetween(lounge, conservatory))
	assert.True(t, b.SecretPassageBetween(conservatory, lounge))

	// 非对角房间之间没有密道
	assert.False(t, b.SecretPassageBetween(study, conservatory))
	assert.False(t, b.SecretPassageBetween(lounge, kitchen))
	assert.False(t, b.SecretPassageBetween(study, lounge))
}

// TestStartSpaces 测试六个角色的起始格子
func TestStartSpaces(t *testing.T) {
	b := NewStandardBoard()

	cases := map[string][2]int{
		"Miss Scarlet": {4, 1},
		"Col. Mustard": {5, 2},
		"Mrs. White":   {4, 5},
		"Mr. Green":    {2, 5},
		"Mrs. Peacock": {1, 4},
		"Prof. Plum":   {1, 2},
	}
	for character, pos := range cases {
		s := b.Space(b.StartSpace(character))
		assert.Equal(t, pos[0], s.X, character)
		assert.Equal(t, pos[1], s.Y, character)
		// 起始格子都是走廊
		assert.Equal(t, KindHallway, s.Owner.Kind, character)
	}
}

// TestFatalLookups 测试非法查询触发panic
func TestFatalLookups(t *testing.T) {
	b := NewStandardBoard()

	assert.Panics(t, func() { b.Space(SpaceID(99)) })
	assert.Panics(t, func() { b.SpaceOfRoom("Garage") })
	assert.Panics(t, func() { b.StartSpace("Nobody") })
}
