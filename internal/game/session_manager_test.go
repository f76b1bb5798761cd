package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/clue-less/internal/config"
	apperrors "github.com/wfunc/clue-less/internal/errors"
)

func testManagerConfig() *config.GameConfig {
	return &config.GameConfig{
		MinPlayers:      2,
		MaxGames:        4,
		IdleTimeout:     time.Hour,
		CleanupInterval: time.Minute,
		SnapshotEnabled: false,
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(testManagerConfig(), nil, nil)
	defer m.Stop()

	g, err := m.CreateGame("room-1", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	got, err := m.GetGame(g.ID())
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = m.GetGame("missing")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.GetCode(err))
}

func TestManagerGameLimit(t *testing.T) {
	cfg := testManagerConfig()
	cfg.MaxGames = 1
	m := NewManager(cfg, nil, nil)
	defer m.Stop()

	_, err := m.CreateGame("room-1", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)

	_, err = m.CreateGame("room-2", secondUser, "bob", "Mrs. Peacock")
	assert.Equal(t, apperrors.ErrRateLimitExceeded, apperrors.GetCode(err))
}

func TestManagerListOpenGames(t *testing.T) {
	m := NewManager(testManagerConfig(), nil, nil)
	defer m.Stop()

	g1, err := m.CreateGame("open", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	g2, err := m.CreateGame("started", secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)

	_, err = g2.AddPlayer(thirdUser, "carol", "Mrs. White")
	require.NoError(t, err)
	require.NoError(t, g2.Start(secondUser))

	open := m.ListOpenGames()
	require.Len(t, open, 1)
	assert.Equal(t, g1.ID(), open[0].ID())
}

// TestManagerRestoresFromPersister 不在内存的对局从快照恢复
func TestManagerRestoresFromPersister(t *testing.T) {
	persister := NewMemoryStatePersister()
	m := NewManager(testManagerConfig(), persister, nil)
	defer m.Stop()

	g := startedGame(t)
	require.NoError(t, persister.SaveState(g))

	restored, err := m.GetGame(g.ID())
	require.NoError(t, err)
	assert.Equal(t, g.ID(), restored.ID())
	assert.Equal(t, g.Sequence(), restored.Sequence())
	assert.Equal(t, 1, m.Count())
}

// TestManagerCleanup 闲置超时的对局被移出并删除快照
func TestManagerCleanup(t *testing.T) {
	cfg := testManagerConfig()
	cfg.IdleTimeout = time.Nanosecond
	persister := NewMemoryStatePersister()
	m := NewManager(cfg, persister, nil)
	defer m.Stop()

	g, err := m.CreateGame("stale", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	require.NoError(t, persister.SaveState(g))

	time.Sleep(time.Millisecond)
	m.cleanup()

	assert.Equal(t, 0, m.Count())
	_, err = persister.LoadState(g.ID())
	assert.Error(t, err)
}

// TestManagerSnapshotBurstKeepsLatest 连续变更下快照单飞，
// 最终落库的始终是最新序号
func TestManagerSnapshotBurstKeepsLatest(t *testing.T) {
	cfg := testManagerConfig()
	cfg.SnapshotEnabled = true
	persister := NewMemoryStatePersister()
	m := NewManager(cfg, persister, nil)
	defer m.Stop()

	g, err := m.CreateGame("burst", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	_, err = g.AddPlayer(secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)
	require.NoError(t, g.Start(hostUser))

	// 一串密集变更，每次都触发快照调度
	for i := 0; i < 10; i++ {
		require.NoError(t, g.EndTurn(hostUser))
		require.NoError(t, g.EndTurn(secondUser))
	}

	want := g.Sequence()
	assert.Eventually(t, func() bool {
		saved, loadErr := persister.LoadState(g.ID())
		return loadErr == nil && saved.Sequence() == want
	}, time.Second, 5*time.Millisecond)
}

func TestManagerOnUpdateForwarded(t *testing.T) {
	m := NewManager(testManagerConfig(), nil, nil)
	defer m.Stop()

	var lastSeq uint64
	m.SetOnUpdate(func(gameID string, seq uint64) {
		lastSeq = seq
	})

	g, err := m.CreateGame("notify", hostUser, "alice", "Col. Mustard")
	require.NoError(t, err)
	_, err = g.AddPlayer(secondUser, "bob", "Mrs. Peacock")
	require.NoError(t, err)
	assert.Equal(t, g.Sequence(), lastSeq)
}
