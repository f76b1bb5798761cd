package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/clue-less/internal/config"
	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/logger"
	"github.com/wfunc/clue-less/internal/models"
	"github.com/wfunc/clue-less/internal/repository"
)

// managedGame 管理器持有的对局条目
type managedGame struct {
	game        *Game
	archiveOnce sync.Once

	// 快照单飞控制：同一对局最多一个快照协程在跑，
	// 跑动期间的新变更只置脏标记，由同一协程补写最新状态
	snapMu      sync.Mutex
	snapRunning bool
	snapDirty   bool
}

// Manager 活跃对局注册表。负责对局的创建与查找、
// 序号变更通知的转发、后台快照和闲置对局回收
type Manager struct {
	mu    sync.RWMutex
	games map[string]*managedGame

	cfg       *config.GameConfig
	persister StatePersister
	records   repository.GameRecordRepository

	onUpdate UpdateFunc

	stopCh  chan struct{}
	stopped sync.Once
	log     *zap.Logger
}

// NewManager 创建对局管理器。persister和records可以为nil，
// 此时跳过快照与归档
func NewManager(cfg *config.GameConfig, persister StatePersister, records repository.GameRecordRepository) *Manager {
	return &Manager{
		games:     make(map[string]*managedGame),
		cfg:       cfg,
		persister: persister,
		records:   records,
		stopCh:    make(chan struct{}),
		log:       logger.GetModuleLogger("game_manager"),
	}
}

// SetOnUpdate 注册全局序号变更回调（WebSocket推送用）
func (m *Manager) SetOnUpdate(fn UpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// register 挂接通知链并纳入管理
func (m *Manager) register(g *Game) {
	entry := &managedGame{game: g}
	g.SetOnUpdate(func(gameID string, seq uint64) {
		m.mu.RLock()
		fn := m.onUpdate
		m.mu.RUnlock()
		if fn != nil {
			fn(gameID, seq)
		}
		// 快照在后台保存：总是写入保存时刻的最新状态，
		// 不能在对局锁内同步执行
		if m.persister != nil && m.cfg.SnapshotEnabled {
			m.scheduleSnapshot(entry)
		}
	})
	m.games[g.ID()] = entry
}

// CreateGame 创建新对局，超过最大并行局数时拒绝
func (m *Manager) CreateGame(name, hostUserID, hostUsername, character string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxGames > 0 && len(m.games) >= m.cfg.MaxGames {
		return nil, errors.New(errors.ErrRateLimitExceeded, "对局数量已达上限")
	}
	g, err := NewGame(name, hostUserID, hostUsername, character)
	if err != nil {
		return nil, err
	}
	m.register(g)
	return g, nil
}

// GetGame 查找对局；不在内存时尝试从快照恢复
func (m *Manager) GetGame(gameID string) (*Game, error) {
	m.mu.RLock()
	entry, ok := m.games[gameID]
	m.mu.RUnlock()
	if ok {
		return entry.game, nil
	}

	if m.persister != nil {
		g, err := m.persister.LoadState(gameID)
		if err == nil {
			m.mu.Lock()
			// 恢复期间可能有并发注册，保留已有的
			if existing, found := m.games[gameID]; found {
				m.mu.Unlock()
				return existing.game, nil
			}
			m.register(g)
			m.mu.Unlock()
			m.log.Info("game_restored", zap.String("game_id", gameID))
			return g, nil
		}
	}
	return nil, errors.Newf(errors.ErrNotFound, "游戏%s不存在", gameID)
}

// ListOpenGames 大厅列表：尚未开始、可加入的对局
func (m *Manager) ListOpenGames() []*Game {
	m.mu.RLock()
	all := make([]*Game, 0, len(m.games))
	for _, entry := range m.games {
		all = append(all, entry.game)
	}
	m.mu.RUnlock()

	var open []*Game
	for _, g := range all {
		if g.Status() == StatusNotStarted {
			open = append(open, g)
		}
	}
	return open
}

// Count 当前管理的对局数
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// scheduleSnapshot 触发一次后台快照。已有协程在写时只置脏标记，
// 避免并发写同一行导致旧序号覆盖新序号
func (m *Manager) scheduleSnapshot(entry *managedGame) {
	entry.snapMu.Lock()
	if entry.snapRunning {
		entry.snapDirty = true
		entry.snapMu.Unlock()
		return
	}
	entry.snapRunning = true
	entry.snapMu.Unlock()
	go m.snapshotLoop(entry)
}

// snapshotLoop 单飞快照协程：保存后发现期间又有变更则再存一轮，
// 保证最终落库的是最新状态
func (m *Manager) snapshotLoop(entry *managedGame) {
	for {
		m.snapshot(entry)
		entry.snapMu.Lock()
		if !entry.snapDirty {
			entry.snapRunning = false
			entry.snapMu.Unlock()
			return
		}
		entry.snapDirty = false
		entry.snapMu.Unlock()
	}
}

// snapshot 保存快照；对局结束时顺带归档
func (m *Manager) snapshot(entry *managedGame) {
	g := entry.game
	if err := m.persister.SaveState(g); err != nil {
		m.log.Error("snapshot_failed",
			zap.String("game_id", g.ID()),
			zap.Error(err))
	}
	if g.Status() == StatusComplete {
		entry.archiveOnce.Do(func() { m.archive(g) })
	}
}

// archive 对局结束后写入存档行，底牌此时才落库公开
func (m *Manager) archive(g *Game) {
	if m.records == nil {
		return
	}
	players := g.Players()
	humans := 0
	winner := ""
	for _, p := range players {
		if !p.Ghost {
			humans++
		}
		if p.Result == ResultWon {
			winner = p.Character.Name
		}
	}
	solution := g.Solution()
	now := time.Now()
	record := &models.GameRecord{
		GameID:      g.ID(),
		Name:        g.Name(),
		HostUserID:  g.HostPlayer().UserID,
		Status:      int(g.Status()),
		Sequence:    g.Sequence(),
		PlayerCount: humans,
		WinnerName:  winner,
		Solution: models.JSONMap{
			"character": solution.Character.Name,
			"weapon":    solution.Weapon.Name,
			"room":      solution.Room.Name,
		},
		CompletedAt: &now,
	}
	if err := m.records.Create(context.Background(), record); err != nil {
		m.log.Error("archive_failed",
			zap.String("game_id", g.ID()),
			zap.Error(err))
		return
	}
	logger.LogGameEvent("game_archived", g.ID(), map[string]interface{}{
		"winner": winner,
	})
}

// StartCleanupTask 启动闲置对局回收循环
func (m *Manager) StartCleanupTask() {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.cleanup()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop 停止后台任务
func (m *Manager) Stop() {
	m.stopped.Do(func() { close(m.stopCh) })
}

// cleanup 回收闲置超时的对局：结束的确保归档，
// 未结束的按放弃处理，随后移出内存并删除快照
func (m *Manager) cleanup() {
	timeout := m.cfg.IdleTimeout
	if timeout <= 0 {
		timeout = 2 * time.Hour
	}

	// 先在管理器锁外判定闲置，避免和通知链上的对局锁交叉
	m.mu.RLock()
	entries := make(map[string]*managedGame, len(m.games))
	for id, entry := range m.games {
		entries[id] = entry
	}
	m.mu.RUnlock()

	var stale []*managedGame
	var staleIDs []string
	for id, entry := range entries {
		if time.Since(entry.game.UpdatedAt()) > timeout {
			stale = append(stale, entry)
			staleIDs = append(staleIDs, id)
		}
	}

	m.mu.Lock()
	for _, id := range staleIDs {
		delete(m.games, id)
	}
	m.mu.Unlock()

	for _, entry := range stale {
		g := entry.game
		entry.archiveOnce.Do(func() { m.archive(g) })
		if m.persister != nil {
			if err := m.persister.DeleteState(g.ID()); err != nil {
				m.log.Error("delete_snapshot_failed",
					zap.String("game_id", g.ID()),
					zap.Error(err))
			}
		}
		m.log.Info("game_reclaimed",
			zap.String("game_id", g.ID()),
			zap.String("status", g.Status().String()))
	}
}
