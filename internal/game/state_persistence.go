package game

import (
	"sync"

	"gorm.io/gorm"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/models"
)

// StatePersister 对局状态持久化接口
type StatePersister interface {
	// SaveState 保存对局快照
	SaveState(g *Game) error
	// LoadState 按游戏ID恢复对局
	LoadState(gameID string) (*Game, error)
	// DeleteState 删除对局快照
	DeleteState(gameID string) error
}

// MemoryStatePersister 内存持久化，测试和单机运行用
type MemoryStatePersister struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStatePersister 创建内存持久化器
func NewMemoryStatePersister() *MemoryStatePersister {
	return &MemoryStatePersister{states: make(map[string][]byte)}
}

// SaveState 保存到内存
func (m *MemoryStatePersister) SaveState(g *Game) error {
	data, err := g.Snapshot()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[g.ID()] = data
	return nil
}

// LoadState 从内存恢复
func (m *MemoryStatePersister) LoadState(gameID string) (*Game, error) {
	m.mu.RLock()
	data, ok := m.states[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "没有游戏%s的快照", gameID)
	}
	return RestoreGame(data)
}

// DeleteState 删除内存快照
func (m *MemoryStatePersister) DeleteState(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, gameID)
	return nil
}

// DatabaseStatePersister 数据库持久化，按game_id一行快照覆盖写
type DatabaseStatePersister struct {
	db *gorm.DB
}

// NewDatabaseStatePersister 创建数据库持久化器
func NewDatabaseStatePersister(db *gorm.DB) *DatabaseStatePersister {
	return &DatabaseStatePersister{db: db}
}

// SaveState 保存快照到数据库
func (d *DatabaseStatePersister) SaveState(g *Game) error {
	data, err := g.Snapshot()
	if err != nil {
		return err
	}
	snapshot := &models.GameSnapshot{
		GameID:    g.ID(),
		Status:    int(g.Status()),
		Sequence:  g.Sequence(),
		StateData: string(data),
	}

	var existing models.GameSnapshot
	result := d.db.Where("game_id = ?", g.ID()).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		if err := d.db.Create(snapshot).Error; err != nil {
			return errors.Wrap(err, errors.ErrDatabaseInsert, "保存对局快照失败")
		}
		return nil
	}
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrDatabaseQuery, "查询对局快照失败")
	}
	updates := map[string]interface{}{
		"status":     snapshot.Status,
		"sequence":   snapshot.Sequence,
		"state_data": snapshot.StateData,
	}
	if err := d.db.Model(&existing).Updates(updates).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate, "更新对局快照失败")
	}
	return nil
}

// LoadState 从数据库恢复对局
func (d *DatabaseStatePersister) LoadState(gameID string) (*Game, error) {
	var snapshot models.GameSnapshot
	if err := d.db.Where("game_id = ?", gameID).First(&snapshot).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrNotFound, "没有游戏%s的快照", gameID)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "读取对局快照失败")
	}
	return RestoreGame([]byte(snapshot.StateData))
}

// DeleteState 删除数据库快照
func (d *DatabaseStatePersister) DeleteState(gameID string) error {
	if err := d.db.Where("game_id = ?", gameID).Delete(&models.GameSnapshot{}).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseDelete, "删除对局快照失败")
	}
	return nil
}
