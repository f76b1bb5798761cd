package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wfunc/clue-less/internal/errors"
	"github.com/wfunc/clue-less/internal/models"
)

// GameRecordRepository 对局存档仓储接口
type GameRecordRepository interface {
	// Create 写入一条对局存档
	Create(ctx context.Context, record *models.GameRecord) error
	// GetByGameID 按游戏ID查询存档
	GetByGameID(ctx context.Context, gameID string) (*models.GameRecord, error)
	// List 分页查询存档，按完成时间倒序
	List(ctx context.Context, offset, limit int) ([]*models.GameRecord, int64, error)
	// ListByUser 查询某用户主持过的对局
	ListByUser(ctx context.Context, hostUserID string, offset, limit int) ([]*models.GameRecord, int64, error)
}

type gameRecordRepository struct {
	db *gorm.DB
}

// NewGameRecordRepository 创建对局存档仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepository{db: db}
}

// Create 写入一条对局存档
func (r *gameRecordRepository) Create(ctx context.Context, record *models.GameRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "写入对局存档失败")
	}
	return nil
}

// GetByGameID 按游戏ID查询存档
func (r *gameRecordRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameRecord, error) {
	var record models.GameRecord
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrNotFound, "没有游戏%s的存档", gameID)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询对局存档失败")
	}
	return &record, nil
}

// List 分页查询存档，按完成时间倒序
func (r *gameRecordRepository) List(ctx context.Context, offset, limit int) ([]*models.GameRecord, int64, error) {
	var records []*models.GameRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&models.GameRecord{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrDatabaseQuery, "统计对局存档失败")
	}
	err := db.Order("completed_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrDatabaseQuery, "查询对局存档失败")
	}
	return records, total, nil
}

// ListByUser 查询某用户主持过的对局
func (r *gameRecordRepository) ListByUser(ctx context.Context, hostUserID string, offset, limit int) ([]*models.GameRecord, int64, error) {
	var records []*models.GameRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&models.GameRecord{}).Where("host_user_id = ?", hostUserID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrDatabaseQuery, "统计对局存档失败")
	}
	err := db.Order("completed_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrDatabaseQuery, "查询对局存档失败")
	}
	return records, total, nil
}
