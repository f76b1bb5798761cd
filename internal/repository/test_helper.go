package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/clue-less/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建内存测试数据库
func TestDB(t *testing.T) *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.GameRecord{},
		&models.GameSnapshot{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestGameRecord 创建测试对局存档
func CreateTestGameRecord(gameID, hostUserID string, completedAt time.Time) *models.GameRecord {
	return &models.GameRecord{
		GameID:      gameID,
		Name:        "测试对局 " + gameID,
		HostUserID:  hostUserID,
		Status:      2,
		Sequence:    42,
		PlayerCount: 3,
		WinnerName:  "Miss Scarlet",
		Solution: models.JSONMap{
			"character": "Prof. Plum",
			"weapon":    "Rope",
			"room":      "Study",
		},
		CompletedAt: &completedAt,
	}
}

// AssertGameRecord 验证对局存档
func AssertGameRecord(t *testing.T, expected, actual *models.GameRecord) {
	assert.Equal(t, expected.GameID, actual.GameID)
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.HostUserID, actual.HostUserID)
	assert.Equal(t, expected.Status, actual.Status)
	assert.Equal(t, expected.WinnerName, actual.WinnerName)
}
