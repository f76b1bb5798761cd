package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/clue-less/internal/errors"
)

func TestGameRecordRepository_Create(t *testing.T) {
	db := TestDB(t)
	repo := NewGameRecordRepository(db)
	ctx := context.Background()

	record := CreateTestGameRecord("game-001", "user-host", time.Now())
	err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, record.ID)

	// 验证存档已写入
	found, err := repo.GetByGameID(ctx, "game-001")
	require.NoError(t, err)
	AssertGameRecord(t, record, found)
	assert.Equal(t, "Prof. Plum", found.Solution["character"])
}

func TestGameRecordRepository_CreateDuplicate(t *testing.T) {
	db := TestDB(t)
	repo := NewGameRecordRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("game-dup", "user-host", time.Now())))

	// game_id 唯一索引拒绝重复写入
	err := repo.Create(ctx, CreateTestGameRecord("game-dup", "user-host", time.Now()))
	require.Error(t, err)
	assert.Equal(t, errors.ErrDatabaseInsert, errors.GetCode(err))
}

func TestGameRecordRepository_GetByGameID_NotFound(t *testing.T) {
	db := TestDB(t)
	repo := NewGameRecordRepository(db)

	_, err := repo.GetByGameID(context.Background(), "no-such-game")
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFound, errors.GetCode(err))
}

func TestGameRecordRepository_List(t *testing.T) {
	db := TestDB(t)
	repo := NewGameRecordRepository(db)
	ctx := context.Background()

	// 按完成时间错开写入5条存档
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := CreateTestGameRecord(fmt.Sprintf("game-%03d", i), "user-host", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, record))
	}

	records, total, err := repo.List(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, records, 3)

	// 最近完成的排在最前
	assert.Equal(t, "game-004", records[0].GameID)
	assert.Equal(t, "game-003", records[1].GameID)

	// 第二页
	records, total, err = repo.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, records, 2)
}

func TestGameRecordRepository_ListByUser(t *testing.T) {
	db := TestDB(t)
	repo := NewGameRecordRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("game-a1", "user-alice", now)))
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("game-a2", "user-alice", now.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("game-b1", "user-bob", now)))

	records, total, err := repo.ListByUser(ctx, "user-alice", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "user-alice", r.HostUserID)
	}

	records, total, err = repo.ListByUser(ctx, "user-nobody", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}
