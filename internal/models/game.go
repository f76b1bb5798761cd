package models

import (
	"time"
)

// GameRecord 对局存档表
// 对局结束（或被回收）时写入一行，供战绩查询和外部归档进程使用
type GameRecord struct {
	BaseModel
	GameID      string     `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	Name        string     `gorm:"size:100" json:"name"`
	HostUserID  string     `gorm:"index;size:64" json:"host_user_id"`
	Status      int        `gorm:"not null" json:"status"` // 0未开始 1进行中 2已结束
	Sequence    uint64     `gorm:"not null" json:"sequence"`
	PlayerCount int        `json:"player_count"`
	WinnerName  string     `gorm:"size:50" json:"winner_name"` // 获胜角色名，无人获胜为空
	Solution    JSONMap    `gorm:"type:json" json:"solution"`  // 结案后公开的案件档案
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "game_records"
}

// GameSnapshot 对局状态快照表（用于持久化游戏状态）
type GameSnapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    string    `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	Status    int       `gorm:"not null" json:"status"`
	Sequence  uint64    `gorm:"not null" json:"sequence"`
	StateData string    `gorm:"type:text" json:"state_data"` // JSON格式的完整对局状态
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (GameSnapshot) TableName() string {
	return "game_snapshots"
}
