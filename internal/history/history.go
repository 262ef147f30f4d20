// Package history 持久化每次智能体动作的执行记录，
// 支持本地 JSONL 文件与 MySQL 两种后端。
package history

import "context"

// Record 表示一次动作执行的落库结构。
type Record struct {
	RequestID   string `json:"request_id"`
	Connection  string `json:"connection"`
	Action      string `json:"action"`
	Instruction string `json:"instruction"`
	Status      string `json:"status"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Reply       string `json:"reply"`
	CreatedAt   int64  `json:"created_at"`
}

// Store 抽象执行记录的持久化接口。
type Store interface {
	Save(ctx context.Context, record Record) error
	ListLatest(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
