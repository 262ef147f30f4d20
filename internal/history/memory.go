package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxMemoryRecords 限制常驻内存的记录条数，磁盘文件不截断。
const maxMemoryRecords = 512

// MemoryStore 使用本地 JSONL 文件持久化记录，方便不依赖数据库的迭代开发。
type MemoryStore struct {
	mu       sync.RWMutex
	dataFile string
	records  []Record
}

// NewMemoryStore 创建文件后端的记录仓库。
func NewMemoryStore(dataDir string) (*MemoryStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	path := filepath.Join(dataDir, "actions.log")
	store := &MemoryStore{dataFile: path}
	if err := store.loadFromDisk(); err != nil {
		return nil, err
	}
	return store, nil
}

// Save 以追加写的方式记录执行结果。
func (m *MemoryStore) Save(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.OpenFile(m.dataFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开记录文件失败: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化执行记录失败: %w", err)
	}

	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("写入记录文件失败: %w", err)
	}

	m.records = append([]Record{record}, m.records...)
	if len(m.records) > maxMemoryRecords {
		m.records = m.records[:maxMemoryRecords]
	}
	return nil
}

// ListLatest 返回最近的执行记录，按时间倒序排列。
func (m *MemoryStore) ListLatest(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}

	results := make([]Record, limit)
	copy(results, m.records[:limit])
	return results, nil
}

// Close 实现 Store 接口，文件后端没有常驻连接。
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) loadFromDisk() error {
	file, err := os.OpenFile(m.dataFile, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("读取记录文件失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var restored []Record
	for scanner.Scan() {
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		restored = append([]Record{record}, restored...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("解析记录文件失败: %w", err)
	}

	if len(restored) > maxMemoryRecords {
		restored = restored[:maxMemoryRecords]
	}
	if len(restored) > 0 {
		m.records = restored
	}
	return nil
}
