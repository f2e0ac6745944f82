package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore 旧版的兜底持久化：服务器本地 JSON 文件，{"orders": [...]} 包裹。
// 没有任何合并逻辑，整份覆盖；不接入同步循环，仅作为备用路径保留。
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore 创建文件存储，父目录不存在时先建出来
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &FileStore{path: path}, nil
}

type fileEnvelope struct {
	Orders json.RawMessage `json:"orders"`
}

// Read 返回文件里的原始订单数组；文件不存在时返回空数组
func (s *FileStore) Read() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return json.RawMessage("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Orders == nil {
		return json.RawMessage("[]"), nil
	}
	return env.Orders, nil
}

// Write 整份覆盖文件内容，orders 必须是 JSON 数组
func (s *FileStore) Write(orders json.RawMessage) error {
	var probe []json.RawMessage
	if err := json.Unmarshal(orders, &probe); err != nil {
		return fmt.Errorf("write: payload is not an array: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(fileEnvelope{Orders: orders}, "", "  ")
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
