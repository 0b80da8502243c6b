// Package storage 提供客户端持久化的键值存储，目前只用来记住主题偏好。
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// KV 键值存储接口
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// FileKV 以 yaml map 形式保存在单个文件中
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV 创建文件存储，文件在第一次 Set 时才创建
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path 返回存储文件路径
func (s *FileKV) Path() string {
	return s.path
}

func (s *FileKV) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if old, ok := values[key]; ok && old == value {
		return nil
	}
	values[key] = value
	return s.write(values)
}

func (s *FileKV) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取存储文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("解析存储文件失败: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// write 先写临时文件再 rename，避免写一半的文件
func (s *FileKV) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建存储目录失败: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("序列化存储失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入存储文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("写入存储文件失败: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换存储文件失败: %w", err)
	}
	return nil
}

// MemoryKV 内存实现，用于测试和无法写磁盘的场景
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (s *MemoryKV) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes 返回 Set 被调用的次数
func (s *MemoryKV) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
