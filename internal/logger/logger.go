// Package logger 提供写入文件的结构化日志。
// TUI 占用了标准输出，所以日志只能写到文件里。
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	current  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel 解析配置中的日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init 打开日志文件并替换全局 logger，可重复调用
func Init(path string, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败 %s: %w", path, err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	levelVar.Set(ParseLevel(level))
	current = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	current.Info("logger initialized", "path", path, "level", levelVar.Level().String())
	return nil
}

// Get 返回当前 logger，Init 之前返回丢弃一切输出的 logger
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// WithRequestID 返回带 request_id 字段的 logger
func WithRequestID(id string) *slog.Logger {
	return Get().With("request_id", id)
}

// Close 关闭日志文件
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}
