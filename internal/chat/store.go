package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store 只追加的会话历史
//
// 写入口 append 不导出，只有同包的 Controller 能追加消息。
type Store struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
	events   bus
}

// StoreOption Store 配置项
type StoreOption func(*Store)

// WithClock 替换时间来源，测试用
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore 创建空的会话历史
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe 订阅 MessageAppended 事件，返回取消订阅函数
func (s *Store) Subscribe(fn Listener) func() {
	return s.events.subscribe(fn)
}

// append 把消息加到末尾，补齐 ID 和时间戳，返回新的只读历史
// 订阅者在返回之前被同步通知
func (s *Store) append(msg Message) []Message {
	s.mu.Lock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	// 时间戳不递减
	if n := len(s.messages); n > 0 && msg.Timestamp.Before(s.messages[n-1].Timestamp) {
		msg.Timestamp = s.messages[n-1].Timestamp
	}
	s.messages = append(s.messages, msg)
	index := len(s.messages) - 1
	view := s.snapshotLocked()
	s.mu.Unlock()

	s.events.publish(MessageAppended{Message: msg, Index: index})
	return view
}

// Messages 返回历史的副本，按显示顺序排列
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len 返回消息数量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last 返回最后一条消息
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

func (s *Store) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
