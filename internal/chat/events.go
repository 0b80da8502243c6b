package chat

import "sync"

// Event 会话事件
type Event interface {
	eventName() string
}

// MessageAppended 消息已追加到历史
type MessageAppended struct {
	Message Message
	Index   int
}

// RequestStateChanged 请求状态变化
type RequestStateChanged struct {
	From RequestState
	To   RequestState
}

// ErrorRaised 请求失败，需要显示临时错误横幅
type ErrorRaised struct {
	RequestID string
	Detail    string
}

func (MessageAppended) eventName() string     { return "message.appended" }
func (RequestStateChanged) eventName() string { return "request.state_changed" }
func (ErrorRaised) eventName() string         { return "request.error" }

// EventName 返回事件名，用于日志
func EventName(e Event) string {
	return e.eventName()
}

// Listener 事件回调，在发布方的调用栈上同步执行
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// bus 同步事件分发，按订阅顺序调用
type bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func (b *bus) subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// publish 在锁外调用回调，回调里可以再读取会话状态
func (b *bus) publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
