package chat

import "time"

// Role 消息发送方
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FallbackNotice 请求失败时写入会话历史的固定提示
const FallbackNotice = "⚠️ Could not reach the backend. Make sure the API server is running on port 8000."

// Message 会话中的一条消息，追加后不再修改
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
	IsError   bool
}

// IsUser 是否为用户消息
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
