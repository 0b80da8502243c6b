package uistate

import (
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/chat"
)

// Event 驱动 Reduce 的输入
type Event interface {
	isEvent()
}

type (
	// MessageAppended 会话追加了一条消息
	MessageAppended struct {
		Count int
	}

	// RequestChanged 请求状态变化
	RequestChanged struct {
		To chat.RequestState
	}

	// DraftChanged 草稿变化
	DraftChanged struct {
		Draft string
	}

	// InputResized 输入框宽度变化（终端尺寸变化）
	InputResized struct {
		Width int
	}

	// ThemeToggled 切换主题
	ThemeToggled struct{}

	// ThemeSet 设置为指定主题
	ThemeSet struct {
		Theme Theme
	}

	// ErrorRaised 传输失败
	ErrorRaised struct {
		Detail string
		At     time.Time
	}

	// BannerExpired 错误提示计时器到期
	BannerExpired struct {
		Seq uint64
	}
)

func (MessageAppended) isEvent() {}
func (RequestChanged) isEvent()  {}
func (DraftChanged) isEvent()    {}
func (InputResized) isEvent()    {}
func (ThemeToggled) isEvent()    {}
func (ThemeSet) isEvent()        {}
func (ErrorRaised) isEvent()     {}
func (BannerExpired) isEvent()   {}

// Effect Reduce 产生的副作用，按顺序执行
type Effect interface {
	isEffect()
}

type (
	ScrollToLatest struct{}

	ResizeInput struct {
		Height int
	}

	PersistTheme struct {
		Theme Theme
	}

	ApplyTheme struct {
		Theme Theme
	}

	CancelBannerTimer struct{}

	ShowBanner struct {
		Banner TransientError
	}

	ScheduleBannerExpiry struct {
		Seq   uint64
		After time.Duration
	}

	ClearBanner struct{}
)

func (ScrollToLatest) isEffect()       {}
func (ResizeInput) isEffect()          {}
func (PersistTheme) isEffect()         {}
func (ApplyTheme) isEffect()           {}
func (CancelBannerTimer) isEffect()    {}
func (ShowBanner) isEffect()           {}
func (ScheduleBannerExpiry) isEffect() {}
func (ClearBanner) isEffect()          {}
