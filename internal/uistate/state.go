package uistate

import (
	"strings"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/chat"
	"github.com/mattn/go-runewidth"
)

const (
	// BannerDelay 临时错误提示的显示时长，从最近一次错误开始计算
	BannerDelay = 4 * time.Second

	MinInputHeight = 1
	MaxInputHeight = 6
)

// TransientError 临时错误提示，同一时间最多一个
type TransientError struct {
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
	Seq       uint64
}

// State 界面派生状态，只能通过 Reduce 修改
type State struct {
	Theme       Theme
	Request     chat.RequestState
	Messages    int
	Draft       string
	InputWidth  int
	InputHeight int
	Banner      *TransientError

	bannerSeq uint64
}

// NewState 创建初始状态
func NewState(theme Theme) State {
	return State{
		Theme:       theme,
		Request:     chat.Idle,
		InputHeight: MinInputHeight,
	}
}

// BannerSeq 最近一次错误的序号
func (s State) BannerSeq() uint64 {
	return s.bannerSeq
}

// InputLines 计算草稿占用的行数，包括硬换行和按宽度折行
// width <= 0 时只计算硬换行
func InputLines(draft string, width int) int {
	lines := 0
	for _, line := range strings.Split(draft, "\n") {
		w := runewidth.StringWidth(line)
		if width <= 0 || w <= width {
			lines++
			continue
		}
		lines += (w + width - 1) / width
	}
	return lines
}

// InputHeight 输入框高度，限制在 [MinInputHeight, MaxInputHeight]
func InputHeight(draft string, width int) int {
	return clamp(InputLines(draft, width), MinInputHeight, MaxInputHeight)
}

func clamp(v, low, high int) int {
	if high < low {
		low, high = high, low
	}
	return min(high, max(low, v))
}
