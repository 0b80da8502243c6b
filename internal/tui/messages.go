package tui

import (
	"github.com/Zacy-Sokach/RagChat/internal/chat"
)

// answerMsg 网络请求完成，回到 UI 线程写入历史
type answerMsg struct {
	ex  *chat.Exchange
	res chat.Result
}

// callbackMsg 在 UI 线程执行计时器回调
type callbackMsg struct {
	fn func()
}

// healthMsg 启动时的后端健康检查结果
type healthMsg struct {
	status string
	err    error
}
