package chat

// RequestState 请求状态机
// 以后加超时或取消时在这里加 Cancelled/TimedOut
type RequestState int

const (
	Idle RequestState = iota
	InFlight
)

func (s RequestState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InFlight:
		return "InFlight"
	default:
		return "Unknown"
	}
}

// Outcome Submit 的结果
type Outcome int

const (
	// OutcomeNone 没有提交（例如 Shift+Enter 换行）
	OutcomeNone Outcome = iota
	// OutcomeSkipped 空白输入，静默忽略
	OutcomeSkipped
	// OutcomeRejected 已有请求在途，静默忽略
	OutcomeRejected
	// OutcomeAccepted 已接受，用户消息已追加
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Accepted 是否被接受
func (o Outcome) Accepted() bool {
	return o == OutcomeAccepted
}
