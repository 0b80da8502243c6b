package chat

// Suggestions 会话为空时展示的推荐问题
var Suggestions = []string{
	"What is Spring Boot?",
	"What is MongoDB?",
	"What is LangChain?",
	"How does RAG work?",
}

// Submitter 接收候选问题，*Controller 实现了该接口
type Submitter interface {
	Submit(raw string) (Outcome, *Exchange)
}

// Composer 输入草稿和提交触发
type Composer struct {
	draft          string
	submitter      Submitter
	onChange       func(draft string)
	focusRequested bool
}

// NewComposer 创建输入框状态
func NewComposer(submitter Submitter) *Composer {
	return &Composer{submitter: submitter}
}

// OnChange 注册草稿变化回调
func (c *Composer) OnChange(fn func(draft string)) {
	c.onChange = fn
}

// Draft 返回当前草稿
func (c *Composer) Draft() string {
	return c.draft
}

// SetDraft 每次按键后调用
func (c *Composer) SetDraft(text string) {
	if text == c.draft {
		return
	}
	c.draft = text
	if c.onChange != nil {
		c.onChange(text)
	}
}

// InsertNewline 在草稿末尾追加换行，不提交
// 给没有光标的调用方用，界面在光标处插入后调用 SetDraft
func (c *Composer) InsertNewline() {
	c.SetDraft(c.draft + "\n")
}

// Enter 处理回车：带 Shift 时换行，否则提交
func (c *Composer) Enter(shift bool) (Outcome, *Exchange) {
	if shift {
		c.InsertNewline()
		return OutcomeNone, nil
	}
	return c.Send()
}

// Send 提交草稿，只有被接受时才清空草稿
func (c *Composer) Send() (Outcome, *Exchange) {
	outcome, ex := c.submitter.Submit(c.draft)
	if outcome.Accepted() {
		c.SetDraft("")
	}
	return outcome, ex
}

// PickSuggestion 把推荐问题填入草稿并请求焦点，不提交
func (c *Composer) PickSuggestion(text string) {
	c.SetDraft(text)
	c.focusRequested = true
}

// TakeFocusRequest 返回并清除焦点请求
func (c *Composer) TakeFocusRequest() bool {
	requested := c.focusRequested
	c.focusRequested = false
	return requested
}

// NextSuggestion 返回当前草稿之后的下一个推荐问题，用于循环选择
func NextSuggestion(current string) string {
	for i, s := range Suggestions {
		if s == current {
			return Suggestions[(i+1)%len(Suggestions)]
		}
	}
	return Suggestions[0]
}
