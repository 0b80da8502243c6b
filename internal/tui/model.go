package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/api"
	"github.com/Zacy-Sokach/RagChat/internal/chat"
	"github.com/Zacy-Sokach/RagChat/internal/storage"
	"github.com/Zacy-Sokach/RagChat/internal/uistate"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version 是当前的 RagChat 版本，由 main 包设置
var Version = "dev"

const healthTimeout = 3 * time.Second

// HealthChecker 后端健康检查，*api.Client 实现了该接口
type HealthChecker interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Deps Model 的依赖
type Deps struct {
	Controller *chat.Controller
	Prefs      storage.KV
	Health     HealthChecker
	Scheduler  uistate.Scheduler
	Logger     *slog.Logger
	BaseURL    string
}

type backendStatus int

const (
	backendUnknown backendStatus = iota
	backendOnline
	backendOffline
)

// Model 聊天界面
type Model struct {
	ctrl     *chat.Controller
	composer *chat.Composer
	sync     *uistate.Sync
	health   HealthChecker
	log      *slog.Logger
	baseURL  string

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	styles   Styles

	width       int
	height      int
	ready       bool
	inputHeight int
	banner      *uistate.TransientError
	backend     backendStatus
	closeOnce   sync.Once

	sendMu sync.Mutex
	send   func(tea.Msg)
}

// New 创建界面并恢复主题
func New(deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(uistate.MinInputHeight)
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	// 换行由 keyMap.Newline 处理
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctrl:        deps.Controller,
		composer:    chat.NewComposer(deps.Controller),
		health:      deps.Health,
		log:         deps.Logger,
		baseURL:     deps.BaseURL,
		keys:        defaultKeyMap(),
		help:        help.New(),
		viewport:    viewport.New(80, 20),
		textarea:    ta,
		spinner:     sp,
		inputHeight: uistate.MinInputHeight,
	}

	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = uistate.SchedulerFunc(m.afterFunc)
	}
	m.sync = uistate.NewSync(uistate.Options{
		View:      m,
		Prefs:     deps.Prefs,
		Scheduler: scheduler,
		Logger:    deps.Logger,
	})
	m.sync.Attach(deps.Controller)
	m.composer.OnChange(m.sync.SetDraft)
	return m
}

// Bind 关联运行中的程序，计时器回调通过它回到 UI 线程
func (m *Model) Bind(p *tea.Program) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	m.send = p.Send
}

// afterFunc 计时器到期后把回调投递给 Update 执行
func (m *Model) afterFunc(d time.Duration, fn func()) uistate.Timer {
	return time.AfterFunc(d, func() { m.post(fn) })
}

// post 把其他 goroutine 上的回调转到 UI 线程，未 Bind 时直接执行
func (m *Model) post(fn func()) {
	m.sendMu.Lock()
	send := m.send
	m.sendMu.Unlock()

	if send == nil {
		fn()
		return
	}
	send(callbackMsg{fn: fn})
}

// OnStoredThemeChanged 偏好文件被其他实例修改时调用，可在任意 goroutine 调用
func (m *Model) OnStoredThemeChanged(value string) {
	theme, ok := uistate.ParseTheme(value)
	if !ok {
		return
	}
	m.post(func() {
		m.sync.Dispatch(uistate.ThemeSet{Theme: theme})
	})
}

// Close 释放在途请求和计时器，可重复调用
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.ctrl.Close()
		m.sync.Close()
	})
}

// Theme 当前主题
func (m *Model) Theme() uistate.Theme {
	return m.styles.Theme
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.checkHealth())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case answerMsg:
		msg.ex.Finish(msg.res)
		return m, nil

	case callbackMsg:
		msg.fn()
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.backend = backendOffline
			m.log.Warn("backend health check failed", "base_url", m.baseURL, "error", msg.err)
		} else {
			m.backend = backendOnline
			m.log.Info("backend reachable", "base_url", m.baseURL, "status", msg.status)
		}
		return m, nil

	case spinner.TickMsg:
		// 回到 Idle 后停止 tick
		if m.ctrl.State() != chat.InFlight {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleTheme):
		theme := m.sync.ToggleTheme()
		m.log.Debug("theme toggled", "theme", theme)
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.SetYOffset(m.viewport.YOffset - max(1, m.viewport.Height/2))
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.SetYOffset(m.viewport.YOffset + max(1, m.viewport.Height/2))
		return m, nil

	case key.Matches(msg, m.keys.Send, m.keys.Newline):
		return m, m.enter(key.Matches(msg, m.keys.Newline))

	case key.Matches(msg, m.keys.Suggest):
		if m.ctrl.Store().Len() == 0 {
			m.pickSuggestion()
			return m, nil
		}
	}

	// 请求在途时输入框不可编辑
	if m.ctrl.State() == chat.InFlight {
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.composer.SetDraft(m.textarea.Value())
	return m, cmd
}

// enter 回车：shift 为真时在光标处换行，否则提交草稿
func (m *Model) enter(shift bool) tea.Cmd {
	if shift {
		if m.ctrl.State() == chat.InFlight {
			return nil
		}
		m.textarea.InsertString("\n")
		m.composer.SetDraft(m.textarea.Value())
		return nil
	}

	m.composer.SetDraft(m.textarea.Value())
	outcome, ex := m.composer.Send()
	if !outcome.Accepted() {
		return nil
	}
	m.log.Debug("exchange started", "request_id", ex.ID(), "chars", len(ex.Question()))
	m.textarea.Reset()
	return tea.Batch(m.fetch(ex), m.spinner.Tick)
}

func (m *Model) pickSuggestion() {
	next := chat.NextSuggestion(m.composer.Draft())
	m.composer.PickSuggestion(next)
	m.textarea.SetValue(next)
	if m.composer.TakeFocusRequest() {
		m.textarea.Focus()
	}
}

// fetch 在后台 goroutine 执行网络请求，结果由 Update 写入
func (m *Model) fetch(ex *chat.Exchange) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{ex: ex, res: ex.Fetch(context.Background())}
	}
}

func (m *Model) checkHealth() tea.Cmd {
	if m.health == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		resp, err := m.health.Health(ctx)
		if err != nil {
			return healthMsg{err: err}
		}
		return healthMsg{status: resp.Status}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true
	m.textarea.SetWidth(width)
	m.help.Width = width
	m.layout()
	m.sync.SetInputWidth(m.textarea.Width())
	m.refresh()
}

// layout 根据输入框高度和横幅重新分配视口高度
func (m *Model) layout() {
	if !m.ready {
		return
	}
	used := lipgloss.Height(m.headerView()) + 1 + m.inputHeight + 1
	if m.banner != nil {
		used++
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-used)
}

// refresh 重新渲染消息视图
func (m *Model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// ApplyTheme 实现 uistate.ThemeApplier
func (m *Model) ApplyTheme(theme uistate.Theme) {
	m.styles = NewStyles(theme)
	lipgloss.SetHasDarkBackground(theme.IsDark())
	m.help.Styles.ShortKey = m.styles.Help.Bold(true)
	m.help.Styles.ShortDesc = m.styles.Help
	m.help.Styles.ShortSeparator = m.styles.Help
	m.spinner.Style = m.styles.Typing
	m.textarea.FocusedStyle.Placeholder = m.styles.Help
	m.textarea.FocusedStyle.Prompt = m.styles.Brand
	m.refresh()
}

// ScrollToLatest 实现 uistate.Scroller
func (m *Model) ScrollToLatest() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// SetInputHeight 实现 uistate.InputSizer
func (m *Model) SetInputHeight(lines int) {
	m.inputHeight = lines
	m.textarea.SetHeight(lines)
	m.layout()
}

// ShowBanner 实现 uistate.BannerView
func (m *Model) ShowBanner(b uistate.TransientError) {
	m.banner = &b
	m.layout()
}

// ClearBanner 实现 uistate.BannerView
func (m *Model) ClearBanner() {
	m.banner = nil
	m.layout()
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	parts := []string{
		m.headerView(),
		m.viewport.View(),
	}
	if m.banner != nil {
		parts = append(parts, m.bannerView())
	}
	parts = append(parts,
		m.styles.Rule.Render(strings.Repeat("─", max(0, m.width))),
		m.textarea.View(),
		m.footerView(),
	)
	return strings.Join(parts, "\n")
}

func (m *Model) headerView() string {
	st := m.styles
	status := st.Status.Render("○ connecting")
	switch m.backend {
	case backendOnline:
		status = st.Online.Render("● online")
	case backendOffline:
		status = st.Offline.Render("● offline")
	}

	icon := "☀️"
	if !st.Theme.IsDark() {
		icon = "🌙"
	}

	left := st.Brand.Render("🤖 RAG Chat") + " " + st.Status.Render(Version)
	right := status + "  " + st.Status.Render(icon+" ctrl+t")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return st.Header.Width(max(0, m.width)).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) bannerView() string {
	text := "⚠️ " + m.banner.Message
	return m.styles.Banner.MaxWidth(max(1, m.width)).Render(text)
}

func (m *Model) footerView() string {
	return m.help.ShortHelpView(m.keys.shortHelp(m.ctrl.Store().Len() == 0))
}

func (m *Model) renderMessages() string {
	msgs := m.ctrl.Store().Messages()
	if len(msgs) == 0 {
		return m.emptyView()
	}

	width := max(20, m.viewport.Width)
	bubbleWidth := max(10, width*3/4)

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg, width, bubbleWidth))
	}

	if m.ctrl.State() == chat.InFlight {
		sb.WriteString("\n\n")
		sb.WriteString(m.spinner.View() + m.styles.Typing.Render(" thinking..."))
	}
	return sb.String()
}

func (m *Model) renderMessage(msg chat.Message, width, bubbleWidth int) string {
	st := m.styles
	stamp := st.Timestamp.Render(msg.Timestamp.Format("15:04"))

	if msg.IsUser() {
		bubble := st.UserBubble.Width(min(bubbleWidth, lipgloss.Width(msg.Text)+2)).Render(msg.Text)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	var bubble string
	if msg.IsError {
		bubble = st.ErrBubble.Width(bubbleWidth).Render(msg.Text)
	} else {
		body := RenderMarkdown(st, msg.Text, bubbleWidth-2)
		bubble = st.BotBubble.Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

func (m *Model) emptyView() string {
	st := m.styles
	lines := []string{
		st.Welcome.Render("👋 Welcome to RAG Chat"),
		st.Help.Render(fmt.Sprintf("Ask anything about the knowledge base at %s.", m.baseURL)),
		"",
	}
	for _, s := range chat.Suggestions {
		lines = append(lines, st.Suggestion.Render(s))
	}
	lines = append(lines, "", st.Help.Render("Press tab to pick a suggestion."))
	return strings.Join(lines, "\n")
}
