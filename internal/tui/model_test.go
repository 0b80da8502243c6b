package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/api"
	"github.com/Zacy-Sokach/RagChat/internal/chat"
	"github.com/Zacy-Sokach/RagChat/internal/storage"
	"github.com/Zacy-Sokach/RagChat/internal/uistate"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	answer string
	err    error
	calls  int
}

func (f *fakeAsker) Ask(ctx context.Context, question, requestID string) (string, error) {
	f.calls++
	return f.answer, f.err
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) Health(ctx context.Context) (*api.HealthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.HealthResponse{Status: "ok"}, nil
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// manualScheduler 记录回调，由测试决定何时触发
type manualScheduler struct {
	fns []func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) uistate.Timer {
	s.fns = append(s.fns, fn)
	return noopTimer{}
}

type harness struct {
	m     *Model
	asker *fakeAsker
	store *chat.Store
	prefs *storage.MemoryKV
	sched *manualScheduler
}

func newHarness(t *testing.T, asker *fakeAsker) *harness {
	t.Helper()
	store := chat.NewStore()
	prefs := storage.NewMemoryKV()
	sched := &manualScheduler{}
	m := New(Deps{
		Controller: chat.NewController(store, asker, nil),
		Prefs:      prefs,
		Scheduler:  sched,
		BaseURL:    "http://localhost:8000",
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &harness{m: m, asker: asker, store: store, prefs: prefs, sched: sched}
}

func (h *harness) typeText(s string) {
	h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) press(k tea.KeyMsg) tea.Cmd {
	_, cmd := h.m.Update(k)
	return cmd
}

// drain 执行命令，只把网络结果送回 Update，跳过 spinner 和光标闪烁
func (h *harness) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(c)
		}
	case answerMsg, healthMsg:
		h.m.Update(msg)
	}
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyAltEnter = tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
	keyCtrlJ    = tea.KeyMsg{Type: tea.KeyCtrlJ}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlT    = tea.KeyMsg{Type: tea.KeyCtrlT}
)

func TestSendAndReceive(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "RAG combines **retrieval** with generation."})

	h.typeText("What is RAG?")
	cmd := h.press(keyEnter)

	require.Equal(t, 1, h.store.Len(), "user message is echoed before the answer")
	assert.Equal(t, chat.InFlight, h.m.ctrl.State())
	assert.Empty(t, h.m.textarea.Value())
	assert.Contains(t, h.m.View(), "thinking")

	h.drain(cmd)

	msgs := h.store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "What is RAG?", msgs[0].Text)
	assert.False(t, msgs[1].IsError)
	assert.Equal(t, chat.Idle, h.m.ctrl.State())

	view := h.m.View()
	assert.Contains(t, view, "What is RAG?")
	assert.Contains(t, view, "retrieval")
	assert.NotContains(t, view, "thinking")
}

func TestEnterOnBlankDraftDoesNothing(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	h.typeText("   ")
	cmd := h.press(keyEnter)

	assert.Nil(t, cmd)
	assert.Zero(t, h.store.Len())
	assert.Equal(t, "   ", h.m.textarea.Value())
}

func TestNewlineKeysDoNotSubmit(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyAltEnter, keyCtrlJ} {
		t.Run(k.String(), func(t *testing.T) {
			h := newHarness(t, &fakeAsker{answer: "a"})

			h.typeText("first")
			h.press(k)
			h.typeText("second")

			assert.Zero(t, h.store.Len())
			assert.Equal(t, "first\nsecond", h.m.textarea.Value())
			assert.Equal(t, 2, h.m.inputHeight)
		})
	}
}

func TestNewlineInsertedAtCursor(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	h.typeText("ab")
	h.press(tea.KeyMsg{Type: tea.KeyLeft})
	h.press(keyAltEnter)

	assert.Equal(t, "a\nb", h.m.textarea.Value())
	assert.Equal(t, "a\nb", h.m.composer.Draft())
	assert.Zero(t, h.store.Len())
	assert.Equal(t, 2, h.m.inputHeight)
}

func TestInputHeightIsCapped(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	for i := 0; i < 10; i++ {
		h.typeText("line")
		h.press(keyAltEnter)
	}
	assert.Equal(t, uistate.MaxInputHeight, h.m.inputHeight)

	h.drain(h.press(keyEnter))
	assert.Equal(t, uistate.MinInputHeight, h.m.inputHeight)
}

func TestSecondEnterWhileInFlightIsRejected(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	h.typeText("one")
	first := h.press(keyEnter)

	// 在途时输入被忽略，回车也不会再发请求
	h.typeText("two")
	assert.Empty(t, h.m.textarea.Value())
	assert.Nil(t, h.press(keyEnter))

	h.drain(first)
	assert.Equal(t, 1, h.asker.calls)
	assert.Equal(t, 2, h.store.Len())
}

func TestTabCyclesSuggestions(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	h.press(keyTab)
	assert.Equal(t, chat.Suggestions[0], h.m.textarea.Value())
	h.press(keyTab)
	assert.Equal(t, chat.Suggestions[1], h.m.textarea.Value())
	assert.Zero(t, h.store.Len(), "picking a suggestion never submits")

	h.drain(h.press(keyEnter))
	assert.Equal(t, chat.Suggestions[1], h.store.Messages()[0].Text)
}

func TestToggleThemePersists(t *testing.T) {
	h := newHarness(t, &fakeAsker{})
	assert.Equal(t, uistate.ThemeDark, h.m.Theme())

	h.press(keyCtrlT)
	stored, _, _ := h.prefs.Get(uistate.ThemeKey)
	assert.Equal(t, "light", stored)
	assert.Equal(t, uistate.ThemeLight, h.m.Theme())

	h.press(keyCtrlT)
	stored, _, _ = h.prefs.Get(uistate.ThemeKey)
	assert.Equal(t, "dark", stored)
	assert.Equal(t, uistate.ThemeDark, h.m.Theme())
}

func TestThemeRestoredFromPrefs(t *testing.T) {
	prefs := storage.NewMemoryKV()
	prefs.Set(uistate.ThemeKey, "light")

	m := New(Deps{Controller: chat.NewController(chat.NewStore(), &fakeAsker{}, nil), Prefs: prefs})
	defer m.Close()
	assert.Equal(t, uistate.ThemeLight, m.Theme())
}

func TestFailureShowsBannerUntilExpiry(t *testing.T) {
	h := newHarness(t, &fakeAsker{err: errors.New("Server error: 503")})

	h.typeText("x")
	h.drain(h.press(keyEnter))

	last, _ := h.store.Last()
	assert.True(t, last.IsError)
	require.NotNil(t, h.m.banner)
	assert.Contains(t, h.m.View(), "Server error: 503")
	assert.Contains(t, h.m.View(), "Could not reach the backend")

	require.Len(t, h.sched.fns, 1)
	h.m.Update(callbackMsg{fn: h.sched.fns[0]})
	assert.Nil(t, h.m.banner)
	assert.NotContains(t, h.m.View(), "Server error: 503")
}

func TestCloseDropsLateAnswer(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "late"})

	h.typeText("q")
	cmd := h.press(keyEnter)
	h.m.Close()
	assert.Equal(t, chat.Idle, h.m.ctrl.State())

	h.drain(cmd)
	assert.Equal(t, 1, h.store.Len())
}

func TestQuitReleases(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})
	h.typeText("q")
	h.press(keyEnter)

	cmd := h.press(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, chat.Idle, h.m.ctrl.State())
}

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		name   string
		health fakeHealth
		want   string
	}{
		{"online", fakeHealth{}, "online"},
		{"offline", fakeHealth{err: errors.New("connection refused")}, "offline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Deps{Controller: chat.NewController(chat.NewStore(), &fakeAsker{}, nil), Health: tt.health})
			defer m.Close()
			m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

			m.Update(m.checkHealth()())
			assert.Contains(t, m.headerView(), tt.want)
		})
	}
}

func TestEmptyStateListsSuggestions(t *testing.T) {
	h := newHarness(t, &fakeAsker{})
	view := h.m.View()
	for _, s := range chat.Suggestions {
		assert.Contains(t, view, s)
	}
}

func TestFooterHelpIsEnglish(t *testing.T) {
	h := newHarness(t, &fakeAsker{answer: "a"})

	footer := h.m.footerView()
	for _, want := range []string{"send", "newline", "suggest", "theme", "quit"} {
		assert.Contains(t, footer, want)
	}
}

func TestLayoutFitsWindow(t *testing.T) {
	h := newHarness(t, &fakeAsker{})
	lines := strings.Count(h.m.View(), "\n") + 1
	assert.LessOrEqual(t, lines, 30)
}

func TestStoredThemeChangeIsApplied(t *testing.T) {
	h := newHarness(t, &fakeAsker{})

	h.m.OnStoredThemeChanged("light")
	assert.Equal(t, uistate.ThemeLight, h.m.Theme())
	stored, _, _ := h.prefs.Get(uistate.ThemeKey)
	assert.Equal(t, "light", stored)

	writes := h.prefs.Writes()
	h.m.OnStoredThemeChanged("light")
	assert.Equal(t, writes, h.prefs.Writes(), "same value is applied without another write")

	h.m.OnStoredThemeChanged("garbage")
	assert.Equal(t, uistate.ThemeLight, h.m.Theme())
}
