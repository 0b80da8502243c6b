package uistate

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/chat"
	"github.com/Zacy-Sokach/RagChat/internal/storage"
)

// ThemeApplier 把主题应用到界面
type ThemeApplier interface {
	ApplyTheme(Theme)
}

// Scroller 把消息视图滚动到最新
type Scroller interface {
	ScrollToLatest()
}

// InputSizer 调整输入框高度
type InputSizer interface {
	SetInputHeight(lines int)
}

// BannerView 显示和清除临时错误提示
type BannerView interface {
	ShowBanner(TransientError)
	ClearBanner()
}

// View 界面需要实现的全部协作接口
type View interface {
	ThemeApplier
	Scroller
	InputSizer
	BannerView
}

// Timer 可停止的计时器
type Timer interface {
	Stop() bool
}

// Scheduler 延迟执行回调
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc 函数适配器
type SchedulerFunc func(d time.Duration, fn func()) Timer

func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer {
	return f(d, fn)
}

// RealScheduler 基于 time.AfterFunc，回调在计时器的 goroutine 上执行
var RealScheduler Scheduler = SchedulerFunc(func(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
})

// Options Sync 的依赖
type Options struct {
	View      View
	Prefs     storage.KV
	Scheduler Scheduler
	Now       func() time.Time
	Logger    *slog.Logger
}

// Sync 把会话和请求的变化同步到界面状态，并执行 Reduce 产生的副作用
type Sync struct {
	mu     sync.Mutex
	state  State
	timer  Timer
	closed bool
	unsubs []func()

	view  View
	prefs storage.KV
	sched Scheduler
	now   func() time.Time
	log   *slog.Logger
}

// NewSync 从偏好存储恢复主题并立即应用
func NewSync(opts Options) *Sync {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	theme := LoadTheme(opts.Prefs)
	s := &Sync{
		state: NewState(theme),
		view:  opts.View,
		prefs: opts.Prefs,
		sched: opts.Scheduler,
		now:   opts.Now,
		log:   opts.Logger,
	}
	s.run([]Effect{ApplyTheme{Theme: theme}})
	return s
}

// Attach 订阅会话历史和请求控制器的事件
func (s *Sync) Attach(ctrl *chat.Controller) {
	unsubStore := ctrl.Store().Subscribe(func(e chat.Event) {
		if appended, ok := e.(chat.MessageAppended); ok {
			s.Dispatch(MessageAppended{Count: appended.Index + 1})
		}
	})
	unsubCtrl := ctrl.Subscribe(func(e chat.Event) {
		switch e := e.(type) {
		case chat.RequestStateChanged:
			s.Dispatch(RequestChanged{To: e.To})
		case chat.ErrorRaised:
			s.Dispatch(ErrorRaised{Detail: e.Detail, At: s.now()})
		}
	})

	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubStore, unsubCtrl)
	s.mu.Unlock()
}

// State 返回当前状态的副本
func (s *Sync) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch 应用一个事件并按顺序执行副作用
func (s *Sync) Dispatch(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next, effects := Reduce(s.state, e)
	s.state = next
	s.mu.Unlock()

	s.run(effects)
}

// ToggleTheme 切换主题，立即持久化并应用
func (s *Sync) ToggleTheme() Theme {
	s.Dispatch(ThemeToggled{})
	return s.State().Theme
}

// SetDraft 草稿变化时调用
func (s *Sync) SetDraft(draft string) {
	s.Dispatch(DraftChanged{Draft: draft})
}

// SetInputWidth 输入框宽度变化时调用
func (s *Sync) SetInputWidth(width int) {
	s.Dispatch(InputResized{Width: width})
}

// Close 取消订阅并停止未触发的计时器，之后的事件都被忽略
func (s *Sync) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubs := s.unsubs
	s.unsubs = nil
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if timer != nil {
		timer.Stop()
	}
}

func (s *Sync) run(effects []Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case ScrollToLatest:
			if s.view != nil {
				s.view.ScrollToLatest()
			}
		case ResizeInput:
			if s.view != nil {
				s.view.SetInputHeight(eff.Height)
			}
		case PersistTheme:
			if s.prefs == nil {
				continue
			}
			if err := s.prefs.Set(ThemeKey, string(eff.Theme)); err != nil {
				s.log.Warn("persist theme failed", "theme", eff.Theme, "error", err)
			}
		case ApplyTheme:
			if s.view != nil {
				s.view.ApplyTheme(eff.Theme)
			}
		case CancelBannerTimer:
			s.stopTimer()
		case ShowBanner:
			if s.view != nil {
				s.view.ShowBanner(eff.Banner)
			}
		case ScheduleBannerExpiry:
			s.schedule(eff.Seq, eff.After)
		case ClearBanner:
			if s.view != nil {
				s.view.ClearBanner()
			}
		}
	}
}

func (s *Sync) stopTimer() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}

func (s *Sync) schedule(seq uint64, after time.Duration) {
	timer := s.sched.AfterFunc(after, func() {
		s.Dispatch(BannerExpired{Seq: seq})
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		timer.Stop()
		return
	}
	s.timer = timer
}
