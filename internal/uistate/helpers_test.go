package uistate

import (
	"fmt"
	"sync"
	"time"
)

// fakeView 记录收到的调用
type fakeView struct {
	mu      sync.Mutex
	calls   []string
	theme   Theme
	height  int
	banner  *TransientError
	scrolls int
}

func (v *fakeView) record(call string) {
	v.calls = append(v.calls, call)
}

func (v *fakeView) ApplyTheme(t Theme) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme = t
	v.record("theme:" + string(t))
}

func (v *fakeView) ScrollToLatest() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
	v.record("scroll")
}

func (v *fakeView) SetInputHeight(lines int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.height = lines
	v.record(fmt.Sprintf("height:%d", lines))
}

func (v *fakeView) ShowBanner(b TransientError) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banner = &b
	v.record("banner:" + b.Message)
}

func (v *fakeView) ClearBanner() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.banner = nil
	v.record("banner:clear")
}

func (v *fakeView) Banner() *TransientError {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.banner
}

func (v *fakeView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

// fakeScheduler 手动推进的时钟
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{at: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance 推进时钟并同步执行到期的计时器
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && !t.at.After(s.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// Pending 未停止也未触发的计时器数量
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
