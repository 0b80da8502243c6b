package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeAsker 可控的问答后端
type fakeAsker struct {
	mu        sync.Mutex
	calls     int
	questions []string
	ids       []string
	answer    string
	err       error
	panicWith any
	gate      chan struct{}
	started   chan struct{}
}

func (f *fakeAsker) Ask(ctx context.Context, question, requestID string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.questions = append(f.questions, question)
	f.ids = append(f.ids, requestID)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.answer, f.err
}

func (f *fakeAsker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errNetwork = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

// stepClock 每次调用前进一秒
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// recorder 记录事件
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = EventName(e)
	}
	return out
}

func newTestController(asker Asker) (*Controller, *Store) {
	store := NewStore(WithClock(newStepClock().Now))
	return NewController(store, asker, nil), store
}
