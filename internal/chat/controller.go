package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Asker 问答后端，*api.Client 实现了该接口
type Asker interface {
	Ask(ctx context.Context, question, requestID string) (string, error)
}

// Controller 管理一次问答交换的完整生命周期，同一时间最多一个请求在途
type Controller struct {
	mu      sync.Mutex
	store   *Store
	asker   Asker
	state   RequestState
	current *Exchange
	events  bus
	log     *slog.Logger
}

// NewController 创建请求控制器，logger 为 nil 时丢弃日志
func NewController(store *Store, asker Asker, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		store: store,
		asker: asker,
		state: Idle,
		log:   logger,
	}
}

// Store 返回会话历史
func (c *Controller) Store() *Store {
	return c.store
}

// Subscribe 订阅 RequestStateChanged 和 ErrorRaised 事件
func (c *Controller) Subscribe(fn Listener) func() {
	return c.events.subscribe(fn)
}

// State 返回当前请求状态
func (c *Controller) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit 提交一个问题
//
// 空白输入或已有请求在途时什么都不做。否则立即追加用户消息、进入 InFlight，
// 并返回持有在途状态的 Exchange，调用方必须对它调用 Run 或 Fetch+Finish。
func (c *Controller) Submit(raw string) (Outcome, *Exchange) {
	question := strings.TrimSpace(raw)
	if question == "" {
		c.log.Debug("submit skipped: empty question")
		return OutcomeSkipped, nil
	}

	c.mu.Lock()
	if c.state == InFlight {
		c.mu.Unlock()
		c.log.Debug("submit rejected: request in flight")
		return OutcomeRejected, nil
	}
	ex := &Exchange{ctrl: c, question: question, log: c.log}
	c.current = ex
	c.state = InFlight
	c.mu.Unlock()

	// 订阅者 panic 时也要回到 Idle，否则之后的提交全部被拒绝
	handedOff := false
	defer func() {
		if !handedOff {
			ex.claim()
			ex.release()
		}
	}()

	userMsg := c.store.append(Message{Role: RoleUser, Text: question})
	ex.id = userMsg[len(userMsg)-1].ID
	ex.log = c.log.With("request_id", ex.id)

	c.events.publish(RequestStateChanged{From: Idle, To: InFlight})
	ex.log.Info("question submitted", "chars", len(question))
	handedOff = true
	return OutcomeAccepted, ex
}

// Ask 提交并同步等待结果，返回时状态已回到 Idle
func (c *Controller) Ask(ctx context.Context, raw string) Outcome {
	outcome, ex := c.Submit(raw)
	if ex != nil {
		ex.Run(ctx)
	}
	return outcome
}

// Close 释放在途请求，之后该请求的结果不会再写入历史
func (c *Controller) Close() {
	c.mu.Lock()
	ex := c.current
	c.mu.Unlock()

	if ex != nil {
		ex.Release()
	}
}

// Result 一次网络请求的结果
type Result struct {
	Answer string
	Err    error
}

// Exchange 一次被接受的问答交换，持有在途状态直到被释放
type Exchange struct {
	ctrl     *Controller
	id       string
	question string
	log      *slog.Logger

	mu          sync.Mutex
	finished    bool
	releaseOnce sync.Once
}

// ID 返回用户消息的 ID，也作为请求 ID 发给后端
func (ex *Exchange) ID() string {
	return ex.id
}

// Question 返回去掉首尾空白后的问题
func (ex *Exchange) Question() string {
	return ex.question
}

// Fetch 发起网络请求，不修改任何会话状态，可以在任意 goroutine 调用
func (ex *Exchange) Fetch(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("unexpected failure: %v", r)}
		}
	}()

	answer, err := ex.ctrl.asker.Ask(ctx, ex.question, ex.id)
	return Result{Answer: answer, Err: err}
}

// Finish 写入助手消息并释放在途状态
// 无论成功失败都会释放，重复调用无效
func (ex *Exchange) Finish(res Result) {
	defer ex.release()

	if !ex.claim() {
		return
	}

	store := ex.ctrl.store
	if res.Err != nil {
		ex.log.Warn("request failed", "error", res.Err)
		store.append(Message{Role: RoleAssistant, Text: FallbackNotice, IsError: true})
		ex.ctrl.events.publish(ErrorRaised{RequestID: ex.id, Detail: res.Err.Error()})
		return
	}

	ex.log.Info("answer received", "chars", len(res.Answer))
	store.append(Message{Role: RoleAssistant, Text: res.Answer})
}

// Run 同步执行 Fetch 和 Finish，任何退出路径都会释放在途状态
func (ex *Exchange) Run(ctx context.Context) {
	defer ex.release()
	ex.Finish(ex.Fetch(ctx))
}

// Release 放弃这次交换，用于退出时清理
func (ex *Exchange) Release() {
	if ex.claim() {
		ex.log.Info("exchange released before completion")
	}
	ex.release()
}

func (ex *Exchange) claim() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.finished {
		return false
	}
	ex.finished = true
	return true
}

func (ex *Exchange) release() {
	ex.releaseOnce.Do(func() {
		c := ex.ctrl
		c.mu.Lock()
		if c.current != ex {
			c.mu.Unlock()
			return
		}
		c.current = nil
		c.state = Idle
		c.mu.Unlock()

		c.events.publish(RequestStateChanged{From: InFlight, To: Idle})
	})
}
