// Package process 提供进程生命周期控制：请求退出、退出钩子与退出信号。
package process

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hook 是退出前按注册顺序执行的清理函数。
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Controller 进程控制器。RequestExit 只生效一次，宿主循环监听 Done 后退出。
type Controller struct {
	logger *zap.Logger

	mu     sync.Mutex
	hooks  []Hook
	once   sync.Once
	done   chan struct{}
	reason string
}

// NewController 创建进程控制器
func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		logger: logger.With(zap.String("component", "process")),
		done:   make(chan struct{}),
	}
}

// OnExit 注册退出钩子
func (c *Controller) OnExit(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, Hook{Name: name, Fn: fn})
}

// RequestExit 执行退出钩子并发出退出信号。重复调用是空操作。
// 应在宿主线程上调用。
func (c *Controller) RequestExit(ctx context.Context, reason string) {
	c.once.Do(func() {
		c.mu.Lock()
		hooks := append([]Hook(nil), c.hooks...)
		c.reason = reason
		c.mu.Unlock()

		c.logger.Info("process exit requested", zap.String("reason", reason))
		for _, h := range hooks {
			if err := h.Fn(ctx); err != nil {
				c.logger.Warn("exit hook failed", zap.String("hook", h.Name), zap.Error(err))
			}
		}
		close(c.done)
	})
}

// Done 在退出被请求后关闭
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Reason 返回退出原因
func (c *Controller) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Requested 报告是否已请求退出
func (c *Controller) Requested() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
