package hostthread

import (
	"context"
	"sync"
)

// Future 是提交方持有的结果句柄。
type Future struct {
	id   string
	name string

	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newFuture(id, name string) *Future {
	return &Future{id: id, name: name, done: make(chan struct{})}
}

// ID 返回动作 ID
func (f *Future) ID() string { return f.id }

// Name 返回动作名称
func (f *Future) Name() string { return f.name }

// Done 在动作执行完成或被丢弃后关闭
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait 等待动作结果；ctx 先结束时返回 ctx 的错误，动作结果随后被丢弃。
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) resolve(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}
