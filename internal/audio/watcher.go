package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher 监听语音文件夹，变化后（防抖）重新加载 Library。
type Watcher struct {
	library  *Library
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	running  bool
	done     chan struct{}
	onReload func(count int)
}

// NewWatcher 创建文件夹监听器
func NewWatcher(library *Library, debounce time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		library:  library,
		debounce: debounce,
		logger:   logger.With(zap.String("component", "voice_watcher")),
	}
}

// OnReload 注册重新加载回调
func (w *Watcher) OnReload(fn func(count int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Start 开始监听，ctx 结束或 Close 后停止。
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("voice watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fw.Add(w.library.Dir()); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", w.library.Dir(), err)
	}

	w.watcher = fw
	w.running = true
	w.done = make(chan struct{})

	go w.loop(ctx, fw, w.done)

	w.logger.Info("watching voice folder", zap.String("dir", w.library.Dir()))
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = fw.Close()
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("voice watcher error", zap.Error(err))
		case <-timerC:
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	count, err := w.library.Load()
	if err != nil {
		w.logger.Error("reload voice folder failed", zap.Error(err))
		return
	}
	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(count)
	}
}

// Close 停止监听并等待后台 goroutine 退出
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fw, done := w.watcher, w.done
	w.mu.Unlock()

	err := fw.Close()
	<-done
	return err
}
