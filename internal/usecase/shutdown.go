package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/mascotctl/internal/hostthread"
	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// ExitReason 关闭路由触发的退出原因
const ExitReason = "shutdown requested"

// ShutdownUseCase 关闭服务器并请求进程退出的用例
type ShutdownUseCase struct {
	stopper   ServerStopper
	scheduler HostScheduler
	process   ProcessControl
	recorder  Recorder
	logger    *zap.Logger

	once       sync.Once
	inProgress atomic.Bool
	wg         sync.WaitGroup
}

// NewShutdownUseCase 创建关闭用例。process 为 nil 时只停止服务器。
func NewShutdownUseCase(stopper ServerStopper, scheduler HostScheduler, process ProcessControl, logger *zap.Logger) *ShutdownUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShutdownUseCase{
		stopper:   stopper,
		scheduler: scheduler,
		process:   process,
		recorder:  nopRecorder{},
		logger:    logger.With(zap.String("component", "shutdown_usecase")),
	}
}

// SetRecorder 设置结果记录器
func (u *ShutdownUseCase) SetRecorder(r Recorder) {
	if r != nil {
		u.recorder = r
	}
}

// Shutdown 先通过 ack 确认请求（写出并刷新响应），确认成功后再拆除。
// ack 失败时返回 INTERNAL_ERROR 且不做任何拆除。
func (u *ShutdownUseCase) Shutdown(ctx context.Context, ack func() error) *types.Error {
	if err := ack(); err != nil {
		u.recorder.RecordShutdown(OutcomeFailed)
		u.logger.Error("shutdown acknowledgment failed", zap.Error(err))
		return types.Internal("failed to acknowledge shutdown", err)
	}

	triggered := false
	u.once.Do(func() {
		triggered = true
		u.inProgress.Store(true)
		u.teardown()
	})

	if triggered {
		u.recorder.RecordShutdown(OutcomeOK)
	} else {
		u.recorder.RecordShutdown("duplicate")
		u.logger.Info("shutdown already in progress")
	}
	return nil
}

// teardown 停止服务器；服务器停止后提交必达的退出动作。
func (u *ShutdownUseCase) teardown() {
	u.logger.Info("shutting down control server")
	done := u.stopper.StopAsync()

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		if err := <-done; err != nil {
			u.logger.Error("control server stop failed", zap.Error(err))
		}
		if u.process == nil {
			return
		}
		_, err := u.scheduler.Submit(context.Background(), "request_exit", func(ctx context.Context) (any, error) {
			u.process.RequestExit(ctx, ExitReason)
			return nil, nil
		}, hostthread.MustRun())
		if err != nil {
			u.logger.Error("failed to submit exit request", zap.Error(err))
		}
	}()
}

// InProgress 报告关闭是否已被触发
func (u *ShutdownUseCase) InProgress() bool {
	return u.inProgress.Load()
}

// Wait 等待拆除 goroutine 结束
func (u *ShutdownUseCase) Wait() {
	u.wg.Wait()
}
