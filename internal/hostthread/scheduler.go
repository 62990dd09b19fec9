package hostthread

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/mascotctl/internal/telemetry"
	"github.com/BaSui01/mascotctl/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer(telemetry.ScopeHost)

// Action 是必须在宿主线程上执行的一个工作单元。
type Action func(ctx context.Context) (any, error)

// Recorder 接收动作执行结果，用于指标统计。
type Recorder interface {
	RecordHostAction(name, outcome string, wait, run time.Duration)
}

// 动作结局
const (
	OutcomeExecuted = "executed"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
)

// Config 调度器配置
type Config struct {
	// 非 MustRun 动作的最大排队数
	QueueSize int `yaml:"queue_size" json:"queue_size"`
	// Run 循环的帧间隔
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
}

// DefaultConfig 返回默认调度器配置
func DefaultConfig() Config {
	return Config{
		QueueSize:    64,
		TickInterval: 16 * time.Millisecond,
	}
}

type job struct {
	id       string
	name     string
	ctx      context.Context
	action   Action
	mustRun  bool
	queuedAt time.Time
	future   *Future
}

// SubmitOption 提交选项
type SubmitOption func(*job)

// MustRun 标记动作不可丢弃：提交方取消后仍会执行，且不受队列容量限制。
func MustRun() SubmitOption {
	return func(j *job) { j.mustRun = true }
}

// Scheduler 把任意 goroutine 提交的动作交给宿主线程按提交顺序执行。
//
// 多生产者、单消费者：Submit 可并发调用，Pump/Run 只能由宿主线程调用。
type Scheduler struct {
	config   Config
	logger   *zap.Logger
	recorder Recorder

	mu      sync.Mutex
	pending []*job
	closed  bool
	normal  int // 排队中的非 MustRun 动作数

	wake    chan struct{}
	pumping atomic.Bool

	executed atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// NewScheduler 创建调度器
func NewScheduler(config Config, logger *zap.Logger) *Scheduler {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger.With(zap.String("component", "host_scheduler")),
		wake:   make(chan struct{}, 1),
	}
}

// SetRecorder 设置指标记录器，须在宿主循环启动前调用。
func (s *Scheduler) SetRecorder(r Recorder) {
	s.recorder = r
}

// Submit 提交动作，返回可等待的 Future。动作的所有权转移给调度器。
func (s *Scheduler) Submit(ctx context.Context, name string, action Action, opts ...SubmitOption) (*Future, error) {
	if action == nil {
		return nil, types.NewError(types.ErrInternalError, "nil host action")
	}
	j := &job{
		id:       uuid.NewString(),
		name:     name,
		ctx:      ctx,
		action:   action,
		queuedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.future = newFuture(j.id, name)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, types.Errorf(types.ErrQueueClosed, "host thread is not accepting actions (%s)", name)
	}
	if !j.mustRun {
		if s.normal >= s.config.QueueSize {
			s.mu.Unlock()
			return nil, types.Errorf(types.ErrQueueFull, "host action queue is full (%d)", s.config.QueueSize)
		}
		s.normal++
	}
	s.pending = append(s.pending, j)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.logger.Debug("host action queued",
		zap.String("action_id", j.id),
		zap.String("action", name),
		zap.Bool("must_run", j.mustRun),
	)
	return j.future, nil
}

// Pump 在调用方 goroutine 上执行调用时刻已排队的全部动作，返回执行数。
// 宿主每帧调用一次。
func (s *Scheduler) Pump() int {
	if !s.pumping.CompareAndSwap(false, true) {
		s.logger.Error("concurrent Pump call ignored; Pump must only run on the host thread")
		return 0
	}
	defer s.pumping.Store(false)

	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.normal = 0
	s.mu.Unlock()

	ran := 0
	for _, j := range batch {
		if s.runJob(j) {
			ran++
		}
	}
	return ran
}

func (s *Scheduler) runJob(j *job) bool {
	wait := time.Since(j.queuedAt)

	ctx := j.ctx
	if j.mustRun {
		ctx = context.WithoutCancel(ctx)
	} else if err := ctx.Err(); err != nil {
		s.dropped.Add(1)
		s.record(j.name, OutcomeDropped, wait, 0)
		s.logger.Debug("host action dropped",
			zap.String("action_id", j.id),
			zap.String("action", j.name),
			zap.Error(err),
		)
		j.future.resolve(nil, err)
		return false
	}

	ctx, span := tracer.Start(ctx, "host "+j.name,
		trace.WithAttributes(
			attribute.String("host.action_id", j.id),
			attribute.Bool("host.must_run", j.mustRun),
			attribute.Int64("host.wait_us", wait.Microseconds()),
		),
	)
	start := time.Now()
	value, err := s.invoke(ctx, j)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if err != nil {
		s.failed.Add(1)
		s.record(j.name, OutcomeFailed, wait, elapsed)
		s.logger.Warn("host action failed",
			zap.String("action_id", j.id),
			zap.String("action", j.name),
			zap.Error(err),
		)
	} else {
		s.executed.Add(1)
		s.record(j.name, OutcomeExecuted, wait, elapsed)
	}
	j.future.resolve(value, err)
	return true
}

func (s *Scheduler) invoke(ctx context.Context, j *job) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("host action panicked",
				zap.String("action", j.name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = types.NewError(types.ErrInternalError, "host action panicked").
				WithCause(fmt.Errorf("%v", r))
		}
	}()
	return j.action(ctx)
}

func (s *Scheduler) record(name, outcome string, wait, run time.Duration) {
	if s.recorder != nil {
		s.recorder.RecordHostAction(name, outcome, wait, run)
	}
}

// Run 是宿主循环：每帧调用 Pump，ctx 结束后关闭队列并做最后一次排空。
// 必须在宿主线程上调用。
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.logger.Info("host loop started", zap.Duration("tick", s.config.TickInterval))
	for {
		select {
		case <-ctx.Done():
			s.Close()
			n := s.Pump()
			s.logger.Info("host loop stopped", zap.Int("drained", n))
			return nil
		case <-ticker.C:
			s.Pump()
		case <-s.wake:
			s.Pump()
		}
	}
}

// Close 停止接受新动作；已排队的动作仍由下一次 Pump 处理。
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Pending 返回排队中的动作数
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stats 调度统计
type Stats struct {
	Executed int64 `json:"executed"`
	Failed   int64 `json:"failed"`
	Dropped  int64 `json:"dropped"`
	Pending  int   `json:"pending"`
}

// Stats 返回调度统计
func (s *Scheduler) Stats() Stats {
	return Stats{
		Executed: s.executed.Load(),
		Failed:   s.failed.Load(),
		Dropped:  s.dropped.Load(),
		Pending:  s.Pending(),
	}
}
