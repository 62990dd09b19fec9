package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🌐 控制面 HTTP 服务器管理器
// =============================================================================

// State 服务器生命周期状态
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Manager HTTP 服务器管理器，唯一持有监听套接字与生命周期状态。
type Manager struct {
	handler http.Handler
	config  Config
	logger  *zap.Logger

	mu        sync.Mutex
	state     atomic.Int32
	server    *http.Server
	listener  net.Listener
	serveDone chan struct{}
	stopDone  chan struct{}

	errCh    chan error
	inFlight atomic.Int64
	tasks    sync.WaitGroup
}

// Config 服务器配置
type Config struct {
	// 监听主机，默认仅本地回环
	Host string `yaml:"host" json:"host"`

	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`

	// 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`

	// 空闲超时
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// 最大请求头大小
	MaxHeaderBytes int `yaml:"max_header_bytes" json:"max_header_bytes"`

	// 优雅关闭宽限期，超时后强制关闭剩余连接
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig 返回默认服务器配置
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: 5 * time.Second,
	}
}

// NewManager 创建服务器管理器
func NewManager(handler http.Handler, config Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	return &Manager{
		handler: handler,
		config:  config,
		errCh:   make(chan error, 1),
		logger:  logger.With(zap.String("component", "control_server")),
	}
}

// =============================================================================
// 🎯 核心方法
// =============================================================================

// Start 绑定端口并开始接受连接（非阻塞）。
// 绑定失败返回 BIND_ERROR；非 Stopped 状态下调用返回 ALREADY_RUNNING。
func (m *Manager) Start(port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st := m.State(); st != StateStopped {
		return types.Errorf(types.ErrAlreadyRunning, "server is %s", st)
	}
	m.setState(StateStarting)

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		m.setState(StateStopped)
		m.logger.Error("bind failed", zap.String("addr", addr), zap.Error(err))
		return types.Errorf(types.ErrBindError, "failed to listen on %s", addr).WithCause(err)
	}

	srv := &http.Server{
		Handler:        m.track(m.handler),
		ReadTimeout:    m.config.ReadTimeout,
		WriteTimeout:   m.config.WriteTimeout,
		IdleTimeout:    m.config.IdleTimeout,
		MaxHeaderBytes: m.config.MaxHeaderBytes,
		ErrorLog:       zap.NewStdLog(m.logger),
	}

	m.server = srv
	m.listener = listener
	m.serveDone = make(chan struct{})
	m.setState(StateRunning)

	m.logger.Info("control server started", zap.String("addr", listener.Addr().String()))

	go m.serve(srv, listener, m.serveDone)

	return nil
}

// serve 是 accept 循环：每个连接由 net/http 在独立 goroutine 中处理。
func (m *Manager) serve(srv *http.Server, listener net.Listener, done chan struct{}) {
	defer close(done)

	err := srv.Serve(listener)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}

	m.logger.Error("control server failed", zap.Error(err))
	select {
	case m.errCh <- err:
	default:
	}

	// 非 Stop 导致的退出：回到 Stopped
	m.mu.Lock()
	if m.server == srv && m.State() == StateRunning {
		m.server = nil
		m.listener = nil
		m.setState(StateStopped)
	}
	m.mu.Unlock()
}

// Stop 停止服务器：立即停止接受新连接，在宽限期内等待处理中的请求，
// 超时后强制关闭剩余连接。重复调用是空操作；并发调用者等待同一次停止完成。
//
// 在本服务器处理的请求内部应使用 StopAsync。
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	switch m.State() {
	case StateStopped:
		m.mu.Unlock()
		return nil
	case StateStopping:
		wait := m.stopDone
		m.mu.Unlock()
		select {
		case <-wait:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.setState(StateStopping)
	srv := m.server
	serveDone := m.serveDone
	stopDone := make(chan struct{})
	m.stopDone = stopDone
	m.mu.Unlock()

	m.logger.Info("stopping control server", zap.Int64("in_flight", m.inFlight.Load()))

	shutdownCtx, cancel := context.WithTimeout(ctx, m.config.ShutdownTimeout)
	defer cancel()

	forced := false
	if err := srv.Shutdown(shutdownCtx); err != nil {
		forced = true
		m.logger.Warn("grace period elapsed, forcing connections closed",
			zap.Duration("grace", m.config.ShutdownTimeout),
			zap.Int64("in_flight", m.inFlight.Load()),
			zap.Error(err),
		)
		if cerr := srv.Close(); cerr != nil {
			m.logger.Error("force close failed", zap.Error(cerr))
		}
	}
	<-serveDone

	m.mu.Lock()
	m.server = nil
	m.listener = nil
	m.setState(StateStopped)
	close(stopDone)
	m.mu.Unlock()

	m.logger.Info("control server stopped", zap.Bool("forced", forced))
	return nil
}

// StopAsync 在受跟踪的 goroutine 中执行 Stop，用于由请求自身触发的关闭，
// 避免请求等待自己所在的连接。
func (m *Manager) StopAsync() <-chan error {
	ch := make(chan error, 1)
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		ch <- m.Stop(context.Background())
		close(ch)
	}()
	return ch
}

// Wait 等待所有 StopAsync 任务完成
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Errors returns asynchronous server errors.
func (m *Manager) Errors() <-chan error {
	return m.errCh
}

func (m *Manager) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Add(1)
		defer m.inFlight.Add(-1)
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// 🔧 辅助方法
// =============================================================================

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// State 返回当前生命周期状态
func (m *Manager) State() State {
	return State(m.state.Load())
}

// IsRunning 检查服务器是否运行中
func (m *Manager) IsRunning() bool {
	return m.State() == StateRunning
}

// Addr 返回实际监听地址；未运行时返回空字符串
func (m *Manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// InFlight 返回处理中的请求数
func (m *Manager) InFlight() int64 {
	return m.inFlight.Load()
}

// String 用于日志
func (m *Manager) String() string {
	return fmt.Sprintf("control server (%s)", m.State())
}
