package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/mascotctl/api"
	"github.com/BaSui01/mascotctl/api/handlers"
	"github.com/BaSui01/mascotctl/api/router"
	"github.com/BaSui01/mascotctl/config"
	"github.com/BaSui01/mascotctl/internal/audio"
	"github.com/BaSui01/mascotctl/internal/hostthread"
	"github.com/BaSui01/mascotctl/internal/metrics"
	"github.com/BaSui01/mascotctl/internal/process"
	"github.com/BaSui01/mascotctl/internal/server"
	"github.com/BaSui01/mascotctl/internal/usecase"
)

// =============================================================================
// 🖥️ App 结构
// =============================================================================

// App 把语音、宿主线程、控制面服务器与进程控制装配在一起
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	library   *audio.Library
	player    *audio.Player
	watcher   *audio.Watcher
	scheduler *hostthread.Scheduler
	process   *process.Controller
	collector *metrics.Collector
	router    *router.Router
	manager   *server.Manager

	voiceUC    *usecase.VoiceUseCase
	shutdownUC *usecase.ShutdownUseCase

	// 限流器等后台 goroutine 的生命周期
	lifetime context.Context
	cancel   context.CancelFunc
}

// NewApp 装配所有组件。路由在返回前冻结。
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lifetime, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   logger,
		lifetime: lifetime,
		cancel:   cancel,
	}

	// 1. 指标收集器
	a.collector = metrics.NewCollector(cfg.Metrics.Namespace, logger)

	// 2. 语音目录与播放器
	a.library = audio.NewLibrary(audio.LibraryConfig{
		Dir:        cfg.Voice.Dir,
		Extensions: cfg.Voice.Extensions,
		Builtin:    cfg.Voice.Builtin,
	}, logger)
	a.player = audio.NewPlayer(a.library, a.newBackend(), logger)
	if cfg.Voice.Watch && cfg.Voice.Dir != "" {
		a.watcher = audio.NewWatcher(a.library, cfg.Voice.Debounce, logger)
		a.watcher.OnReload(func(int) {
			a.collector.SetVoicesKnown(len(a.library.IDs()))
		})
	}

	// 3. 宿主线程调度器
	a.scheduler = hostthread.NewScheduler(hostthread.Config{
		QueueSize:    cfg.Host.QueueSize,
		TickInterval: cfg.Host.TickInterval,
	}, logger)
	a.scheduler.SetRecorder(a.collector)
	a.collector.RegisterQueueDepth(a.scheduler.Pending)

	// 4. 进程控制（退出钩子在宿主线程上执行）
	a.process = process.NewController(logger)
	a.process.OnExit("stop-audio", func(ctx context.Context) error {
		a.player.Stop()
		return nil
	})
	if a.watcher != nil {
		a.process.OnExit("close-watcher", func(ctx context.Context) error {
			return a.watcher.Close()
		})
	}

	// 5. 路由与服务器
	a.router = router.New(logger)
	a.manager = server.NewManager(a.middleware(), server.Config{
		Host:            cfg.Server.Host,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxHeaderBytes:  cfg.Server.MaxHeaderBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	// 6. 用例
	a.voiceUC = usecase.NewVoiceUseCase(a.library, a.player, a.scheduler, cfg.Host.ActionTimeout, logger)
	a.voiceUC.SetRecorder(a.collector)
	a.shutdownUC = usecase.NewShutdownUseCase(a.manager, a.scheduler, a.process, logger)
	a.shutdownUC.SetRecorder(a.collector)

	// 7. 路由注册
	if err := a.registerRoutes(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	a.router.Freeze()

	return a, nil
}

func (a *App) newBackend() audio.Backend {
	if len(a.cfg.Voice.PlayerCommand) > 0 {
		return audio.NewCommandBackend(a.cfg.Voice.PlayerCommand, a.logger)
	}
	return audio.NewLogBackend(a.logger)
}

// middleware 构建中间件链（第一个在最外层）
func (a *App) middleware() http.Handler {
	return router.Chain(a.router,
		router.Recovery(a.logger),
		router.RequestID(),
		router.OTelTracing(a.router.Label),
		router.RequestLogger(a.logger),
		router.MetricsMiddleware(a.collector, a.router.Label),
		router.CORS(a.router.Methods),
		router.RateLimiter(a.lifetime, float64(a.cfg.Server.RateLimitRPS), a.cfg.Server.RateLimitBurst, a.logger),
	)
}

func (a *App) registerRoutes() error {
	voiceHandler := handlers.NewVoiceHandler(a.voiceUC, a.logger)
	shutdownHandler := handlers.NewShutdownHandler(a.shutdownUC, a.logger)
	healthHandler := handlers.NewHealthHandler(
		func() string { return a.manager.State().String() },
		a.library, Version, a.logger,
	)

	routes := []struct {
		method string
		path   string
		fn     handlers.HandlerFunc
	}{
		{http.MethodPost, api.PathPlayVoice, voiceHandler.HandlePlay},
		{http.MethodPost, api.PathShutdown, shutdownHandler.HandleShutdown},
		{http.MethodGet, api.PathHealth, healthHandler.HandleHealth},
		{http.MethodGet, api.PathVoices, healthHandler.HandleVoices},
	}
	for _, r := range routes {
		if err := a.router.Handle(r.method, r.path, r.fn); err != nil {
			return err
		}
	}

	if a.cfg.Metrics.Enabled {
		if err := a.router.Register(http.MethodGet, api.PathMetrics, a.collector.Handler()); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// 🚀 运行
// =============================================================================

// Run 启动控制面并运行宿主循环，直到 ctx 结束、收到关闭请求或服务器异常退出。
func (a *App) Run(ctx context.Context) error {
	defer a.cancel()

	hostCtx, stopHost := context.WithCancel(context.Background())
	defer stopHost()

	if err := a.start(hostCtx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.scheduler.Run(hostCtx)
	})
	g.Go(func() error {
		defer stopHost()
		return a.supervise(gctx)
	})

	err := g.Wait()
	a.logger.Info("Graceful shutdown completed", zap.String("reason", a.process.Reason()))
	return err
}

func (a *App) start(ctx context.Context) error {
	if _, err := a.library.Load(); err != nil {
		a.logger.Warn("Failed to load voice folder", zap.Error(err))
	}
	a.collector.SetVoicesKnown(len(a.library.IDs()))

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("Voice folder watcher disabled", zap.Error(err))
		}
	}

	if err := a.manager.Start(a.cfg.Server.Port); err != nil {
		return err
	}
	a.collector.SetServerRunning(true)

	a.logger.Info("Control server started",
		zap.String("addr", a.manager.Addr()),
		zap.Int("voices", len(a.library.IDs())),
	)

	a.playStartupVoice()
	return nil
}

// playStartupVoice 把启动语音排入宿主队列，不等待结果
func (a *App) playStartupVoice() {
	id := a.cfg.Voice.Startup
	if id == "" || !a.library.HasVoice(id) {
		return
	}
	_, err := a.scheduler.Submit(a.lifetime, "startup_voice", func(ctx context.Context) (any, error) {
		return nil, a.player.PlayVoice(id)
	})
	if err != nil {
		a.logger.Warn("Failed to queue startup voice", zap.String("voice_id", id), zap.Error(err))
	}
}

// supervise 等待退出条件，然后按顺序关闭：服务器 → 关闭用例 → 退出钩子
func (a *App) supervise(ctx context.Context) error {
	var runErr error
	reason := "signal"

	select {
	case <-ctx.Done():
	case <-a.process.Done():
		reason = a.process.Reason()
	case err := <-a.manager.Errors():
		runErr = err
		reason = "control server failed"
	}
	a.logger.Info("Starting graceful shutdown...", zap.String("reason", reason))

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()

	if err := a.manager.Stop(stopCtx); err != nil {
		a.logger.Error("Control server shutdown error", zap.Error(err))
	}
	a.manager.Wait()
	a.shutdownUC.Wait()
	a.collector.SetServerRunning(false)

	if !a.process.Requested() {
		exit := func(ctx context.Context) (any, error) {
			a.process.RequestExit(ctx, reason)
			return nil, nil
		}
		if _, err := a.scheduler.Submit(stopCtx, "request_exit", exit, hostthread.MustRun()); err != nil {
			a.logger.Warn("Failed to queue exit request", zap.Error(err))
			return runErr
		}
	}

	select {
	case <-a.process.Done():
	case <-stopCtx.Done():
		a.logger.Warn("Exit hooks did not finish in time")
	}
	return runErr
}

// Addr 返回控制面实际监听地址，未运行时为空
func (a *App) Addr() string {
	return a.manager.Addr()
}
