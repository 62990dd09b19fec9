package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。每个 Collector 持有独立的 Registry。
type Collector struct {
	registry *prometheus.Registry

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 宿主线程指标
	hostActionsTotal   *prometheus.CounterVec
	hostActionWait     *prometheus.HistogramVec
	hostActionDuration *prometheus.HistogramVec

	// 用例指标
	voicePlaysTotal *prometheus.CounterVec
	shutdownsTotal  *prometheus.CounterVec
	voicesKnown     prometheus.Gauge
	serverRunning   prometheus.Gauge

	namespace string
	logger    *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry:  reg,
		namespace: namespace,
		logger:    logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"method", "path"},
	)

	// 宿主线程指标
	c.hostActionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_actions_total",
			Help:      "Total number of host-thread actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	c.hostActionWait = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "host_action_wait_seconds",
			Help:      "Time a host-thread action spent queued",
			Buckets:   []float64{0.001, 0.005, 0.016, 0.033, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"action"},
	)

	c.hostActionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "host_action_duration_seconds",
			Help:      "Host-thread action run time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"action"},
	)

	// 用例指标
	c.voicePlaysTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_plays_total",
			Help:      "Total number of voice play requests by outcome",
		},
		[]string{"outcome"},
	)

	c.shutdownsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdown_requests_total",
			Help:      "Total number of shutdown requests by outcome",
		},
		[]string{"outcome"},
	)

	c.voicesKnown = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voices_known",
		Help:      "Number of voice ids currently known",
	})

	c.serverRunning = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "control_server_running",
		Help:      "1 while the control server accepts connections",
	})

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RegisterQueueDepth 以 GaugeFunc 暴露宿主队列深度
func (c *Collector) RegisterQueueDepth(pending func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "host_queue_pending",
			Help:      "Number of host-thread actions waiting to run",
		},
		func() float64 { return float64(pending()) },
	))
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🧵 宿主线程与用例指标记录
// =============================================================================

// RecordHostAction 记录一次宿主线程动作
func (c *Collector) RecordHostAction(action, outcome string, wait, run time.Duration) {
	c.hostActionsTotal.WithLabelValues(action, outcome).Inc()
	c.hostActionWait.WithLabelValues(action).Observe(wait.Seconds())
	if run > 0 {
		c.hostActionDuration.WithLabelValues(action).Observe(run.Seconds())
	}
}

// RecordVoicePlay 记录语音播放结果
func (c *Collector) RecordVoicePlay(outcome string) {
	c.voicePlaysTotal.WithLabelValues(outcome).Inc()
}

// RecordShutdown 记录关闭请求结果
func (c *Collector) RecordShutdown(outcome string) {
	c.shutdownsTotal.WithLabelValues(outcome).Inc()
}

// SetVoicesKnown 更新已知语音数量
func (c *Collector) SetVoicesKnown(n int) {
	c.voicesKnown.Set(float64(n))
}

// SetServerRunning 更新控制面服务器运行状态
func (c *Collector) SetServerRunning(running bool) {
	if running {
		c.serverRunning.Set(1)
		return
	}
	c.serverRunning.Set(0)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
