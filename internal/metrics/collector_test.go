package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector("test", zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.hostActionsTotal)
	assert.NotNil(t, collector.voicePlaysTotal)
	assert.NotNil(t, collector.Registry())
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// 同名 namespace 的两个 Collector 不应冲突
	a := NewCollector("mascot", nil)
	b := NewCollector("mascot", nil)

	a.RecordVoicePlay("ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.voicePlaysTotal.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.voicePlaysTotal.WithLabelValues("ok")))
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector("test", zap.NewNop())

	collector.RecordHTTPRequest("POST", "/voice/play", 200, 10*time.Millisecond, 20, 80)
	collector.RecordHTTPRequest("POST", "/voice/play", 404, 5*time.Millisecond, 20, 90)
	collector.RecordHTTPRequest("POST", "/voice/play", 200, 5*time.Millisecond, 20, 80)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/voice/play", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/voice/play", "4xx")))
}

func TestCollector_HostAndUseCaseMetrics(t *testing.T) {
	collector := NewCollector("test", zap.NewNop())

	collector.RecordHostAction("play_voice", "executed", time.Millisecond, 2*time.Millisecond)
	collector.RecordHostAction("play_voice", "dropped", time.Millisecond, 0)
	collector.RecordShutdown("ok")
	collector.SetVoicesKnown(4)
	collector.SetServerRunning(true)

	pending := 3
	collector.RegisterQueueDepth(func() int { return pending })

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.hostActionsTotal.WithLabelValues("play_voice", "executed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.hostActionsTotal.WithLabelValues("play_voice", "dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.shutdownsTotal.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(collector.voicesKnown))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.serverRunning))

	collector.SetServerRunning(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.serverRunning))
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector("test", zap.NewNop())
	collector.RecordVoicePlay("ok")
	collector.RegisterQueueDepth(func() int { return 2 })

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `test_voice_plays_total{outcome="ok"} 1`), text)
	assert.Contains(t, text, "test_host_queue_pending 2")
	assert.Contains(t, text, "go_goroutines")
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{504, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCode(tt.code))
	}
}
