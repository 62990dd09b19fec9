package handlers

import (
	"net/http"
	"time"

	"github.com/BaSui01/mascotctl/api"
	"go.uber.org/zap"
)

// =============================================================================
// 🏥 健康检查 Handler
// =============================================================================

// VoiceLister 列出已知语音
type VoiceLister interface {
	IDs() []string
}

// HealthStatus GET /health 数据
type HealthStatus = api.HealthStatus

// HealthHandler 健康检查处理器
type HealthHandler struct {
	state   func() string
	voices  VoiceLister
	version string
	logger  *zap.Logger
}

// NewHealthHandler 创建健康检查处理器。state 返回服务器当前状态。
func NewHealthHandler(state func() string, voices VoiceLister, version string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		state:   state,
		voices:  voices,
		version: version,
		logger:  logger,
	}
}

// HandleHealth 处理 GET /health
func (h *HealthHandler) HandleHealth(rs *Responder, r *http.Request) {
	_ = rs.Success(MsgOK, HealthStatus{
		State:     h.state(),
		Version:   h.version,
		Timestamp: time.Now(),
		Voices:    len(h.voices.IDs()),
	})
}

// HandleVoices 处理 GET /voices
func (h *HealthHandler) HandleVoices(rs *Responder, r *http.Request) {
	ids := h.voices.IDs()
	if ids == nil {
		ids = []string{}
	}
	_ = rs.Success(MsgOK, api.VoiceList{Voices: ids})
}
