package handlers

import (
	"context"
	"net/http"

	"github.com/BaSui01/mascotctl/api"
	"github.com/BaSui01/mascotctl/internal/usecase"
	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🔊 语音 Handler
// =============================================================================

// VoicePlayer 播放语音用例
type VoicePlayer interface {
	PlayVoice(ctx context.Context, voiceID string) (*usecase.PlayResult, *types.Error)
}

// PlayVoiceRequest POST /voice/play 请求体
type PlayVoiceRequest = api.PlayVoiceRequest

// VoiceHandler 语音处理器
type VoiceHandler struct {
	usecase VoicePlayer
	logger  *zap.Logger
}

// NewVoiceHandler 创建语音处理器
func NewVoiceHandler(uc VoicePlayer, logger *zap.Logger) *VoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoiceHandler{usecase: uc, logger: logger.With(zap.String("handler", "voice"))}
}

// HandlePlay 处理 POST /voice/play
func (h *VoiceHandler) HandlePlay(rs *Responder, r *http.Request) {
	var req PlayVoiceRequest
	if err := DecodeJSONBody(rs.w, r, &req); err != nil {
		_ = rs.Failure("", err)
		return
	}
	if req.VoiceID == nil {
		_ = rs.Failure("", types.NewError(types.ErrBadRequest, "voiceId is required"))
		return
	}

	result, err := h.usecase.PlayVoice(r.Context(), *req.VoiceID)
	if err != nil {
		summary := ""
		if err.Code == types.ErrNotFound {
			summary = "ボイスが見つかりません"
		}
		_ = rs.Failure(summary, err)
		return
	}

	_ = rs.Success(MsgVoicePlayed, result)
}
