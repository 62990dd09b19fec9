package handlers

import (
	"context"
	"net/http"

	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// Shutdowner 关闭用例
type Shutdowner interface {
	Shutdown(ctx context.Context, ack func() error) *types.Error
}

// ShutdownHandler 关闭处理器
type ShutdownHandler struct {
	usecase Shutdowner
	logger  *zap.Logger
}

// NewShutdownHandler 创建关闭处理器
func NewShutdownHandler(uc Shutdowner, logger *zap.Logger) *ShutdownHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShutdownHandler{usecase: uc, logger: logger.With(zap.String("handler", "shutdown"))}
}

// HandleShutdown 处理 POST /shutdown。
// 成功信封在服务器停止之前写出并刷新，连接随后关闭。
func (h *ShutdownHandler) HandleShutdown(rs *Responder, r *http.Request) {
	err := h.usecase.Shutdown(r.Context(), func() error {
		rs.Header().Set("Connection", "close")
		if err := rs.Success(MsgServerStopped, nil); err != nil {
			return err
		}
		return rs.Flush()
	})
	if err != nil {
		_ = rs.Failure(MsgShutdownFailed, err)
	}
}
