package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BaSui01/mascotctl/api"
	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// =============================================================================
// 📦 响应信封
// =============================================================================

// Success 成功信封
type Success = api.Success

// Failure 失败信封
type Failure = api.Failure

// MaxBodyBytes 请求体大小上限
const MaxBodyBytes = 1 << 20

// ErrAlreadyWritten 响应已写出后再次写入
var ErrAlreadyWritten = errors.New("response already written")

// =============================================================================
// 🎯 Responder：每个请求恰好写出一个信封
// =============================================================================

// Responder 包装一次请求的 ResponseWriter，保证只写出一个信封。
// 只能在处理该请求的 goroutine 上使用。
type Responder struct {
	w       http.ResponseWriter
	r       *http.Request
	logger  *zap.Logger
	written bool
	status  int
}

// NewResponder 创建 Responder
func NewResponder(w http.ResponseWriter, r *http.Request, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{w: w, r: r, logger: logger}
}

// Header 返回响应头，写出前可修改
func (rs *Responder) Header() http.Header {
	return rs.w.Header()
}

// Request 返回当前请求
func (rs *Responder) Request() *http.Request {
	return rs.r
}

// Written 报告信封是否已写出
func (rs *Responder) Written() bool {
	return rs.written
}

// Status 返回已写出的状态码，未写出时为 0
func (rs *Responder) Status() int {
	return rs.status
}

// Success 写出 200 成功信封
func (rs *Responder) Success(message string, data any) error {
	return rs.WriteJSON(http.StatusOK, Success{Message: message, Data: data})
}

// Failure 写出失败信封，状态码由错误码决定
func (rs *Responder) Failure(summary string, err *types.Error) error {
	if err == nil {
		err = types.NewError(types.ErrInternalError, "unknown error")
	}
	status := err.Status()

	fields := []zap.Field{
		zap.String("code", string(err.Code)),
		zap.String("message", err.Message),
		zap.Int("status", status),
		zap.String("path", rs.r.URL.Path),
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}
	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed", fields...)
	} else {
		rs.logger.Info("request rejected", fields...)
	}

	if summary == "" {
		summary = SummaryForCode(err.Code)
	}
	return rs.WriteJSON(status, Failure{
		Error:  summary,
		Code:   string(err.Code),
		Detail: err.Detail(),
	})
}

// WriteJSON 写出任意 JSON 响应。第二次写入被丢弃并记录日志。
func (rs *Responder) WriteJSON(status int, body any) error {
	if rs.written {
		rs.logger.Warn("duplicate response dropped",
			zap.Int("status", status),
			zap.Int("first_status", rs.status),
			zap.String("path", rs.r.URL.Path),
		)
		return ErrAlreadyWritten
	}
	rs.written = true

	payload, err := json.Marshal(body)
	if err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(Failure{
			Error:  SummaryForCode(types.ErrInternalError),
			Code:   string(types.ErrInternalError),
			Detail: "failed to encode response",
		})
	}

	rs.status = status
	SetCORSHeaders(rs.w.Header())
	rs.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rs.w.Header().Set("X-Content-Type-Options", "nosniff")
	rs.w.WriteHeader(status)
	if _, err := rs.w.Write(append(payload, '\n')); err != nil {
		return err
	}
	return nil
}

// Flush 把已写出的响应推送到客户端
func (rs *Responder) Flush() error {
	return http.NewResponseController(rs.w).Flush()
}

// SetCORSHeaders 设置宽松的 CORS 响应头
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
}

// =============================================================================
// 🛡️ 顶层防护
// =============================================================================

// HandlerFunc 基于 Responder 的处理函数
type HandlerFunc func(rs *Responder, r *http.Request)

// Guard 把 HandlerFunc 适配为 http.Handler。
// panic 与未写出响应的返回都会变成 INTERNAL_ERROR 信封。
func Guard(logger *zap.Logger, fn HandlerFunc) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs := NewResponder(w, r, logger)
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				if !rs.Written() {
					_ = rs.Failure("", types.NewError(types.ErrInternalError, "internal server error"))
				}
				return
			}
			if !rs.Written() {
				logger.Error("handler returned without responding",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				_ = rs.Failure("", types.NewError(types.ErrInternalError, "handler produced no response"))
			}
		}()
		fn(rs, r)
	})
}

// =============================================================================
// 📥 请求解析
// =============================================================================

// DecodeJSONBody 严格解码 JSON 请求体：拒绝空体、未知字段、多余数据与超限请求体。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) *types.Error {
	if r.Body == nil || r.Body == http.NoBody {
		return types.NewError(types.ErrBadRequest, "request body is empty")
	}

	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return types.NewError(types.ErrBadRequest, "request body is empty")
		case errors.As(err, &tooLarge):
			return types.Errorf(types.ErrBadRequest, "request body exceeds %d bytes", MaxBodyBytes)
		default:
			return types.NewError(types.ErrBadRequest, "invalid JSON body").WithCause(err)
		}
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return types.NewError(types.ErrBadRequest, "request body must contain a single JSON object")
	}
	return nil
}
