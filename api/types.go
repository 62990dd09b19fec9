package api

import "time"

// =============================================================================
// 📦 线上类型
// =============================================================================

// Success 成功信封
type Success struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Failure 失败信封。Error 面向用户，Detail 面向开发者。
type Failure struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// PlayVoiceRequest POST /voice/play 请求体
type PlayVoiceRequest struct {
	VoiceID *string `json:"voiceId"`
}

// PlayVoiceData POST /voice/play 成功数据
type PlayVoiceData struct {
	VoiceID string `json:"voiceId"`
}

// HealthStatus GET /health 成功数据
type HealthStatus struct {
	State     string    `json:"state"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Voices    int       `json:"voices"`
}

// VoiceList GET /voices 成功数据
type VoiceList struct {
	Voices []string `json:"voices"`
}

// 路由
const (
	PathPlayVoice = "/voice/play"
	PathShutdown  = "/shutdown"
	PathHealth    = "/health"
	PathVoices    = "/voices"
	PathMetrics   = "/metrics"
)
