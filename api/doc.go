// Package api 定义控制面的线上类型、路由路径与 Go 客户端。
//
// 控制面只监听本地回环地址，供桌面角色的 Web UI 调用：
//
//	POST /voice/play   {"voiceId": "click"}
//	POST /shutdown
//	GET  /health
//	GET  /voices
//	GET  /metrics
//
// 成功响应为 {"message", "data"}，失败响应为 {"error", "code", "detail"}。
package api
