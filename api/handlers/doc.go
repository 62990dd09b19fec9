/*
包 handlers 提供控制面的 HTTP 处理器与统一响应信封。

# 响应信封

成功时写出 Success{message, data}，失败时写出 Failure{error, code, detail}。
Responder 保证每个请求恰好写出一个信封，所有响应都带有
Access-Control-Allow-Origin: * 与 JSON Content-Type。

# 核心类型

  - Responder：单次请求的响应写入器，重复写入被丢弃并记录日志。
  - Guard：顶层防护，把 panic 与未响应的返回转换为 INTERNAL_ERROR。
  - VoiceHandler：POST /voice/play。
  - ShutdownHandler：POST /shutdown，先确认再拆除。
  - HealthHandler：GET /health 与 GET /voices。
*/
package handlers
