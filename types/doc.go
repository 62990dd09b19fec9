/*
Package types 提供 mascotctl 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 api、usecase、server、
hostthread 等模块提供统一的错误码与上下文键。

# 核心类型

  - Error / ErrorCode：结构化错误，携带 HTTP 状态码与底层原因。
  - 控制面错误码：BAD_REQUEST、NOT_FOUND、TIMEOUT、RATE_LIMITED、INTERNAL_ERROR。
  - 生命周期错误码：BIND_ERROR、ALREADY_RUNNING、DUPLICATE_ROUTE、ROUTES_FROZEN。
  - 宿主队列错误码：QUEUE_CLOSED、QUEUE_FULL。

# 主要能力

  - 错误工具链：Errorf / WithCause / AsError / IsCode / Internal / StatusForCode
  - Context 传播：WithRequestID / RequestID / WithTraceID / TraceID
*/
package types
