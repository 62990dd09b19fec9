/*
包 metrics 提供基于 Prometheus 的控制面指标采集能力，覆盖
HTTP 请求、宿主线程动作与用例结果。

# 概述

Collector 持有独立的 prometheus.Registry，通过 promauto.With 注册指标，
并经 Handler 以 /metrics 暴露。同一进程可以创建多个互不干扰的 Collector。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，按 method/path/status
    分组，状态码归类为 2xx/3xx/4xx/5xx。
  - 宿主线程指标：动作结果计数、排队时间与执行时间、队列深度。
  - 用例指标：语音播放与关闭请求的结果计数、已知语音数量、
    服务器运行状态。
*/
package metrics
