// Package telemetry 封装控制面的 OpenTelemetry SDK 初始化：HTTP 请求与
// 宿主线程动作的 span 经 OTLP gRPC 导出，宿主队列深度作为可观测 gauge 导出。
// 禁用时只安装 W3C 传播器，不连接任何外部服务。
package telemetry
