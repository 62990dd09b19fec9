// Package config 提供控制面服务的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（前缀 MASCOT）的顺序合并，
// 覆盖服务器监听、宿主线程调度、语音资源、日志、指标与遥测。
package config
