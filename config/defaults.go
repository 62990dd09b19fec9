// =============================================================================
// 📦 mascotctl 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Host:      DefaultHostConfig(),
		Voice:     DefaultVoiceConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxHeaderBytes:  1 << 20, // 1 MB
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// DefaultHostConfig 返回默认宿主线程配置
func DefaultHostConfig() HostConfig {
	return HostConfig{
		TickInterval:  16 * time.Millisecond, // ~60 FPS
		QueueSize:     64,
		ActionTimeout: 5 * time.Second,
	}
}

// DefaultVoiceConfig 返回默认语音配置
func DefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		Dir:        "Voice",
		Extensions: []string{".wav", ".mp3", ".ogg"},
		Builtin:    []string{"click", "start", "end"},
		Startup:    "start",
		Watch:      true,
		Debounce:   200 * time.Millisecond,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "mascot",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "mascotctl",
		SampleRate:   0.1,
	}
}
