// 配置加载器与校验测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Voice", cfg.Voice.Dir)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mascot.yaml")

	yamlContent := `
server:
  port: 18080
  shutdown_timeout: 2s
host:
  tick_interval: 33ms
  action_timeout: 1s
voice:
  dir: "/tmp/voices"
  builtin: ["click", "hello"]
  watch: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 33*time.Millisecond, cfg.Host.TickInterval)
	assert.Equal(t, time.Second, cfg.Host.ActionTimeout)
	assert.Equal(t, "/tmp/voices", cfg.Voice.Dir)
	assert.Equal(t, []string{"click", "hello"}, cfg.Voice.Builtin)
	assert.False(t, cfg.Voice.Watch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// 未出现在 YAML 中的字段保留默认值
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 64, cfg.Host.QueueSize)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("MASCOT_SERVER_PORT", "7777")
	t.Setenv("MASCOT_HOST_ACTION_TIMEOUT", "750ms")
	t.Setenv("MASCOT_VOICE_BUILTIN", "a, b ,c")
	t.Setenv("MASCOT_METRICS_ENABLED", "false")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Host.ActionTimeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Voice.Builtin)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mascot.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 9000\n  host: 0.0.0.0\n"), 0644))

	t.Setenv("MASCOT_SERVER_PORT", "9999")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_SERVER_PORT", "6666")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, 6666, cfg.Server.Port)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("MASCOT_HOST_TICK_INTERVAL", "soon")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MASCOT_HOST_TICK_INTERVAL")
}

func TestLoader_WithValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.NoError(t, err)

	t.Setenv("MASCOT_SERVER_PORT", "70000")
	_, err = NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().
		WithConfigPath("/non/existent/path/mascot.yaml").
		Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoader_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  port: [invalid
  this is not valid yaml
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "ephemeral port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "negative port", mutate: func(c *Config) { c.Server.Port = -1 }, wantErr: "invalid server port"},
		{name: "zero grace", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: "shutdown_timeout"},
		{name: "burst missing", mutate: func(c *Config) { c.Server.RateLimitBurst = 0 }, wantErr: "rate_limit_burst"},
		{name: "rate limit off", mutate: func(c *Config) { c.Server.RateLimitRPS = 0; c.Server.RateLimitBurst = 0 }},
		{name: "zero tick", mutate: func(c *Config) { c.Host.TickInterval = 0 }, wantErr: "tick_interval"},
		{name: "zero queue", mutate: func(c *Config) { c.Host.QueueSize = 0 }, wantErr: "queue_size"},
		{name: "zero action timeout", mutate: func(c *Config) { c.Host.ActionTimeout = 0 }, wantErr: "action_timeout"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log format"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Telemetry.SampleRate = 2 }, wantErr: "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustLoad_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [oops"), 0644))

	assert.Panics(t, func() { MustLoad(configPath) })
}
