package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp 切換到沒有 .env 的暫存目錄
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaultsWithoutEnvFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Completion.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Completion.Gemini.Model)
	assert.Equal(t, 20, cfg.ImageGen.Steps)
	assert.InDelta(t, 7.5, cfg.ImageGen.CFGScale, 0.0001)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GOOGLE_API_KEY", "test-google-key")
	t.Setenv("COMPLETION_PROVIDER", "openrouter")
	t.Setenv("SD_BASE_URL", "http://sd.local:7860")
	t.Setenv("PIPELINE_CONCURRENCY", "3")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-google-key", cfg.Completion.Gemini.APIKey)
	assert.Equal(t, "openrouter", cfg.Completion.Provider)
	assert.Equal(t, "http://sd.local:7860", cfg.ImageGen.BaseURL)
	assert.Equal(t, 3, cfg.Pipeline.Concurrency)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	chdirTemp(t)
	// t.Setenv 負責還原；godotenv 不覆蓋已存在的變數，所以先清掉
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("S3_BUCKET", "")
	os.Unsetenv("STORAGE_DRIVER")
	os.Unsetenv("S3_BUCKET")
	require.NoError(t, os.WriteFile(".env", []byte("STORAGE_DRIVER=s3\nS3_BUCKET=fridge-artifacts\n"), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "fridge-artifacts", cfg.Storage.S3.Bucket)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: 8080},
			Completion: CompletionConfig{Provider: "gemini"},
			Storage:    StorageConfig{Driver: "local", OutputDir: "output"},
			Cache:      CacheConfig{Enabled: true, Driver: "memory", MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Minute},
			Queue:      QueueConfig{Workers: 1, MaxSize: 1},
			Pipeline:   PipelineConfig{Concurrency: 1},
		}
	}

	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown provider", func(c *Config) { c.Completion.Provider = "bard" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"zero workers", func(c *Config) { c.Queue.Workers = 0 }},
		{"zero concurrency", func(c *Config) { c.Pipeline.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "abcd...wxyz", MaskAPIKey("abcdefghijklmnopqrstuvwxyz"))
}
