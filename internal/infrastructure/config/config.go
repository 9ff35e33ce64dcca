package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Completion  CompletionConfig `mapstructure:"completion"`
	ImageGen    ImageGenConfig   `mapstructure:"image_gen"`
	PDF         PDFConfig        `mapstructure:"pdf"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Pipeline    PipelineConfig   `mapstructure:"pipeline"`
	Image       ImageConfig      `mapstructure:"image"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// CompletionConfig 文字生成服務設定
type CompletionConfig struct {
	Provider   string           `mapstructure:"provider"` // gemini | openrouter
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BaseURL   string        `mapstructure:"base_url"`
}

// ImageGenConfig 圖片生成（Stable Diffusion WebUI）設定
type ImageGenConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	Steps    int           `mapstructure:"steps"`
	CFGScale float64       `mapstructure:"cfg_scale"`
	Width    int           `mapstructure:"width"`
	Height   int           `mapstructure:"height"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PDFConfig PDF 輸出設定
type PDFConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BinPath string `mapstructure:"bin_path"`
}

// StorageConfig 產出檔案存放設定
type StorageConfig struct {
	Driver     string   `mapstructure:"driver"` // local | s3
	OutputDir  string   `mapstructure:"output_dir"`
	PublicBase string   `mapstructure:"public_base"`
	S3         S3Config `mapstructure:"s3"`
}

// S3Config S3 設定
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig 任務隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PipelineConfig 食譜流程設定
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定，缺少 .env 時僅使用預設值與環境變數
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"completion.provider":              "COMPLETION_PROVIDER",
		"completion.gemini.api_key":        "GOOGLE_API_KEY",
		"completion.gemini.model":          "GEMINI_MODEL",
		"completion.openrouter.api_key":    "OPENROUTER_API_KEY",
		"completion.openrouter.model":      "OPENROUTER_MODEL",
		"completion.openrouter.max_tokens": "MODEL_MAX_TOKENS",
		"image_gen.enabled":                "IMAGE_GEN_ENABLED",
		"image_gen.base_url":               "SD_BASE_URL",
		"pdf.enabled":                      "PDF_ENABLED",
		"pdf.bin_path":                     "WKHTMLTOPDF_PATH",
		"storage.driver":                   "STORAGE_DRIVER",
		"storage.output_dir":               "OUTPUT_DIR",
		"storage.s3.bucket":                "S3_BUCKET",
		"storage.s3.region":                "AWS_REGION",
		"cache.enabled":                    "CACHE_ENABLED",
		"cache.driver":                     "CACHE_DRIVER",
		"cache.redis_addr":                 "REDIS_ADDR",
		"rate_limit.enabled":               "RATE_LIMIT_ENABLED",
		"rate_limit.requests":              "RATE_LIMIT_REQUESTS",
		"rate_limit.window":                "RATE_LIMIT_WINDOW",
		"pipeline.concurrency":             "PIPELINE_CONCURRENCY",
		"server.port":                      "PORT",
		"dedup_window":                     "DEDUP_WINDOW",
		"log_level":                        "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "fridge-chef")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10m")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allow_origins", []string{"*"})

	// 文字生成設定
	v.SetDefault("completion.provider", "gemini")
	v.SetDefault("completion.gemini.model", "gemini-1.5-flash")
	v.SetDefault("completion.gemini.max_tokens", 4096)
	v.SetDefault("completion.gemini.temperature", 0.7)
	v.SetDefault("completion.gemini.timeout", "60s")
	v.SetDefault("completion.openrouter.model", "qwen/qwen2.5-vl-72b-instruct:free")
	v.SetDefault("completion.openrouter.max_tokens", 4096)
	v.SetDefault("completion.openrouter.timeout", "60s")
	v.SetDefault("completion.openrouter.base_url", "https://openrouter.ai/api/v1")

	// 圖片生成設定
	v.SetDefault("image_gen.enabled", true)
	v.SetDefault("image_gen.base_url", "http://127.0.0.1:7860")
	v.SetDefault("image_gen.steps", 20)
	v.SetDefault("image_gen.cfg_scale", 7.5)
	v.SetDefault("image_gen.width", 512)
	v.SetDefault("image_gen.height", 512)
	v.SetDefault("image_gen.timeout", "5m")

	// PDF 設定
	v.SetDefault("pdf.enabled", true)
	v.SetDefault("pdf.bin_path", "")

	// 產出檔案設定
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.output_dir", "output")
	v.SetDefault("storage.public_base", "/artifacts")
	v.SetDefault("storage.s3.region", "ap-southeast-1")
	v.SetDefault("storage.s3.prefix", "fridge-chef/")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 隊列設定
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 流程設定
	v.SetDefault("pipeline.concurrency", 1)

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Completion.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unknown completion provider %q", config.Completion.Provider)
	}

	switch config.Storage.Driver {
	case "local":
	case "s3":
		if config.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required when storage driver is s3")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
	if config.Storage.OutputDir == "" {
		return fmt.Errorf("storage output dir is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Driver != "memory" && config.Cache.Driver != "redis" {
			return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("invalid pipeline concurrency")
	}

	return nil
}
