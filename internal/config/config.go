// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Inventory InventoryConfig
	Trends    TrendsConfig
	LLM       LLMConfig
	Analysis  AnalysisConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	UploadDir   string
	ReportDir   string
	MaxUploadMB int
}

type InventoryConfig struct {
	CSVPath             string
	DefaultLeadTimeDays int
}

type TrendsConfig struct {
	Provider         string
	SerpAPIKey       string
	SerpAPIBaseURL   string
	Geo              string
	Timeframe        string
	MaxKeywords      int
	MinConfidence    float64
	MinDelaySeconds  float64
	MaxDelaySeconds  float64
	RetryAttempts    int
	RetryBaseSeconds float64
	SyntheticCount   int
	RequestTimeout   int
}

type LLMConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	RetryAttempts   int
	RetryInitialMS  int
}

type AnalysisConfig struct {
	Season         string
	Events         []string
	TimeoutSeconds int
	MaxConcurrent  int64
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	TrendTTLSeconds int
}

type StorageConfig struct {
	Enabled       bool
	Driver        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	ReportPrefix  string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderPath      string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the process environment once and returns the shared config.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = New(v)

		// Ensure upload and report directories exist
		ensureDir(instance.App.UploadDir)
		ensureDir(instance.App.ReportDir)
	})

	return instance
}

// SetDefaults registers every known key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 900)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("APP_REPORT_DIR", "./data/reports")
	v.SetDefault("APP_MAX_UPLOAD_MB", 16)
	v.SetDefault("INVENTORY_CSV", "store_inventory.csv")
	v.SetDefault("INVENTORY_DEFAULT_LEAD_TIME_DAYS", 14)
	v.SetDefault("TRENDS_PROVIDER", "serpapi")
	v.SetDefault("SERPAPI_KEY", "")
	v.SetDefault("SERPAPI_BASE_URL", "https://serpapi.com/search.json")
	v.SetDefault("TRENDS_GEO", "US")
	v.SetDefault("TRENDS_TIMEFRAME", "today 3-m")
	v.SetDefault("TRENDS_MAX_KEYWORDS", 15)
	v.SetDefault("TRENDS_MIN_CONFIDENCE", 20.0)
	v.SetDefault("TRENDS_MIN_DELAY_SECONDS", 3.0)
	v.SetDefault("TRENDS_MAX_DELAY_SECONDS", 6.0)
	v.SetDefault("TRENDS_RETRY_ATTEMPTS", 3)
	v.SetDefault("TRENDS_RETRY_BASE_SECONDS", 5.0)
	v.SetDefault("TRENDS_SYNTHETIC_COUNT", 5)
	v.SetDefault("TRENDS_REQUEST_TIMEOUT", 30)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_OUTPUT_TOKENS", 2048)
	v.SetDefault("LLM_RETRY_ATTEMPTS", 3)
	v.SetDefault("LLM_RETRY_INITIAL_MS", 1000)
	v.SetDefault("ANALYSIS_SEASON", "Late Summer")
	v.SetDefault("ANALYSIS_EVENTS", "Labor Day,Back to School,Fall Fashion Week")
	v.SetDefault("ANALYSIS_TIMEOUT_SECONDS", 600)
	v.SetDefault("ANALYSIS_MAX_CONCURRENT", 2)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TREND_TTL_SECONDS", 6*60*60)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_REPORT_PREFIX", "reports/")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FOLDER_PATH", "")
	v.SetDefault("LOG_LEVEL", "info")
}

// New builds a Config from an already populated viper instance.
func New(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		App: AppConfig{
			UploadDir:   v.GetString("APP_UPLOAD_DIR"),
			ReportDir:   v.GetString("APP_REPORT_DIR"),
			MaxUploadMB: v.GetInt("APP_MAX_UPLOAD_MB"),
		},
		Inventory: InventoryConfig{
			CSVPath:             v.GetString("INVENTORY_CSV"),
			DefaultLeadTimeDays: v.GetInt("INVENTORY_DEFAULT_LEAD_TIME_DAYS"),
		},
		Trends: TrendsConfig{
			Provider:         strings.ToLower(v.GetString("TRENDS_PROVIDER")),
			SerpAPIKey:       v.GetString("SERPAPI_KEY"),
			SerpAPIBaseURL:   v.GetString("SERPAPI_BASE_URL"),
			Geo:              v.GetString("TRENDS_GEO"),
			Timeframe:        v.GetString("TRENDS_TIMEFRAME"),
			MaxKeywords:      v.GetInt("TRENDS_MAX_KEYWORDS"),
			MinConfidence:    v.GetFloat64("TRENDS_MIN_CONFIDENCE"),
			MinDelaySeconds:  v.GetFloat64("TRENDS_MIN_DELAY_SECONDS"),
			MaxDelaySeconds:  v.GetFloat64("TRENDS_MAX_DELAY_SECONDS"),
			RetryAttempts:    v.GetInt("TRENDS_RETRY_ATTEMPTS"),
			RetryBaseSeconds: v.GetFloat64("TRENDS_RETRY_BASE_SECONDS"),
			SyntheticCount:   v.GetInt("TRENDS_SYNTHETIC_COUNT"),
			RequestTimeout:   v.GetInt("TRENDS_REQUEST_TIMEOUT"),
		},
		LLM: LLMConfig{
			APIKey:          v.GetString("GEMINI_API_KEY"),
			Model:           v.GetString("GEMINI_MODEL"),
			Temperature:     float32(v.GetFloat64("LLM_TEMPERATURE")),
			MaxOutputTokens: v.GetInt32("LLM_MAX_OUTPUT_TOKENS"),
			RetryAttempts:   v.GetInt("LLM_RETRY_ATTEMPTS"),
			RetryInitialMS:  v.GetInt("LLM_RETRY_INITIAL_MS"),
		},
		Analysis: AnalysisConfig{
			Season:         v.GetString("ANALYSIS_SEASON"),
			Events:         splitList(v.GetString("ANALYSIS_EVENTS")),
			TimeoutSeconds: v.GetInt("ANALYSIS_TIMEOUT_SECONDS"),
			MaxConcurrent:  v.GetInt64("ANALYSIS_MAX_CONCURRENT"),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			TrendTTLSeconds: v.GetInt("CACHE_TREND_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:       v.GetBool("STORAGE_ENABLED"),
			Driver:        v.GetString("STORAGE_DRIVER"),
			ReportPrefix:  v.GetString("STORAGE_REPORT_PREFIX"),
			Endpoint:      v.GetString("STORAGE_ENDPOINT"),
			AccessKey:     v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     v.GetString("STORAGE_SECRET_KEY"),
			Bucket:        v.GetString("STORAGE_BUCKET"),
			Region:        v.GetString("STORAGE_REGION"),
			UseSSL:        v.GetBool("STORAGE_USE_SSL"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderPath:      v.GetString("DRIVE_FOLDER_PATH"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

// AnalysisTimeout bounds a whole analysis run.
func (c *Config) AnalysisTimeout() time.Duration {
	if c.Analysis.TimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// MaxUploadBytes is the largest accepted inventory upload.
func (c *Config) MaxUploadBytes() int64 {
	if c.App.MaxUploadMB <= 0 {
		return 16 << 20
	}
	return int64(c.App.MaxUploadMB) << 20
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
