// merchplan/internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/merchplan/internal/domain"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Metrics   MetricsConfig
	Log       LogConfig
	Forecast  domain.ForecastConfig
	Optimizer OptimizerConfig
	MOC       domain.MOCConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxConcurrency int64
}

// DSN builds a lib/pq style connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL builds a postgres:// connection URL, accepted by pgx.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	ForecastTTLSeconds  int
	ClearanceTTLSeconds int
}

// StorageConfig points at an S3-compatible bucket for exported reports.
type StorageConfig struct {
	Enabled   bool
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type MetricsConfig struct {
	Enabled bool
	Port    string
}

type LogConfig struct {
	Level  string
	Format string
}

type OptimizerConfig struct {
	Defaults domain.OptimizationConfig
	Workers  int
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads .env and the environment once and returns the shared configuration.
func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		instance, loadErr = LoadFrom(v)
	})

	return instance, loadErr
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "merchplan")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_CONCURRENCY", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
	v.SetDefault("CACHE_CLEARANCE_TTL_SECONDS", 120)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "merchplan-reports")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_PREFIX", "reports")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PORT", "9090")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	fc := domain.DefaultForecastConfig()
	v.SetDefault("FORECAST_MOVING_AVG_WEIGHT", fc.Weights.MovingAvgWeight)
	v.SetDefault("FORECAST_EXP_SMOOTH_WEIGHT", fc.Weights.ExpSmoothWeight)
	v.SetDefault("FORECAST_TREND_WEIGHT", fc.Weights.TrendWeight)
	v.SetDefault("FORECAST_ALPHA", fc.Alpha)
	v.SetDefault("FORECAST_BETA", fc.Beta)
	v.SetDefault("FORECAST_LOOKBACK_WEEKS", fc.LookbackWeeks)
	v.SetDefault("FORECAST_WEEKS", fc.ForecastWeeks)
	v.SetDefault("FORECAST_CONFIDENCE_LEVEL", fc.ConfidenceLevel)

	oc := domain.DefaultOptimizationConfig()
	v.SetDefault("OPTIMIZER_STRATEGY", string(oc.Strategy))
	v.SetDefault("OPTIMIZER_MAX_MARKDOWN_PCT", oc.MaxMarkdownPct)
	v.SetDefault("OPTIMIZER_MIN_MARGIN_PCT", oc.MinMarginPct)
	v.SetDefault("OPTIMIZER_ANALYZE_ELASTICITY", oc.AnalyzeElasticity)
	v.SetDefault("OPTIMIZER_WORKERS", 0)

	moc := domain.DefaultMOCConfig()
	v.SetDefault("MOC_MIN", moc.MinMOC)
	v.SetDefault("MOC_TARGET", moc.TargetMOC)
	v.SetDefault("MOC_MAX", moc.MaxMOC)
}

// LoadFrom builds and validates a Config from v. Defaults are registered on v first.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Mode:            v.GetString("SERVER_MODE"),
			ReadTimeout:     v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxConcurrency: v.GetInt64("DB_MAX_CONCURRENCY"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			ForecastTTLSeconds:  v.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			ClearanceTTLSeconds: v.GetInt("CACHE_CLEARANCE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Driver:    v.GetString("STORAGE_DRIVER"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Port:    v.GetString("METRICS_PORT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Forecast: domain.ForecastConfig{
			Weights: domain.ForecastWeights{
				MovingAvgWeight: v.GetFloat64("FORECAST_MOVING_AVG_WEIGHT"),
				ExpSmoothWeight: v.GetFloat64("FORECAST_EXP_SMOOTH_WEIGHT"),
				TrendWeight:     v.GetFloat64("FORECAST_TREND_WEIGHT"),
			},
			Alpha:           v.GetFloat64("FORECAST_ALPHA"),
			Beta:            v.GetFloat64("FORECAST_BETA"),
			LookbackWeeks:   v.GetInt("FORECAST_LOOKBACK_WEEKS"),
			ForecastWeeks:   v.GetInt("FORECAST_WEEKS"),
			ConfidenceLevel: v.GetFloat64("FORECAST_CONFIDENCE_LEVEL"),
		},
		Optimizer: OptimizerConfig{
			Defaults: domain.OptimizationConfig{
				Strategy:          domain.Strategy(strings.ToUpper(v.GetString("OPTIMIZER_STRATEGY"))),
				MaxMarkdownPct:    v.GetFloat64("OPTIMIZER_MAX_MARKDOWN_PCT"),
				MinMarginPct:      v.GetFloat64("OPTIMIZER_MIN_MARGIN_PCT"),
				AnalyzeElasticity: v.GetBool("OPTIMIZER_ANALYZE_ELASTICITY"),
			},
			Workers: v.GetInt("OPTIMIZER_WORKERS"),
		},
		MOC: domain.MOCConfig{
			MinMOC:    v.GetFloat64("MOC_MIN"),
			TargetMOC: v.GetFloat64("MOC_TARGET"),
			MaxMOC:    v.GetFloat64("MOC_MAX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the planning defaults.
func (c *Config) Validate() error {
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast defaults: %w", err)
	}
	if err := c.Optimizer.Defaults.Validate(); err != nil {
		return fmt.Errorf("optimizer defaults: %w", err)
	}
	if err := c.MOC.Validate(); err != nil {
		return fmt.Errorf("moc defaults: %w", err)
	}
	return nil
}
