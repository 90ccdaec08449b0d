package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
)

const envPrefix = "VERIFUND"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Task     TaskConfig     `mapstructure:"task"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Storage  StorageConfig  `mapstructure:"storage"`

	v *viper.Viper
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogLevel    string `mapstructure:"log_level"` // silent, error, warn, info
}

// AuthConfig JWT 配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// TaskConfig 定时任务配置，间隔单位为秒
type TaskConfig struct {
	FinishInterval   int `mapstructure:"finish_interval"`
	DispatchInterval int `mapstructure:"dispatch_interval"`
	PoolSize         int `mapstructure:"pool_size"`
	BatchSize        int `mapstructure:"batch_size"`
}

// ScoringConfig 信用分配置
type ScoringConfig struct {
	CatalogVersion string `mapstructure:"catalog_version"`
}

// StorageConfig 文件存储配置
type StorageConfig struct {
	Provider     string           `mapstructure:"provider"` // cloudinary, s3, 留空表示不启用上传
	Folder       string           `mapstructure:"folder"`
	ImageMaxEdge int              `mapstructure:"image_max_edge"`
	MaxFileSize  int64            `mapstructure:"max_file_size"`
	Cloudinary   CloudinaryConfig `mapstructure:"cloudinary"`
	S3           S3Config         `mapstructure:"s3"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "verifund")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "verifund")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("task.finish_interval", 300)
	v.SetDefault("task.dispatch_interval", 10)
	v.SetDefault("task.pool_size", 8)
	v.SetDefault("task.batch_size", 200)
	v.SetDefault("scoring.catalog_version", "v1")
	v.SetDefault("storage.provider", "")
	v.SetDefault("storage.folder", "progress-reports")
	v.SetDefault("storage.image_max_edge", 2048)
	v.SetDefault("storage.max_file_size", 20<<20)
	v.SetDefault("storage.cloudinary.cloud_name", "")
	v.SetDefault("storage.cloudinary.api_key", "")
	v.SetDefault("storage.cloudinary.api_secret", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "ap-southeast-1")
	v.SetDefault("storage.s3.prefix", "")
}

// Load 读取配置：.env -> config.yaml -> VERIFUND_ 环境变量，后者覆盖前者。
// paths 为空时按默认目录查找配置文件。
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Could not load .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/etc/verifund"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// 自动读取环境变量，例如 VERIFUND_DATABASE_HOST
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		logger.Warn("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.v = v

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set in release mode")
	}
	switch c.Storage.Provider {
	case "", "cloudinary", "s3":
	default:
		return fmt.Errorf("unknown storage.provider %q", c.Storage.Provider)
	}
	if c.Task.PoolSize <= 0 {
		return errors.New("task.pool_size must be positive")
	}
	return nil
}

// ConfigFile 当前使用的配置文件路径
func (c *Config) ConfigFile() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch 监听配置文件变化，变化后重新解析并回调。未使用配置文件时不做任何事。
func (c *Config) Watch(onChange func(*Config)) {
	if c.ConfigFile() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Config file changed: %s (%s)", e.Name, e.Op)
		var next Config
		if err := c.v.Unmarshal(&next); err != nil {
			logger.Error("Failed to reload config: %v", err)
			return
		}
		next.v = c.v
		onChange(&next)
	})
	c.v.WatchConfig()
}
