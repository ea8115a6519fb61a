package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tablecart/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Cart       CartConfig       `mapstructure:"cart"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// StorefrontConfig 默认店铺配置（首次启动时创建）
type StorefrontConfig struct {
	DefaultSlug     string `mapstructure:"default_slug"`
	DefaultName     string `mapstructure:"default_name"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

// CartConfig 购物车配置
type CartConfig struct {
	SlotBackend          string                `mapstructure:"slot_backend"` // 槽位后端（redis/database/memory）
	SnapshotTTLHours     int                   `mapstructure:"snapshot_ttl_hours"`
	PurgeIntervalSeconds int                   `mapstructure:"purge_interval_seconds"`
	SessionSecret        string                `mapstructure:"session_secret"`
	SessionExpireHours   int                   `mapstructure:"session_expire_hours"`
	CouponRateLimit      CouponRateLimitConfig `mapstructure:"coupon_rate_limit"`
	Breaker              BreakerConfig         `mapstructure:"breaker"`
}

// SnapshotTTL 快照保留时长
func (c CartConfig) SnapshotTTL() time.Duration {
	if c.SnapshotTTLHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(c.SnapshotTTLHours) * time.Hour
}

// PurgeInterval 过期快照清理间隔
func (c CartConfig) PurgeInterval() time.Duration {
	if c.PurgeIntervalSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.PurgeIntervalSeconds) * time.Second
}

// SessionTTL 购物车会话有效期
func (c CartConfig) SessionTTL() time.Duration {
	if c.SessionExpireHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionExpireHours) * time.Hour
}

// CouponRateLimitConfig 优惠码尝试限流配置
type CouponRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// BreakerConfig Redis 槽位熔断配置
type BreakerConfig struct {
	FailureThreshold   int `mapstructure:"failure_threshold"`
	OpenTimeoutSeconds int `mapstructure:"open_timeout_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	// 设置默认值（可选）
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/tablecart.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "tc")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-CSRF-Token",
		"X-Cart-Token",
		"X-Request-ID",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("storefront.default_slug", "main")
	viper.SetDefault("storefront.default_name", "Main Dining Room")
	viper.SetDefault("storefront.default_currency", "USD")
	viper.SetDefault("cart.slot_backend", "redis")
	viper.SetDefault("cart.snapshot_ttl_hours", 72)
	viper.SetDefault("cart.purge_interval_seconds", 600)
	viper.SetDefault("cart.session_secret", "cart-change-me-in-production")
	viper.SetDefault("cart.session_expire_hours", 24)
	viper.SetDefault("cart.coupon_rate_limit.window_seconds", 300)
	viper.SetDefault("cart.coupon_rate_limit.max_attempts", 10)
	viper.SetDefault("cart.coupon_rate_limit.block_seconds", 600)
	viper.SetDefault("cart.breaker.failure_threshold", 5)
	viper.SetDefault("cart.breaker.open_timeout_seconds", 30)

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
