// Package config 加载守护进程配置：默认值、YAML 文件、HMDP_ 环境变量
// 三层覆盖，启动时快速失败校验。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var (
	// ErrLoadFailed 表示配置文件读取或解析失败。
	ErrLoadFailed = errors.New("config: failed to load config")

	// ErrInvalid 表示配置校验失败。
	ErrInvalid = errors.New("config: invalid config")
)

// Config 是守护进程的全部配置。
type Config struct {
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Seckill  SeckillConfig  `koanf:"seckill"`
	Log      LogConfig      `koanf:"log"`
}

// RedisConfig Redis 连接配置。
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// PostgresConfig PostgreSQL 连接配置。
type PostgresConfig struct {
	DSN string `koanf:"dsn"`
}

// SeckillConfig 秒杀管道配置。
type SeckillConfig struct {
	Stream         string        `koanf:"stream"`
	Group          string        `koanf:"group"`
	Consumer       string        `koanf:"consumer"`
	UserLockExpiry time.Duration `koanf:"user_lock_expiry"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level string `koanf:"level"`
}

// Default 返回内置默认配置。
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Seckill: SeckillConfig{
			Stream:         "stream.orders",
			Group:          "g1",
			Consumer:       "c1",
			UserLockExpiry: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 加载配置。path 为空时只使用默认值与环境变量。
// 覆盖顺序：默认值 < YAML 文件 < HMDP_ 环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 应用 HMDP_ 前缀的环境变量覆盖。
func applyEnv(cfg *Config) {
	if v := os.Getenv("HMDP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HMDP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HMDP_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("HMDP_PG_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HMDP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate 校验配置完整性。
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required", ErrInvalid)
	}
	if c.Seckill.Stream == "" || c.Seckill.Group == "" || c.Seckill.Consumer == "" {
		return fmt.Errorf("%w: seckill stream/group/consumer are required", ErrInvalid)
	}
	if c.Seckill.UserLockExpiry <= 0 {
		return fmt.Errorf("%w: seckill.user_lock_expiry must be positive", ErrInvalid)
	}
	return nil
}

// SlogLevel 把配置的日志级别映射为 slog.Level，未知值按 info 处理。
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
