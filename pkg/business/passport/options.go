package passport

import (
	"log/slog"
	"time"
)

const (
	// DefaultCodeTTL 验证码默认有效期。
	DefaultCodeTTL = 2 * time.Minute

	// DefaultSessionTTL 登录态默认滑动过期时长。
	DefaultSessionTTL = 30 * time.Minute

	// DefaultCodeLength 验证码默认位数。
	DefaultCodeLength = 6
)

// Options 定义 Service 的配置。
type Options struct {
	// CodeTTL 验证码有效期，默认为 DefaultCodeTTL。
	CodeTTL time.Duration

	// SessionTTL 登录态滑动过期时长，默认为 DefaultSessionTTL。
	SessionTTL time.Duration

	// CodeKeyPrefix 验证码键前缀，默认为 "login:code:"。
	CodeKeyPrefix string

	// TokenKeyPrefix 登录态键前缀，默认为 "login:token:"。
	TokenKeyPrefix string

	// SignKeyPrefix 签到 bitmap 键前缀，默认为 "sign:"。
	SignKeyPrefix string

	// CodeFunc 验证码生成函数，默认生成 DefaultCodeLength 位数字。
	// 测试注入用。
	CodeFunc func() string

	// TokenFunc 登录 token 生成函数，默认为去连字符的 uuid。
	// 测试注入用。
	TokenFunc func() string

	// Logger 用于记录日志，默认使用 slog.Default()。
	// 传入 nil 将禁用日志输出。
	Logger *slog.Logger
}

// Option 定义配置函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		CodeTTL:        DefaultCodeTTL,
		SessionTTL:     DefaultSessionTTL,
		CodeKeyPrefix:  "login:code:",
		TokenKeyPrefix: "login:token:",
		SignKeyPrefix:  "sign:",
		CodeFunc:       randomCode,
		TokenFunc:      randomToken,
		Logger:         slog.Default(),
	}
}

// WithCodeTTL 设置验证码有效期。
func WithCodeTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.CodeTTL = ttl
		}
	}
}

// WithSessionTTL 设置登录态滑动过期时长。
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.SessionTTL = ttl
		}
	}
}

// WithCodeFunc 注入验证码生成函数。传入 nil 时保持默认值。
func WithCodeFunc(f func() string) Option {
	return func(o *Options) {
		if f != nil {
			o.CodeFunc = f
		}
	}
}

// WithTokenFunc 注入 token 生成函数。传入 nil 时保持默认值。
func WithTokenFunc(f func() string) Option {
	return func(o *Options) {
		if f != nil {
			o.TokenFunc = f
		}
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
