package seqid

import "time"

// Options 定义 Worker 的配置。
type Options struct {
	// KeyPrefix 计数 key 前缀，默认为 "icr:"。
	// 完整计数 key 格式："{KeyPrefix}{seq}:{yyyy:MM:dd}"。
	KeyPrefix string

	// Clock 时间源，默认为 time.Now。测试中可注入固定时钟。
	Clock func() time.Time
}

// Option 定义配置 Worker 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		KeyPrefix: "icr:",
		Clock:     time.Now,
	}
}

// WithKeyPrefix 设置计数 key 前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.KeyPrefix = prefix
		}
	}
}

// WithClock 注入自定义时间源。
// 传入 nil 时保持默认值。
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}
