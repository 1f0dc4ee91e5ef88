package social

import (
	"log/slog"
	"time"
)

// Options 定义 Service 的配置。
type Options struct {
	// LikeKeyPrefix 点赞 zset 键前缀，默认为 "blog:liked:"。
	LikeKeyPrefix string

	// FollowKeyPrefix 关注 set 键前缀，默认为 "follows:"。
	FollowKeyPrefix string

	// FeedKeyPrefix 收件箱 zset 键前缀，默认为 "feed:"。
	FeedKeyPrefix string

	// GeoKeyPrefix 商铺 geo 键前缀，默认为 "shop:geo:"。
	GeoKeyPrefix string

	// Logger 用于记录日志，默认使用 slog.Default()。
	// 传入 nil 将禁用日志输出。
	Logger *slog.Logger

	// Clock 时间源，点赞与信箱时间戳使用。默认为 time.Now。
	Clock func() time.Time
}

// Option 定义配置函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		LikeKeyPrefix:   "blog:liked:",
		FollowKeyPrefix: "follows:",
		FeedKeyPrefix:   "feed:",
		GeoKeyPrefix:    "shop:geo:",
		Logger:          slog.Default(),
		Clock:           time.Now,
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithClock 注入自定义时间源。传入 nil 时保持默认值。
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}
