package rcache

import (
	"log/slog"
	"time"
)

const (
	// DefaultSentinelTTL 空值哨兵的默认 TTL。
	// 哨兵只为挡住对不存在 id 的反复回源，短 TTL 限制了
	// 数据源后来出现该 id 时的不可见窗口。
	DefaultSentinelTTL = 2 * time.Minute

	// DefaultRebuildLockTTL 重建锁的默认租约。
	// 必须大于单次重建耗时，否则锁提前过期会导致并发重建。
	DefaultRebuildLockTTL = 10 * time.Second

	// DefaultRebuildTimeout 单次后台重建的超时时间。
	DefaultRebuildTimeout = 30 * time.Second
)

// Options 定义 Cache 的配置。
type Options struct {
	// SentinelTTL 空值哨兵的 TTL，默认为 DefaultSentinelTTL。
	SentinelTTL time.Duration

	// RebuildWorkers 后台重建 worker 数量，默认为 10。
	RebuildWorkers int

	// RebuildQueue 重建任务队列长度，默认为 100。
	// 队列满时放弃本次重建（旧值继续可读，下一次过期读会再触发）。
	RebuildQueue int

	// RebuildLockTTL 重建锁租约，默认为 DefaultRebuildLockTTL。
	RebuildLockTTL time.Duration

	// RebuildTimeout 单次重建（回源 + 写回）的超时，默认为 DefaultRebuildTimeout。
	RebuildTimeout time.Duration

	// EnableSingleflight 是否在 QueryPassThrough 未命中时做进程内去重。
	// 默认为 false：穿透策略允许并发回源，开启后同一 key 的并发
	// 未命中只回源一次。
	EnableSingleflight bool

	// Logger 用于记录警告和错误日志，默认使用 slog.Default()。
	// 传入 nil 将禁用日志输出。
	Logger *slog.Logger

	// Clock 时间源，逻辑过期判断使用。默认为 time.Now。
	Clock func() time.Time
}

// Option 定义配置 Cache 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		SentinelTTL:    DefaultSentinelTTL,
		RebuildWorkers: 10,
		RebuildQueue:   100,
		RebuildLockTTL: DefaultRebuildLockTTL,
		RebuildTimeout: DefaultRebuildTimeout,
		Logger:         slog.Default(),
		Clock:          time.Now,
	}
}

// WithSentinelTTL 设置空值哨兵 TTL。
func WithSentinelTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.SentinelTTL = ttl
		}
	}
}

// WithRebuildWorkers 设置重建 worker 数量。
func WithRebuildWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.RebuildWorkers = n
		}
	}
}

// WithRebuildQueue 设置重建任务队列长度。
func WithRebuildQueue(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.RebuildQueue = n
		}
	}
}

// WithRebuildLockTTL 设置重建锁租约。
func WithRebuildLockTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.RebuildLockTTL = ttl
		}
	}
}

// WithRebuildTimeout 设置单次重建超时。
func WithRebuildTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.RebuildTimeout = timeout
		}
	}
}

// WithSingleflight 设置是否启用 QueryPassThrough 的进程内去重。
func WithSingleflight(enable bool) Option {
	return func(o *Options) {
		o.EnableSingleflight = enable
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
