package seckill

import (
	"log/slog"
	"time"
)

const (
	// DefaultStream 下单意图流的默认名称。
	DefaultStream = "stream.orders"

	// DefaultGroup 消费组默认名称。
	DefaultGroup = "g1"

	// DefaultConsumer 消费者默认名称。
	DefaultConsumer = "c1"

	// DefaultReadBlock 流读取的默认阻塞时长。
	DefaultReadBlock = 2 * time.Second

	// DefaultUserLockExpiry 物化阶段按用户锁的默认租约。
	DefaultUserLockExpiry = 10 * time.Second

	// DefaultPendingAttempts pending 重放中单条意图的默认尝试次数。
	DefaultPendingAttempts = 3

	// DefaultPendingDelay pending 重放失败后的默认固定退避。
	DefaultPendingDelay = 20 * time.Millisecond

	// DefaultReadRetryDelay 流读取失败后的默认退避。
	DefaultReadRetryDelay = time.Second
)

// Options 定义 Service 与 Worker 共享的配置。
type Options struct {
	// Stream 下单意图流名称，默认为 DefaultStream。
	Stream string

	// Group 消费组名称，默认为 DefaultGroup。
	Group string

	// Consumer 消费者名称，默认为 DefaultConsumer。
	Consumer string

	// ReadBlock 流读取阻塞时长，默认为 DefaultReadBlock。
	ReadBlock time.Duration

	// StockKeyPrefix 预热库存键前缀，默认为 "seckill:stock:"。
	StockKeyPrefix string

	// OrderSetKeyPrefix 下单用户集合键前缀，默认为 "seckill:order:"。
	OrderSetKeyPrefix string

	// UserLockKeyPrefix 物化阶段按用户锁的键前缀，默认为 "lock:order:"。
	UserLockKeyPrefix string

	// UserLockExpiry 按用户锁租约，默认为 DefaultUserLockExpiry。
	UserLockExpiry time.Duration

	// OrderSequence 订单号序列名，默认为 "order"。
	OrderSequence string

	// PendingAttempts pending 重放中单条意图的尝试次数，默认为 DefaultPendingAttempts。
	PendingAttempts int

	// PendingDelay pending 重放的固定退避，默认为 DefaultPendingDelay。
	PendingDelay time.Duration

	// ReadRetryDelay 流读取失败后的退避，默认为 DefaultReadRetryDelay。
	// 避免 Redis 故障期间消费循环空转。
	ReadRetryDelay time.Duration

	// Logger 用于记录警告和错误日志，默认使用 slog.Default()。
	// 传入 nil 将禁用日志输出。
	Logger *slog.Logger
}

// Option 定义配置函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Stream:            DefaultStream,
		Group:             DefaultGroup,
		Consumer:          DefaultConsumer,
		ReadBlock:         DefaultReadBlock,
		StockKeyPrefix:    "seckill:stock:",
		OrderSetKeyPrefix: "seckill:order:",
		UserLockKeyPrefix: "lock:order:",
		UserLockExpiry:    DefaultUserLockExpiry,
		OrderSequence:     "order",
		PendingAttempts:   DefaultPendingAttempts,
		PendingDelay:      DefaultPendingDelay,
		ReadRetryDelay:    DefaultReadRetryDelay,
		Logger:            slog.Default(),
	}
}

// WithStream 设置意图流名称。
func WithStream(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Stream = name
		}
	}
}

// WithGroup 设置消费组名称。
func WithGroup(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Group = name
		}
	}
}

// WithConsumer 设置消费者名称。
func WithConsumer(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Consumer = name
		}
	}
}

// WithReadBlock 设置流读取阻塞时长。
func WithReadBlock(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadBlock = d
		}
	}
}

// WithStockKeyPrefix 设置预热库存键前缀。
func WithStockKeyPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.StockKeyPrefix = prefix
		}
	}
}

// WithOrderSetKeyPrefix 设置下单用户集合键前缀。
func WithOrderSetKeyPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.OrderSetKeyPrefix = prefix
		}
	}
}

// WithUserLockKeyPrefix 设置按用户锁键前缀。
func WithUserLockKeyPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.UserLockKeyPrefix = prefix
		}
	}
}

// WithUserLockExpiry 设置按用户锁租约。
func WithUserLockExpiry(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.UserLockExpiry = d
		}
	}
}

// WithOrderSequence 设置订单号序列名。
func WithOrderSequence(seq string) Option {
	return func(o *Options) {
		if seq != "" {
			o.OrderSequence = seq
		}
	}
}

// WithPendingAttempts 设置 pending 重放中单条意图的尝试次数。
func WithPendingAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.PendingAttempts = n
		}
	}
}

// WithPendingDelay 设置 pending 重放的固定退避。
func WithPendingDelay(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.PendingDelay = d
		}
	}
}

// WithReadRetryDelay 设置流读取失败后的退避。
func WithReadRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadRetryDelay = d
		}
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
