package rlock

import "time"

// =============================================================================
// Simple 锁选项
// =============================================================================

// Options 定义 Simple 锁的配置。
type Options struct {
	// KeyPrefix 锁 key 前缀，用于与业务 key 区分命名空间。
	// 默认为 "lock:"。
	KeyPrefix string
}

// Option 定义配置 Simple 锁的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		KeyPrefix: "lock:",
	}
}

// WithKeyPrefix 设置锁 key 前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

// =============================================================================
// Factory 锁选项
// =============================================================================

// DefaultExpiry 默认锁租约时长，与 redsync 默认值一致。
const DefaultExpiry = 8 * time.Second

// MutexOptions 定义 Factory 创建锁时的配置。
type MutexOptions struct {
	// KeyPrefix 锁 key 前缀，默认为 "lock:"。
	KeyPrefix string

	// Expiry 锁租约时长，默认为 DefaultExpiry。
	Expiry time.Duration

	// Tries 获取锁的尝试次数。
	// 默认为 1（非阻塞，失败立即返回），与订单串行化场景的
	// 快速失败语义一致。
	Tries int

	// RetryDelay 每次重试之间的等待时间（Tries > 1 时生效）。
	RetryDelay time.Duration
}

// MutexOption 定义配置 Factory 锁的函数类型。
type MutexOption func(*MutexOptions)

func defaultMutexOptions() *MutexOptions {
	return &MutexOptions{
		KeyPrefix:  "lock:",
		Expiry:     DefaultExpiry,
		Tries:      1,
		RetryDelay: 50 * time.Millisecond,
	}
}

// WithMutexKeyPrefix 设置 Factory 锁 key 前缀。
func WithMutexKeyPrefix(prefix string) MutexOption {
	return func(o *MutexOptions) {
		o.KeyPrefix = prefix
	}
}

// WithExpiry 设置锁租约时长。
func WithExpiry(expiry time.Duration) MutexOption {
	return func(o *MutexOptions) {
		if expiry > 0 {
			o.Expiry = expiry
		}
	}
}

// WithTries 设置获取锁的尝试次数。
func WithTries(tries int) MutexOption {
	return func(o *MutexOptions) {
		if tries > 0 {
			o.Tries = tries
		}
	}
}

// WithRetryDelay 设置重试间隔。
func WithRetryDelay(delay time.Duration) MutexOption {
	return func(o *MutexOptions) {
		if delay > 0 {
			o.RetryDelay = delay
		}
	}
}
