package rlock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-redsync/redsync/v4"
	rsredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Factory - redsync 锁工厂
// =============================================================================

// LockHandle 表示一次成功的锁获取。
//
// 每次 TryLock 成功都会返回一个新的 handle，内部封装了唯一标识，
// 只有持有该标识的 handle 才能释放锁。持有 handle 即持有锁。
type LockHandle interface {
	// Unlock 释放锁。
	// 返回 ErrNotLocked 表示锁已过期或被其他获取覆盖。
	Unlock(ctx context.Context) error

	// Key 返回完整的锁 key，用于日志记录。
	Key() string
}

// Factory 基于 redsync 的锁工厂。
// 单节点为标准 Redis 锁；多节点使用 Redlock 算法（需过半成功）。
type Factory struct {
	clients []redis.UniversalClient
	rs      *redsync.Redsync
	closed  atomic.Bool
}

// NewFactory 创建锁工厂。
// 传入的客户端生命周期由调用者管理，Close 不会关闭客户端。
func NewFactory(clients ...redis.UniversalClient) (*Factory, error) {
	if len(clients) == 0 {
		return nil, ErrNilClient
	}
	for i, client := range clients {
		if client == nil {
			return nil, errors.Join(ErrNilClient, errors.New("client at index "+strconv.Itoa(i)+" is nil"))
		}
	}

	pools := make([]rsredis.Pool, len(clients))
	for i, client := range clients {
		pools[i] = goredis.NewPool(client)
	}

	return &Factory{
		clients: clients,
		rs:      redsync.New(pools...),
	}, nil
}

// TryLock 非阻塞式获取锁。
//
// 成功时返回 LockHandle；锁被占用时返回 (nil, nil)，这是正常情况，
// 不是错误。err 非 nil 表示锁服务异常（如 Redis 不可用）。
func (f *Factory) TryLock(ctx context.Context, key string, opts ...MutexOption) (LockHandle, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if key == "" {
		return nil, ErrEmptyName
	}

	mutex, fullKey := f.createMutex(key, opts...)

	if err := mutex.TryLockContext(ctx); err != nil {
		err = wrapRedsyncError(err)
		if errors.Is(err, ErrLockHeld) {
			return nil, nil // 锁被占用
		}
		return nil, err
	}

	return &factoryHandle{mutex: mutex, key: fullKey}, nil
}

// createMutex 创建 redsync.Mutex，返回 mutex 和完整 key（含前缀）。
func (f *Factory) createMutex(key string, opts ...MutexOption) (*redsync.Mutex, string) {
	options := defaultMutexOptions()
	for _, opt := range opts {
		opt(options)
	}

	fullKey := options.KeyPrefix + key
	mutex := f.rs.NewMutex(fullKey,
		redsync.WithExpiry(options.Expiry),
		redsync.WithTries(options.Tries),
		redsync.WithRetryDelay(options.RetryDelay),
	)
	return mutex, fullKey
}

// Health 健康检查，对所有节点执行 PING。
func (f *Factory) Health(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	for _, client := range f.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("rlock: health check: %w", err)
		}
	}
	return nil
}

// Close 关闭工厂。
// 不会关闭传入的 Redis 客户端，客户端的生命周期由调用者管理。
func (f *Factory) Close() error {
	f.closed.Store(true)
	return nil
}

// =============================================================================
// factoryHandle
// =============================================================================

// factoryHandle 实现 LockHandle 接口。
type factoryHandle struct {
	mutex *redsync.Mutex
	key   string
}

func (h *factoryHandle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		wrapped := wrapRedsyncError(err)
		// 锁过期也视为"未持有锁"
		if errors.Is(wrapped, ErrNotOwner) {
			return ErrNotLocked
		}
		return wrapped
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *factoryHandle) Key() string {
	return h.key
}

// wrapRedsyncError 将 redsync 错误转换为 rlock 错误，保留原始错误链。
func wrapRedsyncError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// ErrTaken 是结构体类型，需要 errors.As 检查
	var errTaken *redsync.ErrTaken
	if errors.As(err, &errTaken) {
		return fmt.Errorf("%w: %w", ErrLockHeld, err)
	}
	if errors.Is(err, redsync.ErrFailed) {
		return fmt.Errorf("%w: %w", ErrLockHeld, err)
	}
	if errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return fmt.Errorf("%w: %w", ErrNotOwner, err)
	}
	return err
}
