package rcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/chake111/hmdp/pkg/distributed/rlock"
)

// LoadFunc 定义从数据源加载数据的函数类型。
// 返回的字节串必须是合法 JSON（通常是实体的 json.Marshal 结果）；
// 返回 (nil, nil) 表示数据源中不存在该 id。
type LoadFunc func(ctx context.Context, id string) ([]byte, error)

// detachedCtx 脱离原始 context 取消链，保留 Value。
// 后台重建与解锁不应随触发请求的取消而中断。
type detachedCtx struct {
	context.Context
}

func (c detachedCtx) Deadline() (time.Time, bool) { return time.Time{}, false }
func (c detachedCtx) Done() <-chan struct{}       { return nil }
func (c detachedCtx) Err() error                  { return nil }

// =============================================================================
// Cache
// =============================================================================

// Cache 是 Cache-Aside 读缓存引擎。
//
// Cache 不拥有传入的 Redis 客户端；Close 只停止内部重建池，
// 客户端的生命周期由调用方管理。
type Cache struct {
	client   redis.UniversalClient
	opts     *Options
	group    singleflight.Group
	rebuilds *rebuildPool
	closed   atomic.Bool
}

// New 创建缓存引擎。
// client 必须是已初始化的 redis.UniversalClient。
func New(client redis.UniversalClient, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	c := &Cache{
		client: client,
		opts:   options,
	}
	c.rebuilds = newRebuildPool(options.RebuildWorkers, options.RebuildQueue, options.Logger)
	c.rebuilds.start()
	return c, nil
}

// Client 返回底层 Redis 客户端。
func (c *Cache) Client() redis.UniversalClient {
	return c.client
}

// Close 停止后台重建池。会等待进行中的重建完成。
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.rebuilds.stop()
	return nil
}

// =============================================================================
// 写入
// =============================================================================

// Set 以裸编码写入缓存，TTL 由 Redis 强制执行。
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("rcache: marshal value for %q: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("rcache: set %q: %w", key, err)
	}
	return nil
}

// SetLogical 以包装编码写入缓存，逻辑过期时间为当前时间加 window。
// 不设置 Redis TTL——逻辑时间戳是唯一的过期依据。
// 这是逻辑过期策略的预热入口：QueryLogicalExpire 不会自行填充冷 key。
func (c *Cache) SetLogical(ctx context.Context, key string, value any, window time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("rcache: marshal value for %q: %w", key, err)
	}
	raw, err := encodeLogical(payload, c.opts.Clock().Add(window))
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("rcache: set %q: %w", key, err)
	}
	return nil
}

// Delete 删除缓存 key。写数据库后删缓存的失效路径使用。
func (c *Cache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("rcache: delete %q: %w", key, err)
	}
	return nil
}

// =============================================================================
// 穿透防护查询
// =============================================================================

// QueryPassThrough 以穿透防护策略查询。
//
// 命中返回缓存 payload；命中空值哨兵直接返回 ErrNotFound，不回源；
// 未命中时调用 load 回源：数据源不存在则写入哨兵（短 TTL）并返回
// ErrNotFound，否则写入缓存并返回。
//
// 不加分布式锁，并发未命中可能同时回源；热点 key 请使用
// QueryLogicalExpire。
func (c *Cache) QueryPassThrough(ctx context.Context, keyPrefix, id string, load LoadFunc, ttl time.Duration) ([]byte, error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	if keyPrefix == "" && id == "" {
		return nil, ErrEmptyKey
	}

	key := keyPrefix + id
	value, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if len(value) == 0 {
			// 空值哨兵：数据源中确认不存在，不再回源
			return nil, ErrNotFound
		}
		return value, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("rcache: get %q: %w", key, err)
	}

	if c.opts.EnableSingleflight {
		return c.loadWithSingleflight(ctx, key, id, load, ttl)
	}
	return c.loadAndCache(ctx, key, id, load, ttl)
}

// loadWithSingleflight 进程内去重回源。
// 使用 DoChan 让每个调用者可以独立响应自身 ctx 的取消，
// 而后台加载继续供其他等待者使用。
func (c *Cache) loadWithSingleflight(ctx context.Context, key, id string, load LoadFunc, ttl time.Duration) ([]byte, error) {
	loadCtx, cancel := context.WithTimeout(detachedCtx{ctx}, c.opts.RebuildTimeout)
	defer cancel()

	ch := c.group.DoChan(key, func() (any, error) {
		return c.loadAndCache(loadCtx, key, id, load, ttl)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		value, ok := result.Val.([]byte)
		if !ok {
			return nil, errors.New("rcache: unexpected result type from singleflight")
		}
		return value, nil
	}
}

// loadAndCache 回源加载并写入缓存。
// 缓存写入是 best-effort：写失败记录日志，不影响业务返回。
func (c *Cache) loadAndCache(ctx context.Context, key, id string, load LoadFunc, ttl time.Duration) ([]byte, error) {
	payload, err := load(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload == nil {
		// 数据源不存在：写入空值哨兵，挡住后续对同一 id 的回源
		if setErr := c.client.Set(ctx, key, "", c.opts.SentinelTTL).Err(); setErr != nil {
			c.logWarn("rcache: sentinel set failed", "key", key, "error", setErr)
		}
		return nil, ErrNotFound
	}

	if setErr := c.client.Set(ctx, key, payload, ttl).Err(); setErr != nil {
		c.logWarn("rcache: cache set failed", "key", key, "error", setErr)
	}
	return payload, nil
}

// =============================================================================
// 逻辑过期查询
// =============================================================================

// QueryLogicalExpire 以逻辑过期策略查询。
//
// 冷 key（缓存中不存在）返回 ErrNotFound——该策略假设缓存已预热，
// 不会自行回源填充。命中后以 entry 内的逻辑时间戳判断是否过期：
// 未过期直接返回；已过期则尝试获取重建锁，成功者提交后台重建任务，
// 失败说明重建已在进行。无论重建与否，总是同步返回（可能过期的）
// payload，读路径永不阻塞，过期窗口由重建耗时决定。
func (c *Cache) QueryLogicalExpire(ctx context.Context, keyPrefix, id string, load LoadFunc, window time.Duration) ([]byte, error) {
	if load == nil {
		return nil, ErrNilLoader
	}

	key := keyPrefix + id
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rcache: get %q: %w", key, err)
	}

	payload, expireAt, err := decodeLogical(raw)
	if err != nil {
		return nil, err
	}
	if expireAt.After(c.opts.Clock()) {
		return payload, nil
	}

	// 逻辑过期：尝试触发后台重建，自己不等待
	c.tryScheduleRebuild(ctx, key, id, load, window)
	return payload, nil
}

// tryScheduleRebuild 获取重建锁并提交重建任务。
// 锁未获取到（重建已在进行）或队列满时静默放弃，旧值继续可读。
func (c *Cache) tryScheduleRebuild(ctx context.Context, key, id string, load LoadFunc, window time.Duration) {
	if c.closed.Load() {
		return
	}

	lock, err := rlock.NewSimple(c.client, key)
	if err != nil {
		c.logWarn("rcache: create rebuild lock failed", "key", key, "error", err)
		return
	}
	ok, err := lock.TryLock(ctx, c.opts.RebuildLockTTL)
	if err != nil {
		c.logWarn("rcache: acquire rebuild lock failed", "key", key, "error", err)
		return
	}
	if !ok {
		return // 其他实例正在重建
	}

	submitted := c.rebuilds.submit(rebuildTask{
		cache:  c,
		key:    key,
		id:     id,
		load:   load,
		window: window,
		lock:   lock,
	})
	if !submitted {
		// 队列满：释放锁，让下一次过期读重新触发
		c.unlockRebuild(lock)
	}
}

// runRebuild 执行一次后台重建：回源、重新包装、写回，最后释放锁。
// 整个过程使用独立超时 ctx，不受触发请求的取消影响。
func (c *Cache) runRebuild(task rebuildTask) {
	defer c.unlockRebuild(task.lock)

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RebuildTimeout)
	defer cancel()

	// 获取锁后再检查一次：上一个重建者可能刚刷新过
	if raw, err := c.client.Get(ctx, task.key).Bytes(); err == nil {
		if _, expireAt, decErr := decodeLogical(raw); decErr == nil && expireAt.After(c.opts.Clock()) {
			return
		}
	}

	payload, err := task.load(ctx, task.id)
	if err != nil {
		c.logWarn("rcache: rebuild load failed", "key", task.key, "error", err)
		return
	}
	if payload == nil {
		// 数据源已删除该实体：移除缓存，后续读返回未找到
		if delErr := c.client.Del(ctx, task.key).Err(); delErr != nil {
			c.logWarn("rcache: rebuild delete failed", "key", task.key, "error", delErr)
		}
		return
	}

	raw, err := encodeLogical(payload, c.opts.Clock().Add(task.window))
	if err != nil {
		c.logWarn("rcache: rebuild encode failed", "key", task.key, "error", err)
		return
	}
	if err := c.client.Set(ctx, task.key, raw, 0).Err(); err != nil {
		c.logWarn("rcache: rebuild set failed", "key", task.key, "error", err)
	}
}

// unlockRebuild 释放重建锁。锁自然过期（ErrNotOwner）是预期情况。
func (c *Cache) unlockRebuild(lock *rlock.Simple) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lock.Unlock(ctx); err != nil && !errors.Is(err, rlock.ErrNotOwner) {
		c.logWarn("rcache: rebuild unlock failed", "key", lock.Key(), "error", err)
	}
}

func (c *Cache) logWarn(msg string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(msg, args...)
	}
}
