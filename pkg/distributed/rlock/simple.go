package rlock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ownerSeq 进程内持有者序号，与 uuid 前缀拼接保证每个 Simple 实例
// 的持有者标识全局唯一（跨进程靠 uuid，进程内靠序号）。
var ownerSeq atomic.Uint64

// unlockScript 原子释放脚本：仅当锁值仍是自己的持有者标识时删除。
// 读取与删除必须在同一脚本内完成；分成 GET + DEL 两步时，
// 租约可能恰好在两步之间到期并被他人重新获取，导致误删他人的锁。
// 返回 1 表示成功释放，0 表示锁已不属于当前持有者。
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// =============================================================================
// Simple - SET NX 简单锁
// =============================================================================

// Simple 基于 SET NX 的非阻塞分布式锁。
//
// 一个 Simple 实例代表一个逻辑持有者：持有者标识在构造时生成，
// 同一实例可以反复 TryLock/Unlock（串行使用），但不应在多个
// goroutine 间共享同一实例去竞争同一把锁。
//
// 没有阻塞与排队语义：TryLock 失败的调用方要么立即放弃，
// 要么自行实现有界重试。
type Simple struct {
	client redis.UniversalClient
	key    string
	token  string
}

// NewSimple 创建简单锁。
// name 为资源名称，实际 Redis key 为 "lock:{name}"（可通过 WithKeyPrefix 调整）。
func NewSimple(client redis.UniversalClient, name string, opts ...Option) (*Simple, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Simple{
		client: client,
		key:    options.KeyPrefix + name,
		token:  newOwnerToken(),
	}, nil
}

// TryLock 尝试获取锁，立即返回。
//
// 返回 (true, nil) 表示获取成功；(false, nil) 表示锁被其他持有者占用；
// (false, err) 表示 Redis 异常。lease 为租约时长，到期自动释放。
func (l *Simple) TryLock(ctx context.Context, lease time.Duration) (bool, error) {
	if lease <= 0 {
		return false, ErrInvalidLease
	}
	ok, err := l.client.SetNX(ctx, l.key, l.token, lease).Result()
	if err != nil {
		return false, fmt.Errorf("rlock: try lock %q: %w", l.key, err)
	}
	return ok, nil
}

// Unlock 释放锁。
//
// 通过 Lua 脚本原子校验持有者标识，只释放自己持有的锁。
// 返回 ErrNotOwner 表示锁已过期或被其他持有者抢走（释放是 no-op）。
func (l *Simple) Unlock(ctx context.Context) error {
	result, err := unlockScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("rlock: unlock %q: %w", l.key, err)
	}
	if result == 0 {
		return ErrNotOwner
	}
	return nil
}

// Key 返回完整的锁 key，用于日志记录。
func (l *Simple) Key() string {
	return l.key
}

// newOwnerToken 生成持有者标识。
// uuid 区分进程，序号区分进程内的不同逻辑持有者。
func newOwnerToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "-" + fmt.Sprint(ownerSeq.Add(1))
}
