// Package rlock 提供基于 Redis 的分布式互斥锁。
//
// # 两种实现
//
//   - Simple：SET NX + Lua 原子释放的简单锁，非阻塞，适用于缓存重建
//     等短临界区场景。持有者标识在构造时生成，释放时通过 Lua 脚本
//     原子校验，避免误删他人持有的锁。
//   - Factory：基于 redsync 的锁工厂，按 key 创建一次性 LockHandle，
//     适用于订单落库等按用户串行化的场景。
//
// # 失败语义
//
// 两种实现都没有续期机制：持有者崩溃后，租约到期是唯一的恢复手段。
// 调用方必须保证临界区耗时远小于租约时长。
//
// # 使用模式
//
//	lock, _ := rlock.NewSimple(client, "shop:1")
//	ok, err := lock.TryLock(ctx, 10*time.Second)
//	if err != nil || !ok {
//	    return // 锁被占用或 Redis 异常，快速失败
//	}
//	defer lock.Unlock(ctx)
package rlock
