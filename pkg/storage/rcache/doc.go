// Package rcache 提供 Cache-Aside 模式的 Redis 读缓存引擎。
//
// # 两种查询策略
//
//   - QueryPassThrough：缓存穿透防护。未命中时回源，数据源不存在的
//     id 写入空值哨兵（短 TTL），后续查询直接返回未找到，不再打到
//     数据源。不加锁，并发未命中可能同时回源，适用于回源成本可接受
//     的普通 key；可选 singleflight 进程内去重。
//   - QueryLogicalExpire：缓存击穿防护。缓存值携带逻辑过期时间，
//     Redis 自身不设 TTL；逻辑过期后由获得重建锁的读请求提交后台
//     重建任务，所有读请求（包括触发重建的那个）立即返回旧值，
//     读路径永不阻塞。要求缓存预热（SetLogical），冷 key 直接返回
//     未找到，不会自行回源。
//
// # 编码格式
//
// 裸编码：payload 原样存储，空字符串为"不存在"哨兵；
// 包装编码：{"data": <payload>, "expireTime": <RFC3339 时间戳>}。
//
// # 重建并发模型
//
// 不同 key 的重建相互独立，运行在一个小的有界 worker 池上；
// 同一 key 的重建由分布式锁（rlock.Simple）跨实例互斥，
// 锁未获取到说明重建已在进行，直接返回旧值。
package rcache
