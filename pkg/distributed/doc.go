// Package distributed 提供分布式协调相关的子包。
//
// 子包列表：
//   - rlock: 基于 Redis 的分布式锁，提供 redsync 多实例互斥与单实例轻量锁两种形态
//
// 设计原则：
//   - 非阻塞获取，拿不到锁立即返回而非排队等待
//   - 释放时校验持有者令牌，避免误删他人的锁
package distributed
