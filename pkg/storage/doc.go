// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - rcache: Redis 旁路缓存引擎，空值哨兵防穿透、singleflight 与逻辑过期防击穿
//
// 设计原则：
//   - 缓存层只做一致性与准入控制，数据源通过回调注入
//   - 缓存写入尽力而为，失败降级为直读数据源
package storage
