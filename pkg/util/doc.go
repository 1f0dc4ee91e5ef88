// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - seqid: 基于 Redis 计数器的全局递增 ID 生成器，时间戳与序列号拼接
//
// 设计原则：
//   - 同名序列在多实例间共享计数器，ID 全局唯一
//   - 按天切分计数器 key，便于统计与回收
package util
