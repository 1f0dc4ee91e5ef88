// Package seqid 提供基于 Redis 自增计数的分布式唯一 ID 生成器。
//
// # ID 结构
//
// 64 位 ID 由两部分拼接而成：
//
//	| 时间戳（秒，距固定纪元） << 32 | 当日序列号（32 位） |
//
// 序列号来自 Redis INCR，计数 key 按"序列名 + 日历日"划分，
// 每天从零附近重新开始，避免计数无限增长。
//
// # 唯一性与有序性
//
// 唯一性完全由 Redis 的原子自增保证，与本地时钟无关，任意多进程
// 并发调用都不会重复；时钟偏移只影响有序性（时间戳分量），
// 单日单序列的调用次数超过 2^32-1 时序列号溢出，返回错误。
package seqid
