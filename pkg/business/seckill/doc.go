// Package seckill 提供秒杀下单的两段式准入管道。
//
// 第一阶段（Service.Submit）在 Redis 内以 Lua 脚本原子完成资格判定：
// 库存余额检查、一人一单去重、扣减预热库存并登记用户。判定通过后
// 铸造订单号，并把下单意图追加到 Redis Stream。整个快路径不触碰
// 数据库，单次判定只有一次 Redis 往返。
//
// 第二阶段（Worker）作为流消费组的单消费者，把意图物化为持久订单：
// 按用户加分布式锁、以持久订单计数做幂等复核、条件扣减持久库存、
// 落库后才 ACK。处理失败的意图留在 pending 列表，由补偿循环重放。
//
// 两阶段之间只通过 Stream 传递意图，准入结果一旦返回给用户即不可
// 撤销；持久层的最终状态要么是订单落库（PERSISTED），要么是幂等或
// 不变量复核失败后的丢弃（DROPPED）。
//
// 使用前必须通过 Service.Prewarm 预热库存键，脚本把缺失的库存键视
// 为售罄。
package seckill
