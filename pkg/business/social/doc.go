// Package social 提供点赞、关注、推模式信箱与附近商铺检索。
//
// 点赞以 zset 记录（blog:liked:{blogId}，score 为点赞时间戳），
// 数据库侧的点赞计数通过 Store 回调在写 Redis 之前调整，保证
// 计数与集合只在持久层成功后变更。
//
// 关注关系镜像在 set（follows:{userId}）中，共同关注用 SINTER 求交。
//
// 信箱为推模式：发布动态时把 id 写入每个粉丝的 zset 收件箱
// （feed:{userId}，score 为毫秒时间戳），滚动分页用
// ZREVRANGEBYSCORE 按上一页最小 score 续读，同分条目靠 offset 去重。
//
// 附近商铺按类型分键存 geo 索引（shop:geo:{typeId}），按距离排序
// 分页返回。
package social
