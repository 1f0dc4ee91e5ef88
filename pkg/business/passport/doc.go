// Package passport 提供基于 Redis 的短信验证码登录与签到能力。
//
// 登录态以不透明 token 为键存储在 Redis hash 中（login:token:{token}），
// 每次 Session 校验都会刷新 TTL，实现滑动过期。验证码存储在
// login:code:{phone}，短 TTL，一次性使用。
//
// 签到以按月 bitmap 记录（sign:{userId}:{yyyyMM}，位偏移 = 日期-1），
// SignStreak 统计截至指定日期的连续签到天数。
//
// 所有操作显式接收用户标识参数，包内不保存任何请求级状态。
package passport
