// Package rungroup 管理一组常驻服务的并发运行与协调关闭。
//
// Group 基于 errgroup 与 context.WithCancelCause：任一服务出错或
// Cancel 被调用时，所有服务收到取消信号；Wait 返回首个实际错误，
// 协调关闭产生的 context.Canceled 会被过滤，显式的取消原因
// （如 SignalError）会被保留。
//
// Signals 返回一个监听系统信号的服务函数，收到信号后以
// *SignalError 取消整个 Group，实现优雅退出。
package rungroup
