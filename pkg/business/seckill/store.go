package seckill

import "context"

// Order 是一笔物化完成（或待物化）的订单。
type Order struct {
	ID        int64
	UserID    int64
	VoucherID int64
}

// Store 是订单物化依赖的持久层契约。
//
// 三个方法都必须对重复调用安全：物化阶段可能因为 ACK 前的进程崩溃
// 而对同一意图重放，幂等由 CountOrders 复核兜底。
type Store interface {
	// CountOrders 返回该用户对该优惠券已持久化的订单数。
	CountOrders(ctx context.Context, userID, voucherID int64) (int64, error)

	// DecrementStock 条件扣减持久库存（stock > 0 时才扣减）。
	// 返回 false 表示库存已为零，未发生扣减。
	DecrementStock(ctx context.Context, voucherID int64) (bool, error)

	// InsertOrder 持久化订单。
	InsertOrder(ctx context.Context, order Order) error
}
