package seckill

import "errors"

var (
	// ErrNilClient 表示传入的 Redis 客户端为 nil。
	ErrNilClient = errors.New("seckill: redis client is nil")

	// ErrNilIDWorker 表示传入的订单号生成器为 nil。
	ErrNilIDWorker = errors.New("seckill: id worker is nil")

	// ErrNilStore 表示传入的持久层为 nil。
	ErrNilStore = errors.New("seckill: store is nil")

	// ErrNilLockFactory 表示传入的锁工厂为 nil。
	ErrNilLockFactory = errors.New("seckill: lock factory is nil")

	// ErrInvalidVoucher 表示优惠券 id 非法。
	ErrInvalidVoucher = errors.New("seckill: invalid voucher id")

	// ErrInvalidUser 表示用户 id 非法。
	ErrInvalidUser = errors.New("seckill: invalid user id")

	// ErrSoldOut 表示库存不足，准入被拒绝。
	ErrSoldOut = errors.New("seckill: stock sold out")

	// ErrDuplicateOrder 表示该用户已下过单，准入被拒绝。
	ErrDuplicateOrder = errors.New("seckill: duplicate order")

	// ErrUserLockBusy 表示物化阶段的按用户锁被其他持有者占用。
	// 单消费者模型下通常意味着前一个进程物化途中崩溃、锁租约尚未
	// 到期。意图不是终态，留在 pending 列表等租约过期后重放。
	ErrUserLockBusy = errors.New("seckill: user lock held by another owner")
)
