package rlock

import "errors"

// 预定义错误。
// 使用 errors.Is 进行错误匹配，例如：
//
//	if errors.Is(err, rlock.ErrNotOwner) {
//	    // 锁已过期或被其他持有者抢走
//	}
var (
	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("rlock: client is nil")

	// ErrEmptyName 锁名称为空。
	ErrEmptyName = errors.New("rlock: name must not be empty")

	// ErrInvalidLease 租约时长无效。
	// 租约必须为正数，零租约意味着锁永不过期，持有者崩溃后无法恢复。
	ErrInvalidLease = errors.New("rlock: lease must be positive")

	// ErrNotOwner 释放时锁已不属于当前持有者。
	// 典型场景：租约到期后锁被其他持有者重新获取，
	// 原持有者的 Unlock 不会删除新持有者的锁。
	ErrNotOwner = errors.New("rlock: lock expired or held by another owner")

	// ErrLockHeld 锁被其他持有者占用。
	// Factory.TryLock 检测到此错误后返回 (nil, nil)，
	// 业务代码通常不会直接看到，保留导出以便 mock 测试。
	ErrLockHeld = errors.New("rlock: lock is held by another owner")

	// ErrNotLocked 锁未被持有。
	// 对已释放或已过期的 LockHandle 再次 Unlock 时返回。
	ErrNotLocked = errors.New("rlock: not locked")

	// ErrFactoryClosed 工厂已关闭。
	ErrFactoryClosed = errors.New("rlock: factory is closed")
)
