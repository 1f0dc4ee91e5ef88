package rcache

import "errors"

var (
	// ErrNilClient 传入的客户端为 nil。
	ErrNilClient = errors.New("rcache: nil client")

	// ErrNotFound 缓存与数据源中均不存在。
	// 这是业务上的"空结果"，不是故障；调用方据此返回空响应即可。
	ErrNotFound = errors.New("rcache: not found")

	// ErrNilLoader loader 函数为 nil。
	ErrNilLoader = errors.New("rcache: nil loader function")

	// ErrEmptyKey key 为空字符串。
	// 空 key 在 Redis 中合法但几乎总是使用错误，在入口处 fail-fast。
	ErrEmptyKey = errors.New("rcache: empty key")

	// ErrEntryCorrupt 包装编码的缓存值无法解析。
	ErrEntryCorrupt = errors.New("rcache: corrupt logical-expire entry")

	// ErrClosed 缓存实例已关闭。
	ErrClosed = errors.New("rcache: closed")
)
