package social

import "errors"

var (
	// ErrNilClient 表示传入的 Redis 客户端为 nil。
	ErrNilClient = errors.New("social: redis client is nil")

	// ErrNilStore 表示传入的持久层为 nil。
	ErrNilStore = errors.New("social: store is nil")

	// ErrInvalidUser 表示用户 id 非法。
	ErrInvalidUser = errors.New("social: invalid user id")

	// ErrInvalidBlog 表示动态 id 非法。
	ErrInvalidBlog = errors.New("social: invalid blog id")
)
