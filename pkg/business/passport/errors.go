package passport

import "errors"

var (
	// ErrNilClient 表示传入的 Redis 客户端为 nil。
	ErrNilClient = errors.New("passport: redis client is nil")

	// ErrNilStore 表示传入的用户存储为 nil。
	ErrNilStore = errors.New("passport: user store is nil")

	// ErrInvalidPhone 表示手机号格式非法。
	ErrInvalidPhone = errors.New("passport: invalid phone number")

	// ErrBadCode 表示验证码错误或已过期。
	ErrBadCode = errors.New("passport: verification code mismatch")

	// ErrNoSession 表示 token 无对应登录态或登录态已过期。
	ErrNoSession = errors.New("passport: session not found")

	// ErrInvalidUser 表示用户 id 非法。
	ErrInvalidUser = errors.New("passport: invalid user id")
)
