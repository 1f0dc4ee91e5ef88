package seqid

import "errors"

// 预定义错误。
// 使用 errors.Is 进行错误匹配。
var (
	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("seqid: client is nil")

	// ErrEmptySequence 序列名称为空。
	ErrEmptySequence = errors.New("seqid: sequence name must not be empty")

	// ErrSequenceExhausted 当日序列号超过 32 位上限。
	// 单日单序列超过 2^32-1 次调用后序列号会侵入时间戳分量，
	// 无法再保证唯一性，这是不可恢复的错误（次日自动恢复）。
	ErrSequenceExhausted = errors.New("seqid: daily sequence exhausted")

	// ErrInvalidID ID 值无效（零或负数）。
	ErrInvalidID = errors.New("seqid: invalid id")
)
