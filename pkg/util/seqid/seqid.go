package seqid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 常量
// =============================================================================

const (
	// epochSecond 时间戳纪元：2025-08-06T12:00:00Z。
	epochSecond = 1754481600

	// sequenceBits 序列号位数。
	sequenceBits = 32

	// maxSequence 32 位序列号上限。
	maxSequence = (1 << sequenceBits) - 1

	// dateLayout 计数 key 中的日期格式，按日划分计数器。
	dateLayout = "2006:01:02"
)

// =============================================================================
// Worker
// =============================================================================

// Worker 分布式 ID 生成器。
// 所有方法并发安全：状态只有 Redis 侧的计数器，本地无可变状态。
type Worker struct {
	client redis.UniversalClient
	opts   *Options
}

// NewWorker 创建 ID 生成器。
func NewWorker(client redis.UniversalClient, opts ...Option) (*Worker, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{client: client, opts: options}, nil
}

// NextID 为指定序列生成下一个唯一 ID。
//
// seq 为逻辑序列名（如 "order"），不同序列的计数互不影响。
func (w *Worker) NextID(ctx context.Context, seq string) (int64, error) {
	if strings.TrimSpace(seq) == "" {
		return 0, ErrEmptySequence
	}

	now := w.opts.Clock()
	timestamp := now.Unix() - epochSecond

	// 按日划分计数 key，每天的计数从零附近重新开始
	key := w.opts.KeyPrefix + seq + ":" + now.UTC().Format(dateLayout)
	count, err := w.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("seqid: incr %q: %w", key, err)
	}
	if count > maxSequence {
		return 0, fmt.Errorf("%w: sequence %q count %d", ErrSequenceExhausted, seq, count)
	}

	return timestamp<<sequenceBits | count, nil
}

// =============================================================================
// Decompose
// =============================================================================

// Components 表示 ID 分解后的各组成部分。
type Components struct {
	// ID 原始 ID 值。
	ID int64
	// Time 时间戳分量还原出的时刻（秒精度）。
	Time time.Time
	// Sequence 当日序列号分量。
	Sequence int64
}

// Decompose 分解 ID 为时间戳和序列号。
// 纯函数，不需要生成器即可使用。返回 ErrInvalidID 如果 id 不是正数。
func Decompose(id int64) (Components, error) {
	if id <= 0 {
		return Components{}, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return Components{
		ID:       id,
		Time:     time.Unix(id>>sequenceBits+epochSecond, 0).UTC(),
		Sequence: id & maxSequence,
	}, nil
}
