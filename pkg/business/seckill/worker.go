package seckill

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"

	"github.com/chake111/hmdp/pkg/distributed/rlock"
)

// Worker 是下单意图的物化消费者。
//
// 单消费者模型：一个 Worker 实例对应消费组内的一个消费者名，
// 不要用同一个消费者名并发运行多个实例。
type Worker struct {
	client redis.UniversalClient
	store  Store
	locks  *rlock.Factory
	opts   *Options
}

// NewWorker 创建物化消费者。
func NewWorker(client redis.UniversalClient, store Store, locks *rlock.Factory, opts ...Option) (*Worker, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if store == nil {
		return nil, ErrNilStore
	}
	if locks == nil {
		return nil, ErrNilLockFactory
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Worker{
		client: client,
		store:  store,
		locks:  locks,
		opts:   options,
	}, nil
}

// Run 运行消费循环，阻塞直到 ctx 取消。
// 启动时先确保消费组存在，并重放一次 pending 列表（进程上次崩溃
// 可能留下已读未 ACK 的意图）。
func (w *Worker) Run(ctx context.Context) error {
	if err := w.ensureGroup(ctx); err != nil {
		return err
	}
	w.reconcilePending(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, ok, err := w.readNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logError("seckill: read intent stream failed", "stream", w.opts.Stream, "error", err)
			if !w.sleep(ctx, w.opts.ReadRetryDelay) {
				return nil
			}
			w.reconcilePending(ctx)
			continue
		}
		if !ok {
			continue // 阻塞窗口内无新意图
		}

		if err := w.consume(ctx, msg); err != nil {
			w.logError("seckill: materialize intent failed",
				"messageId", msg.ID, "error", err)
			w.reconcilePending(ctx)
		}
	}
}

// ensureGroup 创建消费组，组已存在不视为错误。
func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.opts.Stream, w.opts.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("seckill: create consumer group: %w", err)
	}
	return nil
}

// readNext 读取一条新意图。ok 为 false 表示阻塞窗口内没有消息。
func (w *Worker) readNext(ctx context.Context) (redis.XMessage, bool, error) {
	streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.opts.Group,
		Consumer: w.opts.Consumer,
		Streams:  []string{w.opts.Stream, ">"},
		Count:    1,
		Block:    w.opts.ReadBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return redis.XMessage{}, false, nil
		}
		return redis.XMessage{}, false, err
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return redis.XMessage{}, false, nil
	}
	return streams[0].Messages[0], true, nil
}

// consume 物化一条意图并在成功后 ACK。
// 解析失败的消息直接 ACK 丢弃，避免毒消息在 pending 列表里死循环。
func (w *Worker) consume(ctx context.Context, msg redis.XMessage) error {
	order, err := parseIntent(msg)
	if err != nil {
		w.logError("seckill: drop malformed intent", "messageId", msg.ID, "error", err)
		return w.ack(ctx, msg.ID)
	}

	if err := w.materialize(ctx, order); err != nil {
		return err
	}
	return w.ack(ctx, msg.ID)
}

// materialize 把一条意图落为持久订单。
//
// 返回 nil 表示该意图已终态（PERSISTED 或 DROPPED），可以 ACK；
// 返回错误表示暂时失败，意图留在 pending 列表等待重放。
func (w *Worker) materialize(ctx context.Context, order Order) error {
	handle, err := w.locks.TryLock(ctx, strconv.FormatInt(order.UserID, 10),
		rlock.WithMutexKeyPrefix(w.opts.UserLockKeyPrefix),
		rlock.WithExpiry(w.opts.UserLockExpiry),
	)
	if err != nil {
		return fmt.Errorf("seckill: acquire user lock: %w", err)
	}
	if handle == nil {
		// 锁被占用说明前一个持有者还没走完物化（典型场景：进程
		// 崩溃后租约尚未到期）。意图已准入、库存已扣减，不能丢；
		// 留在 pending 列表，租约过期后重放。已落过库的重复意图
		// 由重放时的幂等复核丢弃
		return fmt.Errorf("%w: user %d order %d", ErrUserLockBusy, order.UserID, order.ID)
	}
	defer func() {
		if unlockErr := handle.Unlock(context.WithoutCancel(ctx)); unlockErr != nil &&
			!errors.Is(unlockErr, rlock.ErrNotOwner) {
			w.logError("seckill: release user lock failed",
				"userId", order.UserID, "error", unlockErr)
		}
	}()

	// 幂等复核：崩溃重放的意图可能已经落过库
	count, err := w.store.CountOrders(ctx, order.UserID, order.VoucherID)
	if err != nil {
		return fmt.Errorf("seckill: count orders: %w", err)
	}
	if count > 0 {
		return nil
	}

	decremented, err := w.store.DecrementStock(ctx, order.VoucherID)
	if err != nil {
		return fmt.Errorf("seckill: decrement stock: %w", err)
	}
	if !decremented {
		// 准入通过但持久库存不足：预热库存与持久库存出现分歧，
		// 丢弃意图并留痕
		w.logError("seckill: durable stock exhausted for admitted intent",
			"orderId", order.ID, "voucherId", order.VoucherID, "userId", order.UserID)
		return nil
	}

	if err := w.store.InsertOrder(ctx, order); err != nil {
		return fmt.Errorf("seckill: insert order: %w", err)
	}
	return nil
}

// reconcilePending 重放 pending 列表中已读未 ACK 的意图。
//
// 从偏移 "0" 逐条读取本消费者的 pending 消息，直到列表清空才返回。
// 单条意图带固定退避重试；尝试耗尽仍失败就退避后重新进入下一轮，
// 只有 ctx 取消能中断。pending 中的意图都已通过准入、扣过预热库存，
// 放弃等于丢失订单，故障多久就重试多久。
func (w *Worker) reconcilePending(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.opts.Group,
			Consumer: w.opts.Consumer,
			Streams:  []string{w.opts.Stream, "0"},
			Count:    1,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return
			}
			w.logError("seckill: read pending list failed", "error", err)
			if !w.sleep(ctx, w.opts.ReadRetryDelay) {
				return
			}
			continue
		}
		if len(streams) == 0 || len(streams[0].Messages) == 0 {
			return // pending 列表已清空
		}
		msg := streams[0].Messages[0]

		err = retry.New(
			retry.Context(ctx),
			retry.Attempts(uint(w.opts.PendingAttempts)),
			retry.Delay(w.opts.PendingDelay),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
		).Do(func() error {
			return w.consume(ctx, msg)
		})
		if err != nil {
			w.logError("seckill: pending intent still failing, backing off",
				"messageId", msg.ID, "error", err)
			if !w.sleep(ctx, w.opts.PendingDelay) {
				return
			}
		}
	}
}

// sleep 等待 d 后返回 true；ctx 先取消则返回 false。
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) ack(ctx context.Context, msgID string) error {
	if err := w.client.XAck(ctx, w.opts.Stream, w.opts.Group, msgID).Err(); err != nil {
		return fmt.Errorf("seckill: ack %s: %w", msgID, err)
	}
	return nil
}

// parseIntent 解析流消息中的下单意图。
func parseIntent(msg redis.XMessage) (Order, error) {
	id, err := intentField(msg, fieldOrderID)
	if err != nil {
		return Order{}, err
	}
	userID, err := intentField(msg, fieldUserID)
	if err != nil {
		return Order{}, err
	}
	voucherID, err := intentField(msg, fieldVoucherID)
	if err != nil {
		return Order{}, err
	}
	return Order{ID: id, UserID: userID, VoucherID: voucherID}, nil
}

func intentField(msg redis.XMessage, field string) (int64, error) {
	raw, ok := msg.Values[field]
	if !ok {
		return 0, fmt.Errorf("seckill: intent %s missing field %q", msg.ID, field)
	}
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("seckill: intent %s field %q is not a string", msg.ID, field)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seckill: intent %s field %q: %w", msg.ID, field, err)
	}
	return v, nil
}

func (w *Worker) logError(msg string, args ...any) {
	if w.opts.Logger != nil {
		w.opts.Logger.Error(msg, args...)
	}
}
