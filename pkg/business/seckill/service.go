package seckill

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/chake111/hmdp/pkg/util/seqid"
)

// 意图在 Stream 中的字段名。
const (
	fieldOrderID   = "id"
	fieldUserID    = "userId"
	fieldVoucherID = "voucherId"
)

// Service 是秒杀准入快路径。
type Service struct {
	client redis.UniversalClient
	ids    *seqid.Worker
	opts   *Options
}

// NewService 创建准入服务。
func NewService(client redis.UniversalClient, ids *seqid.Worker, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if ids == nil {
		return nil, ErrNilIDWorker
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Service{
		client: client,
		ids:    ids,
		opts:   options,
	}, nil
}

// Submit 执行一次秒杀准入。
//
// 脚本原子完成库存检查、去重、扣减与登记；被拒绝返回 ErrSoldOut 或
// ErrDuplicateOrder。准入通过后铸造订单号并把意图追加到流，返回
// 订单号即向用户承诺下单成功，物化由消费者异步完成。
//
// 订单号在准入之后才铸造，被拒绝的请求不消耗序列号。
// XADD 失败时准入状态已经生效（库存已扣、用户已登记），错误原样
// 返回并记录日志，对账依赖持久层与预热状态的比对。
func (s *Service) Submit(ctx context.Context, voucherID, userID int64) (int64, error) {
	if voucherID <= 0 {
		return 0, ErrInvalidVoucher
	}
	if userID <= 0 {
		return 0, ErrInvalidUser
	}

	keys := []string{
		s.opts.StockKeyPrefix + strconv.FormatInt(voucherID, 10),
		s.opts.OrderSetKeyPrefix + strconv.FormatInt(voucherID, 10),
	}
	status, err := admitScript.Run(ctx, s.client, keys, strconv.FormatInt(userID, 10)).Int64()
	if err != nil {
		return 0, fmt.Errorf("seckill: run admit script: %w", err)
	}

	switch status {
	case admitStatusOK:
	case admitStatusSoldOut:
		return 0, ErrSoldOut
	case admitStatusDuplicate:
		return 0, ErrDuplicateOrder
	default:
		return 0, fmt.Errorf("seckill: unexpected admit status %d", status)
	}

	orderID, err := s.ids.NextID(ctx, s.opts.OrderSequence)
	if err != nil {
		s.logError("seckill: mint order id failed after admission",
			"voucherId", voucherID, "userId", userID, "error", err)
		return 0, fmt.Errorf("seckill: mint order id: %w", err)
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.opts.Stream,
		Values: map[string]any{
			fieldOrderID:   strconv.FormatInt(orderID, 10),
			fieldUserID:    strconv.FormatInt(userID, 10),
			fieldVoucherID: strconv.FormatInt(voucherID, 10),
		},
	}).Err(); err != nil {
		s.logError("seckill: append order intent failed after admission",
			"orderId", orderID, "voucherId", voucherID, "userId", userID, "error", err)
		return 0, fmt.Errorf("seckill: append order intent: %w", err)
	}
	return orderID, nil
}

// Prewarm 预热一个优惠券的准入状态：写入库存键并清空下单用户集合。
// 优惠券发布时调用；重复调用会重置库存并清掉已登记用户，仅限活动
// 开始前使用。
func (s *Service) Prewarm(ctx context.Context, voucherID int64, stock int64) error {
	if voucherID <= 0 {
		return ErrInvalidVoucher
	}
	if stock < 0 {
		return fmt.Errorf("seckill: negative stock %d", stock)
	}

	id := strconv.FormatInt(voucherID, 10)
	if err := s.client.Set(ctx, s.opts.StockKeyPrefix+id, stock, 0).Err(); err != nil {
		return fmt.Errorf("seckill: prewarm stock for voucher %d: %w", voucherID, err)
	}
	if err := s.client.Del(ctx, s.opts.OrderSetKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("seckill: clear order set for voucher %d: %w", voucherID, err)
	}
	return nil
}

func (s *Service) logError(msg string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Error(msg, args...)
	}
}
