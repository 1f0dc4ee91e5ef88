// Package pgstore 是秒杀与店铺数据的 PostgreSQL 持久层。
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chake111/hmdp/pkg/business/seckill"
)

// ErrEmptyDSN 表示连接串为空。
var ErrEmptyDSN = errors.New("pgstore: dsn is empty")

// Store 基于 pgx 连接池实现持久层契约。
type Store struct {
	pool *pgxpool.Pool
}

// New 创建持久层并校验连通性。
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close 关闭连接池。
func (s *Store) Close() {
	s.pool.Close()
}

// CountOrders 返回用户对某优惠券已持久化的订单数。
func (s *Store) CountOrders(ctx context.Context, userID, voucherID int64) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM tb_voucher_order WHERE user_id = $1 AND voucher_id = $2`,
		userID, voucherID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgstore: count orders: %w", err)
	}
	return count, nil
}

// DecrementStock 条件扣减库存，stock > 0 时才生效。
func (s *Store) DecrementStock(ctx context.Context, voucherID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tb_seckill_voucher SET stock = stock - 1 WHERE voucher_id = $1 AND stock > 0`,
		voucherID,
	)
	if err != nil {
		return false, fmt.Errorf("pgstore: decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertOrder 持久化订单。
func (s *Store) InsertOrder(ctx context.Context, order seckill.Order) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tb_voucher_order (id, user_id, voucher_id) VALUES ($1, $2, $3)`,
		order.ID, order.UserID, order.VoucherID,
	)
	if err != nil {
		return fmt.Errorf("pgstore: insert order: %w", err)
	}
	return nil
}

// Shop 是店铺实体的缓存视图。
type Shop struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	TypeID  int64  `json:"typeId"`
	Address string `json:"address"`
}

// ShopByID 按 id 加载店铺，作为缓存引擎的回源函数使用。
// 店铺不存在时返回 (nil, nil)。
func (s *Store) ShopByID(ctx context.Context, id int64) ([]byte, error) {
	var shop Shop
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, type_id, address FROM tb_shop WHERE id = $1`,
		id,
	).Scan(&shop.ID, &shop.Name, &shop.TypeID, &shop.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: shop by id: %w", err)
	}

	payload, err := json.Marshal(shop)
	if err != nil {
		return nil, fmt.Errorf("pgstore: marshal shop: %w", err)
	}
	return payload, nil
}

// SeckillStock 返回优惠券当前持久库存，预热时使用。
func (s *Store) SeckillStock(ctx context.Context, voucherID int64) (int64, error) {
	var stock int64
	err := s.pool.QueryRow(ctx,
		`SELECT stock FROM tb_seckill_voucher WHERE voucher_id = $1`,
		voucherID,
	).Scan(&stock)
	if err != nil {
		return 0, fmt.Errorf("pgstore: seckill stock: %w", err)
	}
	return stock, nil
}

// 编译期确认 Store 满足秒杀持久层契约。
var _ seckill.Store = (*Store)(nil)
