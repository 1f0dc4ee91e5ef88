package passport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// signKey 返回用户某月的签到 bitmap 键，如 sign:1001:202508。
func (s *Service) signKey(userID int64, t time.Time) string {
	return s.opts.SignKeyPrefix + strconv.FormatInt(userID, 10) + ":" + t.Format("200601")
}

// Sign 记录用户在指定日期的签到。
// 位偏移为日期减一：每月 1 号对应 bit 0。重复签到幂等。
func (s *Service) Sign(ctx context.Context, userID int64, t time.Time) error {
	if userID <= 0 {
		return ErrInvalidUser
	}

	key := s.signKey(userID, t)
	if err := s.client.SetBit(ctx, key, int64(t.Day()-1), 1).Err(); err != nil {
		return fmt.Errorf("passport: set sign bit: %w", err)
	}
	return nil
}

// SignStreak 返回截至指定日期（含当日）的连续签到天数。
// 当日未签到返回 0；连续性只在当月内统计，跨月不续算。
func (s *Service) SignStreak(ctx context.Context, userID int64, t time.Time) (int, error) {
	if userID <= 0 {
		return 0, ErrInvalidUser
	}

	raw, err := s.client.Get(ctx, s.signKey(userID, t)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("passport: read sign bitmap: %w", err)
	}

	// 从当日位起向月初回数连续的 1。
	// SETBIT 的位序是字节内高位在前：第 d 天在 raw[(d-1)/8] 的
	// 第 7-(d-1)%8 位。
	streak := 0
	for day := t.Day(); day >= 1; day-- {
		offset := day - 1
		byteIdx := offset / 8
		if byteIdx >= len(raw) {
			break
		}
		if raw[byteIdx]&(1<<(7-offset%8)) == 0 {
			break
		}
		streak++
	}
	return streak, nil
}
