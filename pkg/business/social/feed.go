package social

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// FeedPage 是一次信箱滚动分页的结果。
type FeedPage struct {
	// BlogIDs 本页动态 id，按发布时间从新到旧。
	BlogIDs []int64

	// MinTime 本页最小 score（毫秒时间戳），作为下一页的 max 游标。
	MinTime int64

	// Offset 下一页应跳过的同分条目数。
	Offset int64
}

// PushFeed 把动态推入一批粉丝的收件箱，score 为发布时刻的毫秒时间戳。
func (s *Service) PushFeed(ctx context.Context, blogID int64, followerIDs ...int64) error {
	if blogID <= 0 {
		return ErrInvalidBlog
	}

	member := strconv.FormatInt(blogID, 10)
	score := float64(s.opts.Clock().UnixMilli())
	for _, uid := range followerIDs {
		key := s.opts.FeedKeyPrefix + strconv.FormatInt(uid, 10)
		if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
			return fmt.Errorf("social: push feed to user %d: %w", uid, err)
		}
	}
	return nil
}

// ScrollFeed 滚动读取收件箱。
//
// max 为上一页返回的 MinTime 游标（首页传当前毫秒时间戳或更大值），
// offset 为上一页返回的 Offset，count 为页大小。同一毫秒内发布的多
// 条动态 score 相同，靠 offset 跳过上一页已读的同分条目，保证翻页
// 不重不漏。收件箱为空或游标越界时返回空页。
func (s *Service) ScrollFeed(ctx context.Context, userID, max, offset, count int64) (FeedPage, error) {
	if userID <= 0 {
		return FeedPage{}, ErrInvalidUser
	}
	if count <= 0 {
		count = 2
	}

	key := s.opts.FeedKeyPrefix + strconv.FormatInt(userID, 10)
	entries, err := s.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min:    "0",
		Max:    strconv.FormatInt(max, 10),
		Offset: offset,
		Count:  count,
	}).Result()
	if err != nil {
		return FeedPage{}, fmt.Errorf("social: scroll feed: %w", err)
	}
	if len(entries) == 0 {
		return FeedPage{}, nil
	}

	page := FeedPage{BlogIDs: make([]int64, 0, len(entries))}
	var nextOffset int64 = 1
	var minTime int64
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			return FeedPage{}, fmt.Errorf("social: unexpected feed member %v", entry.Member)
		}
		id, parseErr := strconv.ParseInt(member, 10, 64)
		if parseErr != nil {
			return FeedPage{}, fmt.Errorf("social: corrupt feed member %q: %w", member, parseErr)
		}
		page.BlogIDs = append(page.BlogIDs, id)

		// 统计最小 score 及其连续出现次数，作为下一页游标
		ts := int64(entry.Score)
		if ts == minTime {
			nextOffset++
		} else {
			minTime = ts
			nextOffset = 1
		}
	}
	page.MinTime = minTime
	page.Offset = nextOffset
	return page, nil
}
