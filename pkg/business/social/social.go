package social

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Store 是点赞计数与关注关系的持久层契约。
// Redis 侧的集合只在持久层写入成功后变更。
type Store interface {
	// AdjustLikeCount 调整动态的点赞计数，delta 为 +1 或 -1。
	AdjustLikeCount(ctx context.Context, blogID, delta int64) error

	// SaveFollow 持久化一条关注关系。
	SaveFollow(ctx context.Context, userID, targetID int64) error

	// RemoveFollow 删除一条关注关系。
	RemoveFollow(ctx context.Context, userID, targetID int64) error
}

// Service 提供点赞、关注、信箱与附近商铺能力。
type Service struct {
	client redis.UniversalClient
	store  Store
	opts   *Options
}

// NewService 创建服务。
func NewService(client redis.UniversalClient, store Store, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if store == nil {
		return nil, ErrNilStore
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Service{
		client: client,
		store:  store,
		opts:   options,
	}, nil
}

// =============================================================================
// 点赞
// =============================================================================

// Like 切换用户对动态的点赞状态，返回切换后的状态。
// 先调整持久计数，成功后再变更 zset，score 为点赞时刻的毫秒时间戳。
func (s *Service) Like(ctx context.Context, userID, blogID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrInvalidUser
	}
	if blogID <= 0 {
		return false, ErrInvalidBlog
	}

	key := s.opts.LikeKeyPrefix + strconv.FormatInt(blogID, 10)
	member := strconv.FormatInt(userID, 10)

	_, err := s.client.ZScore(ctx, key, member).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// 未点赞，点赞
		if storeErr := s.store.AdjustLikeCount(ctx, blogID, 1); storeErr != nil {
			return false, fmt.Errorf("social: increment like count: %w", storeErr)
		}
		if zErr := s.client.ZAdd(ctx, key, redis.Z{
			Score:  float64(s.opts.Clock().UnixMilli()),
			Member: member,
		}).Err(); zErr != nil {
			return false, fmt.Errorf("social: register liker: %w", zErr)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("social: probe like state: %w", err)
	default:
		// 已点赞，取消
		if storeErr := s.store.AdjustLikeCount(ctx, blogID, -1); storeErr != nil {
			return false, fmt.Errorf("social: decrement like count: %w", storeErr)
		}
		if zErr := s.client.ZRem(ctx, key, member).Err(); zErr != nil {
			return false, fmt.Errorf("social: remove liker: %w", zErr)
		}
		return false, nil
	}
}

// Liked 返回用户是否点赞过该动态。
func (s *Service) Liked(ctx context.Context, userID, blogID int64) (bool, error) {
	key := s.opts.LikeKeyPrefix + strconv.FormatInt(blogID, 10)
	_, err := s.client.ZScore(ctx, key, strconv.FormatInt(userID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("social: probe like state: %w", err)
	}
	return true, nil
}

// TopLikers 返回最早点赞的前五个用户 id，按点赞时间升序。
func (s *Service) TopLikers(ctx context.Context, blogID int64) ([]int64, error) {
	key := s.opts.LikeKeyPrefix + strconv.FormatInt(blogID, 10)
	members, err := s.client.ZRange(ctx, key, 0, 4).Result()
	if err != nil {
		return nil, fmt.Errorf("social: read top likers: %w", err)
	}
	return parseIDs(members)
}

// =============================================================================
// 关注
// =============================================================================

// Follow 建立关注关系：持久层成功后把目标加入关注集合。
func (s *Service) Follow(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return ErrInvalidUser
	}

	if err := s.store.SaveFollow(ctx, userID, targetID); err != nil {
		return fmt.Errorf("social: save follow: %w", err)
	}
	key := s.opts.FollowKeyPrefix + strconv.FormatInt(userID, 10)
	if err := s.client.SAdd(ctx, key, strconv.FormatInt(targetID, 10)).Err(); err != nil {
		return fmt.Errorf("social: register follow: %w", err)
	}
	return nil
}

// Unfollow 解除关注关系。
func (s *Service) Unfollow(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return ErrInvalidUser
	}

	if err := s.store.RemoveFollow(ctx, userID, targetID); err != nil {
		return fmt.Errorf("social: remove follow: %w", err)
	}
	key := s.opts.FollowKeyPrefix + strconv.FormatInt(userID, 10)
	if err := s.client.SRem(ctx, key, strconv.FormatInt(targetID, 10)).Err(); err != nil {
		return fmt.Errorf("social: unregister follow: %w", err)
	}
	return nil
}

// Follows 返回用户是否关注了目标。
func (s *Service) Follows(ctx context.Context, userID, targetID int64) (bool, error) {
	key := s.opts.FollowKeyPrefix + strconv.FormatInt(userID, 10)
	ok, err := s.client.SIsMember(ctx, key, strconv.FormatInt(targetID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("social: probe follow state: %w", err)
	}
	return ok, nil
}

// CommonFollows 返回两个用户共同关注的用户 id。
func (s *Service) CommonFollows(ctx context.Context, userID, otherID int64) ([]int64, error) {
	members, err := s.client.SInter(ctx,
		s.opts.FollowKeyPrefix+strconv.FormatInt(userID, 10),
		s.opts.FollowKeyPrefix+strconv.FormatInt(otherID, 10),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("social: intersect follows: %w", err)
	}
	return parseIDs(members)
}

func parseIDs(members []string) ([]int64, error) {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("social: corrupt member %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
