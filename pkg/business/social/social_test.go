package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, client
}

// fakeSocialStore 是内存版持久层。
type fakeSocialStore struct {
	mu      sync.Mutex
	likes   map[int64]int64
	follows map[[2]int64]bool

	likeErr   error
	followErr error
}

func newFakeSocialStore() *fakeSocialStore {
	return &fakeSocialStore{
		likes:   make(map[int64]int64),
		follows: make(map[[2]int64]bool),
	}
}

func (s *fakeSocialStore) likeCount(blogID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[blogID]
}

func (s *fakeSocialStore) AdjustLikeCount(_ context.Context, blogID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likeErr != nil {
		return s.likeErr
	}
	s.likes[blogID] += delta
	return nil
}

func (s *fakeSocialStore) SaveFollow(_ context.Context, userID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.followErr != nil {
		return s.followErr
	}
	s.follows[[2]int64{userID, targetID}] = true
	return nil
}

func (s *fakeSocialStore) RemoveFollow(_ context.Context, userID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.followErr != nil {
		return s.followErr
	}
	delete(s.follows, [2]int64{userID, targetID})
	return nil
}

func newTestService(t *testing.T, store Store, opts ...Option) *Service {
	t.Helper()

	_, client := newTestClient(t)
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	svc, err := NewService(client, store, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	_, client := newTestClient(t)

	t.Run("nil client", func(t *testing.T) {
		svc, err := NewService(nil, newFakeSocialStore())
		assert.ErrorIs(t, err, ErrNilClient)
		assert.Nil(t, svc)
	})

	t.Run("nil store", func(t *testing.T) {
		svc, err := NewService(client, nil)
		assert.ErrorIs(t, err, ErrNilStore)
		assert.Nil(t, svc)
	})
}

func TestService_LikeToggle(t *testing.T) {
	store := newFakeSocialStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	// When: 首次点赞
	liked, err := svc.Like(ctx, 1001, 7)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), store.likeCount(7))

	got, err := svc.Liked(ctx, 1001, 7)
	require.NoError(t, err)
	assert.True(t, got)

	// When: 再次点赞即取消
	liked, err = svc.Like(ctx, 1001, 7)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.likeCount(7))

	got, err = svc.Liked(ctx, 1001, 7)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestService_Like_StoreFailureKeepsRedisUntouched(t *testing.T) {
	store := newFakeSocialStore()
	store.likeErr = errors.New("db down")
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Like(ctx, 1001, 7)
	assert.ErrorContains(t, err, "db down")

	// 持久计数失败时不登记点赞者
	liked, err := svc.Liked(ctx, 1001, 7)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestService_TopLikers(t *testing.T) {
	store := newFakeSocialStore()
	now := time.Date(2025, 8, 7, 12, 0, 0, 0, time.UTC)
	clock := now
	var mu sync.Mutex
	svc := newTestService(t, store, WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}))
	ctx := context.Background()

	// Given: 七个用户依次点赞
	for uid := int64(1); uid <= 7; uid++ {
		_, err := svc.Like(ctx, uid, 9)
		require.NoError(t, err)
	}

	// Then: 返回最早的五个，按点赞时间升序
	top, err := svc.TopLikers(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, top)

	// 无人点赞的动态返回空
	top, err = svc.TopLikers(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestService_FollowAndCommonFollows(t *testing.T) {
	store := newFakeSocialStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	// Given: 两个用户有部分重叠的关注
	for _, target := range []int64{10, 11, 12} {
		require.NoError(t, svc.Follow(ctx, 1001, target))
	}
	for _, target := range []int64{11, 12, 13} {
		require.NoError(t, svc.Follow(ctx, 1002, target))
	}

	ok, err := svc.Follows(ctx, 1001, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	common, err := svc.CommonFollows(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{11, 12}, common)

	// When: 取消关注后共同关注收缩
	require.NoError(t, svc.Unfollow(ctx, 1001, 11))
	ok, err = svc.Follows(ctx, 1001, 11)
	require.NoError(t, err)
	assert.False(t, ok)

	common, err = svc.CommonFollows(ctx, 1001, 1002)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{12}, common)

	// 持久层失败时不动 Redis
	store.followErr = errors.New("db down")
	assert.ErrorContains(t, svc.Follow(ctx, 1001, 99), "db down")
	ok, err = svc.Follows(ctx, 1001, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}
