package passport

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

// fakeUserStore 是内存版用户存储。
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*User
	nextID int64

	queryErr  error
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*User), nextID: 1000}
}

func (s *fakeUserStore) UserByPhone(_ context.Context, phone string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.users[phone], nil
}

func (s *fakeUserStore) CreateUser(_ context.Context, phone string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	u := &User{ID: s.nextID, NickName: "user_" + phone[7:]}
	s.users[phone] = u
	return u, nil
}

func newTestService(t *testing.T, store UserStore, opts ...Option) (*miniredis.Miniredis, *Service) {
	t.Helper()

	mr, client := newTestClient(t)
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	svc, err := NewService(client, store, opts...)
	require.NoError(t, err)
	return mr, svc
}

const testPhone = "13812345678"

func TestNewService_Validation(t *testing.T) {
	_, client := newTestClient(t)

	t.Run("nil client", func(t *testing.T) {
		svc, err := NewService(nil, newFakeUserStore())
		assert.ErrorIs(t, err, ErrNilClient)
		assert.Nil(t, svc)
	})

	t.Run("nil store", func(t *testing.T) {
		svc, err := NewService(client, nil)
		assert.ErrorIs(t, err, ErrNilStore)
		assert.Nil(t, svc)
	})
}

func TestService_SendCode(t *testing.T) {
	mr, svc := newTestService(t, newFakeUserStore())
	ctx := context.Background()

	// When: 发送验证码
	code, err := svc.SendCode(ctx, testPhone)

	// Then: 六位数字，按 TTL 存入
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)

	stored, getErr := mr.Get("login:code:" + testPhone)
	require.NoError(t, getErr)
	assert.Equal(t, code, stored)
	assert.Greater(t, mr.TTL("login:code:"+testPhone), time.Duration(0))

	// 非法手机号被拒绝
	_, err = svc.SendCode(ctx, "12345")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	_, err = svc.SendCode(ctx, "23812345678")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestService_Login(t *testing.T) {
	store := newFakeUserStore()
	mr, svc := newTestService(t, store, WithTokenFunc(func() string { return "tok123" }))
	ctx := context.Background()

	code, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	// When: 正确验证码登录
	token, err := svc.Login(ctx, testPhone, code)

	// Then: 新用户自动注册，会话 hash 写入并带 TTL，验证码作废
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)

	user, storeErr := store.UserByPhone(ctx, testPhone)
	require.NoError(t, storeErr)
	require.NotNil(t, user)

	fields := mr.HGet("login:token:tok123", "id")
	assert.NotEmpty(t, fields)
	assert.Greater(t, mr.TTL("login:token:tok123"), time.Duration(0))
	assert.False(t, mr.Exists("login:code:"+testPhone))

	// When: 用已作废验证码再次登录
	_, err = svc.Login(ctx, testPhone, code)
	assert.ErrorIs(t, err, ErrBadCode)
}

func TestService_Login_BadCode(t *testing.T) {
	_, svc := newTestService(t, newFakeUserStore())
	ctx := context.Background()

	_, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	_, err = svc.Login(ctx, testPhone, "000000x")
	assert.ErrorIs(t, err, ErrBadCode)

	// 从未发码的手机号
	_, err = svc.Login(ctx, "13911112222", "123456")
	assert.ErrorIs(t, err, ErrBadCode)
}

func TestService_Login_ExistingUser(t *testing.T) {
	store := newFakeUserStore()
	_, svc := newTestService(t, store)
	ctx := context.Background()

	// Given: 已注册用户
	existing, err := store.CreateUser(ctx, testPhone)
	require.NoError(t, err)

	code, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	token, err := svc.Login(ctx, testPhone, code)
	require.NoError(t, err)

	// Then: 复用既有用户，不重复注册
	sess, err := svc.Session(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sess.UserID)
}

func TestService_Session(t *testing.T) {
	store := newFakeUserStore()
	mr, svc := newTestService(t, store, WithSessionTTL(10*time.Minute))
	ctx := context.Background()

	code, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	token, err := svc.Login(ctx, testPhone, code)
	require.NoError(t, err)

	// When: 会话临近过期时访问
	mr.FastForward(9 * time.Minute)
	sess, err := svc.Session(ctx, token)

	// Then: 返回会话并刷新滑动过期
	require.NoError(t, err)
	assert.Positive(t, sess.UserID)
	assert.Equal(t, 10*time.Minute, mr.TTL("login:token:"+token))

	// 过期后访问返回无会话
	mr.FastForward(11 * time.Minute)
	_, err = svc.Session(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	// 空 token 与未知 token
	_, err = svc.Session(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Session(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestService_Logout(t *testing.T) {
	store := newFakeUserStore()
	_, svc := newTestService(t, store)
	ctx := context.Background()

	code, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	token, err := svc.Login(ctx, testPhone, code)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Session(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	// 重复登出与空 token 都静默成功
	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestService_Login_StoreFailure(t *testing.T) {
	store := newFakeUserStore()
	store.queryErr = errors.New("db down")
	_, svc := newTestService(t, store)
	ctx := context.Background()

	code, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	_, err = svc.Login(ctx, testPhone, code)
	assert.ErrorContains(t, err, "db down")
}
