package seckill

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/chake111/hmdp/pkg/distributed/rlock"
	"github.com/chake111/hmdp/pkg/util/seqid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestClient 创建 miniredis 实例及对应客户端。
func newTestClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService 创建绑定 miniredis 的准入服务。
func newTestService(t *testing.T, client redis.UniversalClient, opts ...Option) *Service {
	t.Helper()

	ids, err := seqid.NewWorker(client)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	svc, err := NewService(client, ids, opts...)
	require.NoError(t, err)
	return svc
}

// newTestWorker 创建绑定 miniredis 的物化消费者。
func newTestWorker(t *testing.T, client redis.UniversalClient, store Store, opts ...Option) *Worker {
	t.Helper()

	locks, err := rlock.NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = locks.Close()
	})

	opts = append([]Option{
		WithLogger(discardLogger()),
		WithReadBlock(20 * time.Millisecond),
		WithPendingDelay(time.Millisecond),
		WithReadRetryDelay(time.Millisecond),
	}, opts...)
	w, err := NewWorker(client, store, locks, opts...)
	require.NoError(t, err)
	return w
}

// startWorker 在后台运行消费循环，测试结束时取消并等待退出。
func startWorker(t *testing.T, w *Worker) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop after context cancel")
		}
	})
}

// fakeStore 是内存版持久层。
type fakeStore struct {
	mu     sync.Mutex
	stock  map[int64]int64
	orders []Order

	countErr  error
	decErr    error
	insertErr error

	// insertFailures 前 N 次 InsertOrder 返回 insertErr，之后成功。
	insertFailures int
}

func newFakeStore() *fakeStore {
	return &fakeStore{stock: make(map[int64]int64)}
}

func (s *fakeStore) setStock(voucherID, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[voucherID] = stock
}

func (s *fakeStore) stockOf(voucherID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[voucherID]
}

func (s *fakeStore) ordersOf(userID, voucherID int64) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID && o.VoucherID == voucherID {
			out = append(out, o)
		}
	}
	return out
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) CountOrders(_ context.Context, userID, voucherID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	var n int64
	for _, o := range s.orders {
		if o.UserID == userID && o.VoucherID == voucherID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DecrementStock(_ context.Context, voucherID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decErr != nil {
		return false, s.decErr
	}
	if s.stock[voucherID] <= 0 {
		return false, nil
	}
	s.stock[voucherID]--
	return true, nil
}

func (s *fakeStore) InsertOrder(_ context.Context, order Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil && s.insertFailures != 0 {
		if s.insertFailures > 0 {
			s.insertFailures--
		}
		return s.insertErr
	}
	s.orders = append(s.orders, order)
	return nil
}
