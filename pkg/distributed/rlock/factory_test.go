package rlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory_WithNoClients_ReturnsError(t *testing.T) {
	_, err := NewFactory()
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestNewFactory_WithNilClient_ReturnsError(t *testing.T) {
	_, err := NewFactory(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestFactory_TryLock_WhenFree_ReturnsHandle(t *testing.T) {
	client, _ := newTestClient(t)

	factory, err := NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	handle, err := factory.TryLock(context.Background(), "order:42")
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "lock:order:42", handle.Key())

	require.NoError(t, handle.Unlock(context.Background()))
}

func TestFactory_TryLock_WhenHeld_ReturnsNilHandle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	factory, err := NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	first, err := factory.TryLock(ctx, "order:42")
	require.NoError(t, err)
	require.NotNil(t, first)
	t.Cleanup(func() { _ = first.Unlock(ctx) })

	// 锁被占用：handle=nil 且 err=nil，这是正常情况
	second, err := factory.TryLock(ctx, "order:42")
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestFactory_TryLock_WithEmptyKey_ReturnsError(t *testing.T) {
	client, _ := newTestClient(t)

	factory, err := NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	_, err = factory.TryLock(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestFactory_Unlock_Twice_ReturnsErrNotLocked(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	factory, err := NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	handle, err := factory.TryLock(ctx, "order:42", WithExpiry(5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, handle)

	require.NoError(t, handle.Unlock(ctx))
	assert.ErrorIs(t, handle.Unlock(ctx), ErrNotLocked)
}

func TestFactory_AfterClose_ReturnsErrFactoryClosed(t *testing.T) {
	client, _ := newTestClient(t)

	factory, err := NewFactory(client)
	require.NoError(t, err)
	require.NoError(t, factory.Close())

	_, err = factory.TryLock(context.Background(), "order:42")
	assert.ErrorIs(t, err, ErrFactoryClosed)
	assert.ErrorIs(t, factory.Health(context.Background()), ErrFactoryClosed)
}

func TestFactory_Health_PingsAllNodes(t *testing.T) {
	client, mr := newTestClient(t)

	factory, err := NewFactory(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	require.NoError(t, factory.Health(context.Background()))

	mr.Close() // 模拟 Redis 故障
	assert.Error(t, factory.Health(context.Background()))
}
