package rungroup

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ErrNilFunc 表示注册了 nil 服务函数。
var ErrNilFunc = errors.New("rungroup: nil service func")

// Group 并发运行一组服务，任一服务失败时取消其余服务。
// Go 与 Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	logger   *slog.Logger
}

// New 创建 Group，返回 Group 和派生 context。
// 任一服务返回错误时派生 context 被取消。
func New(ctx context.Context, logger *slog.Logger) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		logger:   logger,
	}, egCtx
}

// Go 启动一个服务。fn 必须监听 ctx.Done() 以响应取消。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.GoWithName("", fn)
}

// GoWithName 与 Go 相同，并以 name 记录生命周期日志。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.logger.Debug("service starting", slog.String("service", name))
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn("service exited with error",
				slog.String("service", name), slog.Any("error", err))
		} else {
			g.logger.Debug("service stopped", slog.String("service", name))
		}
		return err
	})
}

// Cancel 主动取消所有服务，cause 会由 Wait 返回。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Wait 等待所有服务退出。
//
// 协调关闭产生的 context.Canceled 被过滤为 nil；通过 Cancel 设置的
// 显式原因（非 context.Canceled）优先返回，即使所有服务返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()

	if errors.Is(err, context.Canceled) && g.causeCtx.Err() != nil {
		err = nil
	}
	if err == nil && g.causeCtx.Err() != nil {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
	}
	return err
}
