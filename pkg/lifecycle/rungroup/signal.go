package rungroup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ErrSignal 表示因收到系统信号而终止。
var ErrSignal = errors.New("received signal")

// SignalError 携带触发终止的具体信号。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

// Is 支持 errors.Is(err, ErrSignal) 判断。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}

// Signals 返回一个监听系统信号的服务函数。
//
// 收到列表中的信号后以 *SignalError 取消整个 Group 并返回 nil；
// ctx 先被取消则直接返回。未指定信号时默认监听 SIGINT 与 SIGTERM。
func Signals(g *Group, signals ...os.Signal) func(ctx context.Context) error {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return func(ctx context.Context) error {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			g.Cancel(&SignalError{Signal: sig})
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
