// seckilld 运行秒杀订单物化守护进程。
//
// 进程消费 stream.orders 中已准入的下单意图，把它们物化为
// PostgreSQL 中的持久订单，SIGINT/SIGTERM 优雅退出。
//
// 用法:
//
//	seckilld -c /etc/hmdp/config.yaml
//
// 配置见 internal/config，支持 HMDP_ 前缀环境变量覆盖。
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/chake111/hmdp/internal/config"
	"github.com/chake111/hmdp/internal/pgstore"
	"github.com/chake111/hmdp/pkg/business/seckill"
	"github.com/chake111/hmdp/pkg/distributed/rlock"
	"github.com/chake111/hmdp/pkg/lifecycle/rungroup"
)

func main() {
	cmd := &cli.Command{
		Name:  "seckilld",
		Usage: "秒杀订单物化守护进程",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("config"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "seckilld:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis client", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("seckilld: connect redis %s: %w", cfg.Redis.Addr, err)
	}

	store, err := pgstore.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	locks, err := rlock.NewFactory(client)
	if err != nil {
		return err
	}
	defer func() {
		_ = locks.Close()
	}()

	worker, err := seckill.NewWorker(client, store, locks,
		seckill.WithStream(cfg.Seckill.Stream),
		seckill.WithGroup(cfg.Seckill.Group),
		seckill.WithConsumer(cfg.Seckill.Consumer),
		seckill.WithUserLockExpiry(cfg.Seckill.UserLockExpiry),
		seckill.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("seckilld starting",
		"redis", cfg.Redis.Addr,
		"stream", cfg.Seckill.Stream,
		"group", cfg.Seckill.Group,
		"consumer", cfg.Seckill.Consumer,
	)

	g, _ := rungroup.New(ctx, logger)
	g.GoWithName("materializer", worker.Run)
	g.Go(rungroup.Signals(g))

	err = g.Wait()
	if err != nil && errors.Is(err, rungroup.ErrSignal) {
		logger.Info("seckilld stopped", "reason", err)
		return nil
	}
	return err
}
