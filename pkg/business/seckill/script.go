package seckill

import (
	_ "embed"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 准入脚本状态码
// =============================================================================

const (
	// admitStatusOK 准入通过
	admitStatusOK = 0
	// admitStatusSoldOut 库存不足
	admitStatusSoldOut = 1
	// admitStatusDuplicate 重复下单
	admitStatusDuplicate = 2
)

//go:embed lua/admit.lua
var admitLuaSource string

// admitScript 秒杀准入脚本。go-redis 自动处理 EVALSHA/EVAL 降级。
var admitScript = redis.NewScript(admitLuaSource)
