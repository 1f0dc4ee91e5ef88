package rcache

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/chake111/hmdp/pkg/distributed/rlock"
)

// rebuildTask 是一次后台重建的全部输入。
type rebuildTask struct {
	cache  *Cache
	key    string
	id     string
	load   LoadFunc
	window time.Duration
	lock   *rlock.Simple
}

// rebuildPool 是固定大小的重建工作池。
// 队列满时 submit 返回 false，由调用方释放重建锁；
// 读路径永远不会因为重建排队而阻塞。
type rebuildPool struct {
	tasks   chan rebuildTask
	workers int
	logger  *slog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newRebuildPool(workers, queue int, logger *slog.Logger) *rebuildPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers
	}
	return &rebuildPool{
		tasks:   make(chan rebuildTask, queue),
		workers: workers,
		logger:  logger,
	}
}

func (p *rebuildPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *rebuildPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run 执行单个任务，panic 不得杀死 worker。
func (p *rebuildPool) run(task rebuildTask) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Error("rcache: rebuild panic",
					"key", task.key,
					"panic", r,
					"stack", string(debug.Stack()))
			}
			task.cache.unlockRebuild(task.lock)
		}
	}()
	task.cache.runRebuild(task)
}

// submit 非阻塞提交。池已停止或队列满时返回 false。
func (p *rebuildPool) submit(task rebuildTask) (ok bool) {
	defer func() {
		// 与 stop 并发时向已关闭 channel 发送会 panic，按提交失败处理
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// stop 关闭队列并等待所有进行中的重建完成。
func (p *rebuildPool) stop() {
	p.stopOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
