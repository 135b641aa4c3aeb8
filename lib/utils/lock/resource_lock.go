package lock

import (
	"context"
	"sync"
	"sync/atomic"
)

// Export ограничивает одновременную генерацию выгрузок (xlsx/pdf) одной задачей
var Export = newResourceLock()

func InitResourceLock(ctx context.Context) {
	Export = newResourceLock()

	go func() {
		<-ctx.Done()
		Export.Stop()
	}()
}

type ResourceLock struct {
	mu        sync.Mutex
	cond      *sync.Cond
	holder    string
	waitCount int32
	stopped   bool
}

func newResourceLock() *ResourceLock {
	lock := &ResourceLock{}
	lock.cond = sync.NewCond(&lock.mu)
	return lock
}

// Acquire захватывает ресурс для holder.
// Возвращает false если контекст завершен или блокировка остановлена
func (c *ResourceLock) Acquire(ctx context.Context, holder string) bool {
	atomic.AddInt32(&c.waitCount, 1)
	defer atomic.AddInt32(&c.waitCount, -1)

	// будим ожидающих при отмене контекста
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cond.Broadcast()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	for c.holder != "" && !c.stopped {
		if ctx.Err() != nil {
			return false
		}
		c.cond.Wait()
	}
	if c.stopped || ctx.Err() != nil {
		return false
	}
	c.holder = holder
	return true
}

func (c *ResourceLock) Release(holder string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.holder == holder {
		c.holder = ""
		c.cond.Broadcast()
	}
}

func (c *ResourceLock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.cond.Broadcast()
}

func (c *ResourceLock) WaitCount() int {
	return int(atomic.LoadInt32(&c.waitCount))
}
