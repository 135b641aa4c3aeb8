package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var (
	keyMap sync.Map
)

// RequestKey ключ блокировки заявки, одна операция над заявкой в пределах инстанса
func RequestKey(requestID string) string {
	return fmt.Sprintf("purchase_request:%s", requestID)
}

// WithDelay выполняет safeCode под блокировкой key, ожидая её не дольше wait.
// success=false если блокировку получить не удалось
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	isTimeout := time.After(wait)
	for {
		if _, loaded := keyMap.LoadOrStore(key, true); !loaded {
			break
		}
		select {
		case <-isTimeout:
			return false, nil
		case <-ctx.Done():
			return false, nil
		default:
			time.Sleep(20 * time.Millisecond)
		}
	}
	defer keyMap.Delete(key)
	return true, safeCode()
}
