package baseworker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	done := make(chan struct{})
	worker := NewInstance("test", time.Millisecond, time.Millisecond)
	go func() {
		defer close(done)
		worker.Run(ctx, func(ctx context.Context) error {
			switch atomic.AddInt32(&calls, 1) {
			case 1:
				return errors.New("first run failed")
			case 2:
				panic("second run panic")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("задача не остановилась после отмены контекста")
	}
}

func TestRunStoppedBeforeFirstRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	NewInstance("test", time.Hour, time.Hour).Run(ctx, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.Zero(t, atomic.LoadInt32(&calls))
}
