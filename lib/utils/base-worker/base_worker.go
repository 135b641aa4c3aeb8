package baseworker

import (
	"context"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
)

// Worker периодическая фоновая задача инстанса
type Worker struct {
	name          string
	firstRunDelay time.Duration
	runInterval   time.Duration
}

func NewInstance(name string, firstRunDelay, runInterval time.Duration) *Worker {
	return &Worker{
		name:          name,
		firstRunDelay: firstRunDelay,
		runInterval:   runInterval,
	}
}

func (w Worker) GetLogger() *log.Entry {
	return log.WithField("worker_name", w.name)
}

// Run выполняет job до завершения ctx. Ошибка или паника одного запуска не останавливает задачу
func (w Worker) Run(ctx context.Context, job func(ctx context.Context) error) {
	logger := w.GetLogger()
	timer := time.NewTimer(w.firstRunDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("задача остановлена")
			return
		case <-timer.C:
			w.runOnce(ctx, logger, job)
			timer.Reset(w.runInterval)
		}
	}
}

func (w Worker) runOnce(ctx context.Context, logger *log.Entry, job func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic: (%v)", r)
		}
	}()
	started := time.Now()
	if err := job(ctx); err != nil {
		logger.WithError(err).Error("ошибка выполнения задачи")
		return
	}
	logger.
		WithField("duration", time.Since(started).String()).
		Debug("задача выполнена")
}
