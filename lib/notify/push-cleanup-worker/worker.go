package pushcleanupworker

import (
	"context"
	"procurement-backend/config"
	"procurement-backend/db"
	pushdatastore "procurement-backend/lib/notify/push-store"
	baseworker "procurement-backend/lib/utils/base-worker"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	firstRunDelay = time.Minute
	runInterval   = 6 * time.Hour
)

// StartWorker удаляет недоставленные уведомления старше срока хранения
func StartWorker(ctx context.Context) {
	retentionDays := config.Conf.Notify.PushRetentionDays
	if retentionDays <= 0 {
		return
	}
	i := impl{
		store:     pushdatastore.NewInstance(db.DB),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
	worker := baseworker.NewInstance("push-cleanup", firstRunDelay, runInterval)
	go worker.Run(ctx, i.handle)
}

type impl struct {
	store     pushdatastore.Provider
	retention time.Duration
	now       func() time.Time
}

func (i impl) handle(ctx context.Context) error {
	before := i.now().Add(-i.retention)
	count, err := i.store.DeleteBefore(before)
	if err != nil {
		return err
	}
	if count > 0 {
		log.
			WithField("count", count).
			WithField("before", before.Format(time.RFC3339)).
			Info("удалены устаревшие уведомления")
	}
	return nil
}
