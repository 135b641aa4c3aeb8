package db

import (
	dbmodels "procurement-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Vendor{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Vendor")
	}
	if err := DB.AutoMigrate(&dbmodels.PurchaseRequest{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры PurchaseRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.Attachment{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Attachment")
	}
	if err := DB.AutoMigrate(&dbmodels.RequestHistory{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры RequestHistory")
	}
	if err := DB.AutoMigrate(&dbmodels.PushData{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры PushData")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
