package pushdatastore

import (
	dbmodels "procurement-backend/models/db"
	"time"

	"gorm.io/gorm"
)

// Provider отложенные уведомления для пользователей без активного подключения
type Provider interface {
	Create(rec dbmodels.PushData) error
	List(userID string) ([]dbmodels.PushData, error)
	Delete(ids []string) error
	// DeleteBefore удаляет уведомления, созданные раньше before
	DeleteBefore(before time.Time) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.PushData) error {
	return i.db.
		Create(&rec).
		Error
}

func (i impl) List(userID string) (list []dbmodels.PushData, err error) {
	err = i.db.
		Model(dbmodels.PushData{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Delete(ids []string) error {
	return i.db.Delete(&dbmodels.PushData{}, "id in (?)", ids).Error
}

func (i impl) DeleteBefore(before time.Time) (count int64, err error) {
	tx := i.db.
		Where("created_at < ?", before).
		Delete(&dbmodels.PushData{})
	return tx.RowsAffected, tx.Error
}
