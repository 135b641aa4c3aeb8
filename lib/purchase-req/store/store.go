package purchasereqstore

import (
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	dbmodels "procurement-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Create(rec dbmodels.PurchaseRequest) (id string, err error)
	GetByID(id string) (rec *dbmodels.PurchaseRequest, err error)
	// CompareAndUpdate обновляет заявку только если её статус всё ещё expected.
	// updated=false - статус уже изменён другим запросом
	CompareAndUpdate(id string, expected models.PRStatus, updMap map[string]interface{}) (updated bool, err error)
	ListCount(filter purchaseapimodels.PrFilter) (count int64, err error)
	List(filter purchaseapimodels.PrFilter) (list []dbmodels.PurchaseRequest, err error)
	ListAll(filter purchaseapimodels.PrFilter, maxRows int) (list []dbmodels.PurchaseRequest, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.PurchaseRequest) (id string, err error) {
	err = i.db.Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.PurchaseRequest, error) {
	rec := dbmodels.PurchaseRequest{}
	err := i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Where("id = ?", id).
		Preload("Vendor").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) CompareAndUpdate(id string, expected models.PRStatus, updMap map[string]interface{}) (bool, error) {
	if len(updMap) == 0 {
		return false, errors.New("отсутствуют данные для обновления")
	}
	tx := i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Where("id = ?", id).
		Where("status = ?", expected).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) ListCount(filter purchaseapimodels.PrFilter) (count int64, err error) {
	var rowCount int64
	tx := i.addFilter(i.db.Model(&dbmodels.PurchaseRequest{}), filter)
	err = tx.Count(&rowCount).Error
	if err != nil {
		log.WithError(err).Error("ошибка получения общего количества заявок")
		return 0, errors.New("ошибка получения общего количества заявок")
	}
	return rowCount, nil
}

func (i impl) List(filter purchaseapimodels.PrFilter) (list []dbmodels.PurchaseRequest, err error) {
	_, limit := filter.GetPage()
	return i.list(filter, filter.Offset(), limit)
}

func (i impl) ListAll(filter purchaseapimodels.PrFilter, maxRows int) (list []dbmodels.PurchaseRequest, err error) {
	return i.list(filter, 0, maxRows)
}

func (i impl) list(filter purchaseapimodels.PrFilter, offset, limit int) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	tx := i.addFilter(i.db.Model(&dbmodels.PurchaseRequest{}), filter).
		Preload("Vendor").
		Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	err = tx.Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) addFilter(tx *gorm.DB, filter purchaseapimodels.PrFilter) *gorm.DB {
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		tx = tx.Where("LOWER(department) = ?", strings.ToLower(filter.Department))
	}
	if filter.RequesterID != "" {
		tx = tx.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.CostFrom != nil {
		tx = tx.Where("cost >= ?", *filter.CostFrom)
	}
	if filter.CostTo != nil {
		tx = tx.Where("cost <= ?", *filter.CostTo)
	}
	if filter.Search != "" {
		tx = tx.Where("LOWER(title) like ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return tx
}
