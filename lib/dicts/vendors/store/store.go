package vendorstore

import (
	vendorapimodels "procurement-backend/models/api/vendor"
	dbmodels "procurement-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Vendor) (id string, err error)
	GetByID(id string) (rec *dbmodels.Vendor, err error)
	FindByName(name string) (rec *dbmodels.Vendor, err error)
	ListCount(filter vendorapimodels.VendorFilter) (count int64, err error)
	List(filter vendorapimodels.VendorFilter) (list []dbmodels.Vendor, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Vendor) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Vendor, error) {
	rec := dbmodels.Vendor{}
	err := i.db.
		Where("id = ?", id).
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

func (i impl) FindByName(name string) (*dbmodels.Vendor, error) {
	rec := dbmodels.Vendor{}
	err := i.db.
		Where("LOWER(name) = ?", strings.ToLower(name)).
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

func (i impl) ListCount(filter vendorapimodels.VendorFilter) (count int64, err error) {
	err = i.addFilter(i.db.Model(&dbmodels.Vendor{}), filter).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (i impl) List(filter vendorapimodels.VendorFilter) (list []dbmodels.Vendor, err error) {
	list = []dbmodels.Vendor{}
	_, limit := filter.GetPage()
	err = i.addFilter(i.db.Model(&dbmodels.Vendor{}), filter).
		Order("name ASC").
		Limit(limit).
		Offset(filter.Offset()).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) addFilter(tx *gorm.DB, filter vendorapimodels.VendorFilter) *gorm.DB {
	if filter.Search != "" {
		tx = tx.Where("LOWER(name) like ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return tx
}
