package vendorhandler

import (
	"procurement-backend/db"
	vendorstore "procurement-backend/lib/dicts/vendors/store"
	"procurement-backend/models"
	vendorapimodels "procurement-backend/models/api/vendor"
	dbmodels "procurement-backend/models/db"

	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(actor models.Actor, data vendorapimodels.VendorData) (id string, err error)
	GetByID(id string) (vendorapimodels.VendorView, error)
	List(filter vendorapimodels.VendorFilter) (list []vendorapimodels.VendorView, rowCount int64, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: vendorstore.NewInstance(db.DB),
	}
}

type impl struct {
	store vendorstore.Provider
}

func (i impl) Create(actor models.Actor, data vendorapimodels.VendorData) (id string, err error) {
	logger := log.WithField("user_id", actor.ID)
	if !actor.IsApprover() {
		return "", models.Forbidden("добавлять поставщиков может только согласующий")
	}
	data.Normalize()
	if err = data.Validate(); err != nil {
		return "", err
	}
	existed, err := i.store.FindByName(data.Name)
	if err != nil {
		logger.WithError(err).Error("ошибка поиска поставщика по названию")
		return "", err
	}
	if existed != nil {
		return "", models.NewValidationError("name", "поставщик с таким названием уже существует")
	}
	rec := dbmodels.Vendor{
		Name:         data.Name,
		Website:      data.Website,
		ContactEmail: data.ContactEmail,
		Category:     data.Category,
		CreatedByID:  actor.ID,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		logger.
			WithField("vendor_name", data.Name).
			WithError(err).
			Error("ошибка создания поставщика")
		return "", err
	}
	logger.
		WithField("vendor_id", id).
		Info("добавлен поставщик")
	return id, nil
}

func (i impl) GetByID(id string) (vendorapimodels.VendorView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		log.
			WithField("vendor_id", id).
			WithError(err).
			Error("ошибка получения поставщика")
		return vendorapimodels.VendorView{}, err
	}
	if rec == nil {
		return vendorapimodels.VendorView{}, models.NotFound("поставщик не найден")
	}
	return vendorapimodels.VendorConvert(*rec), nil
}

func (i impl) List(filter vendorapimodels.VendorFilter) (list []vendorapimodels.VendorView, rowCount int64, err error) {
	rowCount, err = i.store.ListCount(filter)
	if err != nil {
		log.WithError(err).Error("ошибка получения количества поставщиков")
		return nil, 0, err
	}
	recList, err := i.store.List(filter)
	if err != nil {
		log.WithError(err).Error("ошибка получения списка поставщиков")
		return nil, 0, err
	}
	list = make([]vendorapimodels.VendorView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, vendorapimodels.VendorConvert(rec))
	}
	return list, rowCount, nil
}
