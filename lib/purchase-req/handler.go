package purchasereqhandler

import (
	"context"
	"fmt"
	"procurement-backend/db"
	attachmentstore "procurement-backend/lib/attachment/store"
	"procurement-backend/lib/notify"
	purchasereqhistorystore "procurement-backend/lib/purchase-req/history-store"
	purchasereqstore "procurement-backend/lib/purchase-req/store"
	"procurement-backend/lib/utils/lock"
	vendorhandler "procurement-backend/lib/dicts/vendors"
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	dbmodels "procurement-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Provider interface {
	Create(ctx context.Context, actor models.Actor, data purchaseapimodels.PurchaseRequestData) (id string, err error)
	GetByID(actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error)
	Edit(ctx context.Context, actor models.Actor, id string, data purchaseapimodels.PurchaseRequestData) (item purchaseapimodels.PurchaseRequestView, err error)
	Approve(ctx context.Context, actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error)
	Reject(ctx context.Context, actor models.Actor, id, reason string) (item purchaseapimodels.PurchaseRequestView, err error)
	RequestClarification(ctx context.Context, actor models.Actor, id, notes string) (item purchaseapimodels.PurchaseRequestView, err error)
	Reply(ctx context.Context, actor models.Actor, id, reply string) (item purchaseapimodels.PurchaseRequestView, err error)
	Withdraw(ctx context.Context, actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error)
	List(actor models.Actor, filter purchaseapimodels.PrFilter) (list []purchaseapimodels.PurchaseRequestView, rowCount int64, err error)
	ListForExport(actor models.Actor, filter purchaseapimodels.PrFilter, maxRows int) (list []purchaseapimodels.PurchaseRequestView, err error)
	History(actor models.Actor, id string) (list []purchaseapimodels.HistoryView, err error)
	CheckAttach(actor models.Actor, id string) error
	Attach(ctx context.Context, actor models.Actor, id string, rec dbmodels.Attachment) (attachmentID string, err error)
}

var Instance Provider

// время ожидания блокировки заявки другим запросом этого инстанса
const lockWait = 5 * time.Second

// txStores хранилища в рамках одной транзакции БД
type txStores struct {
	store           purchasereqstore.Provider
	historyStore    purchasereqhistorystore.Provider
	attachmentStore attachmentstore.Provider
}

type txRunner func(fn func(s txStores) error) error

func NewHandler() {
	Instance = impl{
		store:          purchasereqstore.NewInstance(db.DB),
		historyStore:   purchasereqhistorystore.NewInstance(db.DB),
		vendorProvider: vendorhandler.Instance,
		notifier:       notify.Instance,
		runInTx:        dbTransaction,
		now:            time.Now,
	}
}

func dbTransaction(fn func(s txStores) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fn(txStores{
			store:           purchasereqstore.NewInstance(tx),
			historyStore:    purchasereqhistorystore.NewInstance(tx),
			attachmentStore: attachmentstore.NewInstance(tx),
		})
	})
}

type impl struct {
	store          purchasereqstore.Provider
	historyStore   purchasereqhistorystore.Provider
	vendorProvider vendorhandler.Provider
	notifier       notify.Provider
	runInTx        txRunner
	now            func() time.Time
}

// transition описание одного перехода заявки
type transition struct {
	action models.PRAction
	// validate проверка входных данных, выполняется после проверки прав и до проверки статуса
	validate func(rec dbmodels.PurchaseRequest) error
	// statusFirst статус проверяется до входных данных
	statusFirst bool
	// update дополнительные поля к смене статуса
	update  func(rec dbmodels.PurchaseRequest) map[string]interface{}
	changes func(rec dbmodels.PurchaseRequest) []dbmodels.RequestChange
	comment string
	// inTx дополнительная запись в той же транзакции
	inTx func(s txStores) error
}

func (i impl) Create(ctx context.Context, actor models.Actor, data purchaseapimodels.PurchaseRequestData) (id string, err error) {
	logger := log.WithField("user_id", actor.ID)
	if actor.IsEmpty() {
		return "", models.Forbidden("не определён автор заявки")
	}
	data.Normalize()
	choice, err := i.validateData(data)
	if err != nil {
		return "", err
	}
	status, ok := models.PRStatus("").Next(models.PRActionSubmit)
	if !ok {
		return "", models.InvalidTransition("", models.PRActionSubmit)
	}
	rec := dbmodels.PurchaseRequest{
		Title:               data.Title,
		Department:          data.Department,
		Description:         data.Description,
		Cost:                data.Cost,
		NumLicenses:         data.NumLicenses,
		Status:              status,
		RequesterID:         actor.ID,
		RequesterName:       actor.Name,
		RequesterEmail:      actor.Email,
		RequesterDepartment: actor.Department,
	}
	if data.CostPerLicense != nil {
		rec.CostPerLicense.Decimal = *data.CostPerLicense
		rec.CostPerLicense.Valid = true
	}
	applyVendor(&rec, choice)

	err = i.runInTx(func(s txStores) error {
		id, err = s.store.Create(rec)
		if err != nil {
			logger.
				WithField("request", fmt.Sprintf("%+v", data)).
				WithError(err).
				Error("ошибка создания заявки")
			return err
		}
		return i.addHistory(s.historyStore, actor, id, models.PRActionSubmit, "", status, "", nil)
	})
	if err != nil {
		return "", err
	}
	logger.
		WithField("request_id", id).
		Info("создана заявка на закупку")
	return id, nil
}

func (i impl) GetByID(actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error) {
	rec, err := i.getVisibleRec(actor, id)
	if err != nil {
		return purchaseapimodels.PurchaseRequestView{}, err
	}
	return purchaseapimodels.PurchaseRequestConvert(*rec), nil
}

func (i impl) Edit(ctx context.Context, actor models.Actor, id string, data purchaseapimodels.PurchaseRequestData) (item purchaseapimodels.PurchaseRequestView, err error) {
	data.Normalize()
	var choice purchaseapimodels.VendorChoice
	t := transition{
		action:      models.PRActionEdit,
		statusFirst: true,
		validate: func(rec dbmodels.PurchaseRequest) (err error) {
			choice, err = i.validateData(data)
			return err
		},
		update: func(rec dbmodels.PurchaseRequest) map[string]interface{} {
			updated := rec
			updated.Title = data.Title
			updated.Department = data.Department
			updated.Description = data.Description
			updated.Cost = data.Cost
			updated.NumLicenses = data.NumLicenses
			updated.CostPerLicense.Valid = data.CostPerLicense != nil
			if data.CostPerLicense != nil {
				updated.CostPerLicense.Decimal = *data.CostPerLicense
			}
			applyVendor(&updated, choice)
			return map[string]interface{}{
				"title":                         updated.Title,
				"department":                    updated.Department,
				"description":                   updated.Description,
				"cost":                          updated.Cost,
				"cost_per_license":              updated.CostPerLicense,
				"num_licenses":                  updated.NumLicenses,
				"vendor_ref_type":               updated.VendorRefType,
				"vendor_id":                     updated.VendorID,
				"proposed_vendor_vendor_name":   updated.ProposedVendor.VendorName,
				"proposed_vendor_website":       updated.ProposedVendor.Website,
				"proposed_vendor_contact_email": updated.ProposedVendor.ContactEmail,
			}
		},
		changes: func(rec dbmodels.PurchaseRequest) []dbmodels.RequestChange {
			return diffRequest(rec, data, choice)
		},
	}
	rec, err := i.applyTransition(ctx, actor, id, t)
	if err != nil {
		return purchaseapimodels.PurchaseRequestView{}, err
	}
	return purchaseapimodels.PurchaseRequestConvert(*rec), nil
}

func (i impl) Approve(ctx context.Context, actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error) {
	t := transition{
		action: models.PRActionApprove,
		update: func(rec dbmodels.PurchaseRequest) map[string]interface{} {
			if rec.HasOpenClarification() {
				log.
					WithField("request_id", rec.ID).
					WithField("user_id", actor.ID).
					Warn("заявка согласована без ответа на запрос уточнения")
			}
			updMap := i.reviewerUpdate(actor)
			updMap["approval_date"] = i.now()
			return updMap
		},
	}
	return i.applyAndNotify(ctx, actor, id, t)
}

func (i impl) Reject(ctx context.Context, actor models.Actor, id, reason string) (item purchaseapimodels.PurchaseRequestView, err error) {
	t := transition{
		action: models.PRActionReject,
		update: func(rec dbmodels.PurchaseRequest) map[string]interface{} {
			return i.reviewerUpdate(actor)
		},
		comment: strings.TrimSpace(reason),
	}
	return i.applyAndNotify(ctx, actor, id, t)
}

func (i impl) RequestClarification(ctx context.Context, actor models.Actor, id, notes string) (item purchaseapimodels.PurchaseRequestView, err error) {
	notes = strings.TrimSpace(notes)
	t := transition{
		action: models.PRActionClarification,
		validate: func(rec dbmodels.PurchaseRequest) error {
			return purchaseapimodels.ClarificationData{Notes: notes}.Validate()
		},
		update: func(rec dbmodels.PurchaseRequest) map[string]interface{} {
			updMap := i.reviewerUpdate(actor)
			updMap["reviewer_notes"] = notes
			// новый круг уточнения, прошлый ответ остаётся в истории
			updMap["requester_reply"] = ""
			return updMap
		},
		comment: notes,
	}
	return i.applyAndNotify(ctx, actor, id, t)
}

func (i impl) Reply(ctx context.Context, actor models.Actor, id, reply string) (item purchaseapimodels.PurchaseRequestView, err error) {
	reply = strings.TrimSpace(reply)
	t := transition{
		action:      models.PRActionReply,
		statusFirst: true,
		validate: func(rec dbmodels.PurchaseRequest) error {
			return purchaseapimodels.ReplyData{Reply: reply}.Validate()
		},
		update: func(rec dbmodels.PurchaseRequest) map[string]interface{} {
			return map[string]interface{}{
				"requester_reply": reply,
			}
		},
		comment: reply,
	}
	return i.applyAndNotify(ctx, actor, id, t)
}

func (i impl) Withdraw(ctx context.Context, actor models.Actor, id string) (item purchaseapimodels.PurchaseRequestView, err error) {
	t := transition{
		action: models.PRActionWithdraw,
	}
	return i.applyAndNotify(ctx, actor, id, t)
}

func (i impl) List(actor models.Actor, filter purchaseapimodels.PrFilter) (list []purchaseapimodels.PurchaseRequestView, rowCount int64, err error) {
	logger := log.WithField("user_id", actor.ID)
	filter, err = i.visibleFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	rowCount, err = i.store.ListCount(filter)
	if err != nil {
		return nil, 0, err
	}

	// страница за пределами выборки
	if int64(filter.Offset()) >= rowCount {
		return []purchaseapimodels.PurchaseRequestView{}, rowCount, nil
	}

	recList, err := i.store.List(filter)
	if err != nil {
		logger.
			WithError(err).
			Error("ошибка получения списка заявок")
		return nil, 0, err
	}
	return convertList(recList), rowCount, nil
}

func (i impl) ListForExport(actor models.Actor, filter purchaseapimodels.PrFilter, maxRows int) (list []purchaseapimodels.PurchaseRequestView, err error) {
	filter, err = i.visibleFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	recList, err := i.store.ListAll(filter, maxRows)
	if err != nil {
		log.
			WithField("user_id", actor.ID).
			WithError(err).
			Error("ошибка получения списка заявок для выгрузки")
		return nil, err
	}
	return convertList(recList), nil
}

func (i impl) History(actor models.Actor, id string) (list []purchaseapimodels.HistoryView, err error) {
	if _, err = i.getVisibleRec(actor, id); err != nil {
		return nil, err
	}
	recList, err := i.historyStore.List(id)
	if err != nil {
		log.
			WithField("request_id", id).
			WithError(err).
			Error("ошибка получения истории заявки")
		return nil, err
	}
	list = make([]purchaseapimodels.HistoryView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, purchaseapimodels.HistoryConvert(rec))
	}
	return list, nil
}

func (i impl) CheckAttach(actor models.Actor, id string) error {
	rec, err := i.getRec(id)
	if err != nil {
		return err
	}
	if err = authorize(actor, *rec, models.PRActionAttach); err != nil {
		return err
	}
	if _, ok := rec.Status.Next(models.PRActionAttach); !ok {
		return models.InvalidTransition(rec.Status, models.PRActionAttach)
	}
	return nil
}

func (i impl) Attach(ctx context.Context, actor models.Actor, id string, att dbmodels.Attachment) (attachmentID string, err error) {
	att.RequestID = id
	att.UploaderID = actor.ID
	att.UploaderName = actor.GetName()
	t := transition{
		action:  models.PRActionAttach,
		comment: att.Name,
		inTx: func(s txStores) (err error) {
			attachmentID, err = s.attachmentStore.Create(att)
			return err
		},
	}
	if _, err = i.applyTransition(ctx, actor, id, t); err != nil {
		return "", err
	}
	return attachmentID, nil
}

func (i impl) applyAndNotify(ctx context.Context, actor models.Actor, id string, t transition) (item purchaseapimodels.PurchaseRequestView, err error) {
	rec, err := i.applyTransition(ctx, actor, id, t)
	if err != nil {
		return purchaseapimodels.PurchaseRequestView{}, err
	}
	if i.notifier != nil {
		i.notifier.SendTransition(ctx, notify.Event{
			Action:  t.action,
			Request: *rec,
			Actor:   actor,
			Comment: t.comment,
		})
	}
	return purchaseapimodels.PurchaseRequestConvert(*rec), nil
}

// applyTransition проверяет и применяет переход.
// Порядок проверок: заявка существует, права, входные данные, допустимость перехода из текущего статуса.
// Для statusFirst переходов статус проверяется раньше входных данных.
// Смена статуса и запись истории выполняются в одной транзакции при условии, что статус не изменился
func (i impl) applyTransition(ctx context.Context, actor models.Actor, id string, t transition) (result *dbmodels.PurchaseRequest, err error) {
	logger := log.
		WithField("request_id", id).
		WithField("user_id", actor.ID).
		WithField("action", t.action)
	locked, err := lock.WithDelay(ctx, lock.RequestKey(id), lockWait, func() error {
		rec, err := i.getRec(id)
		if err != nil {
			return err
		}
		if err = authorize(actor, *rec, t.action); err != nil {
			return err
		}
		from := rec.Status
		to, ok := from.Next(t.action)
		if t.statusFirst && !ok {
			return models.InvalidTransition(from, t.action)
		}
		if t.validate != nil {
			if err = t.validate(*rec); err != nil {
				return err
			}
		}
		if !ok {
			return models.InvalidTransition(from, t.action)
		}
		updMap := map[string]interface{}{}
		if t.update != nil {
			updMap = t.update(*rec)
		}
		updMap["status"] = to
		var changes []dbmodels.RequestChange
		if t.changes != nil {
			changes = t.changes(*rec)
		}

		err = i.runInTx(func(s txStores) error {
			updated, err := s.store.CompareAndUpdate(id, from, updMap)
			if err != nil {
				logger.WithError(err).Error("ошибка обновления заявки")
				return err
			}
			if !updated {
				return errors.Wrap(models.ErrInvalidTransition, "статус заявки изменён другим пользователем, обновите данные")
			}
			if err = i.addHistory(s.historyStore, actor, id, t.action, from, to, t.comment, changes); err != nil {
				return err
			}
			if t.inTx != nil {
				return t.inTx(s)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result, err = i.getRec(id)
		if err != nil {
			return err
		}
		logger.
			WithField("from_status", from).
			WithField("to_status", to).
			Info("статус заявки изменён")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, errors.Wrap(models.ErrInvalidTransition, "заявка обрабатывается другим запросом, повторите попытку")
	}
	return result, nil
}

func authorize(actor models.Actor, rec dbmodels.PurchaseRequest, action models.PRAction) error {
	if action.ByApprover() {
		if !actor.IsApprover() {
			return models.Forbidden("действие «%v» доступно только согласующему", action.ToHuman())
		}
		return nil
	}
	if !rec.IsRequester(actor.ID) {
		return models.Forbidden("действие «%v» доступно только автору заявки", action.ToHuman())
	}
	return nil
}

func (i impl) reviewerUpdate(actor models.Actor) map[string]interface{} {
	reviewerID := actor.ID
	return map[string]interface{}{
		"reviewer_id":   &reviewerID,
		"reviewer_name": actor.GetName(),
	}
}

func (i impl) addHistory(store purchasereqhistorystore.Provider, actor models.Actor, requestID string, action models.PRAction, from, to models.PRStatus, comment string, changes []dbmodels.RequestChange) error {
	rec := dbmodels.RequestHistory{
		RequestID:  requestID,
		ActorID:    actor.ID,
		ActorName:  actor.GetName(),
		ActorRole:  actor.Role,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Comment:    comment,
		Changes:    datatypes.NewJSONType(dbmodels.RequestChanges{Data: changes}),
	}
	_, err := store.Create(rec)
	if err != nil {
		log.
			WithField("request_id", requestID).
			WithField("action", action).
			WithError(err).
			Error("ошибка записи истории заявки")
		return err
	}
	return nil
}

func (i impl) getRec(id string) (*dbmodels.PurchaseRequest, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		log.
			WithField("request_id", id).
			WithError(err).
			Error("ошибка получения заявки")
		return nil, err
	}
	if rec == nil {
		return nil, models.NotFound("заявка не найдена")
	}
	return rec, nil
}

// getVisibleRec согласующий видит все заявки, остальные только свои
func (i impl) getVisibleRec(actor models.Actor, id string) (*dbmodels.PurchaseRequest, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsApprover() && !rec.IsRequester(actor.ID) {
		return nil, models.Forbidden("нет доступа к заявке")
	}
	return rec, nil
}

func (i impl) visibleFilter(actor models.Actor, filter purchaseapimodels.PrFilter) (purchaseapimodels.PrFilter, error) {
	if actor.IsEmpty() {
		return filter, models.Forbidden("не определён пользователь")
	}
	if err := filter.Validate(); err != nil {
		return filter, err
	}
	if !actor.IsApprover() {
		filter.RequesterID = actor.ID
	}
	return filter, nil
}

// validateData проверка данных заявки, включая существование выбранного поставщика
func (i impl) validateData(data purchaseapimodels.PurchaseRequestData) (purchaseapimodels.VendorChoice, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	choice, err := data.Vendor.Choice()
	if err != nil {
		return nil, err
	}
	if existing, ok := choice.(purchaseapimodels.ExistingVendor); ok {
		_, err = i.vendorProvider.GetByID(existing.VendorID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("vendor.vendor_id", "поставщик не найден в справочнике")
			}
			return nil, err
		}
	}
	return choice, nil
}

func applyVendor(rec *dbmodels.PurchaseRequest, choice purchaseapimodels.VendorChoice) {
	rec.VendorID = nil
	rec.ProposedVendor = dbmodels.ProposedVendor{}
	rec.VendorRefType = models.VendorRefNone
	if choice == nil {
		return
	}
	rec.VendorRefType = choice.RefType()
	switch c := choice.(type) {
	case purchaseapimodels.ExistingVendor:
		vendorID := c.VendorID
		rec.VendorID = &vendorID
	case purchaseapimodels.ProposedVendor:
		rec.ProposedVendor = dbmodels.ProposedVendor{
			VendorName:   c.VendorName,
			Website:      c.Website,
			ContactEmail: c.ContactEmail,
		}
	}
}

func convertList(recList []dbmodels.PurchaseRequest) []purchaseapimodels.PurchaseRequestView {
	result := make([]purchaseapimodels.PurchaseRequestView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, purchaseapimodels.PurchaseRequestConvert(rec))
	}
	return result
}
