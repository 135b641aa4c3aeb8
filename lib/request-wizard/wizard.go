package requestwizard

import (
	"context"
	purchasereqhandler "procurement-backend/lib/purchase-req"
	vendorhandler "procurement-backend/lib/dicts/vendors"
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Step шаг мастера подачи заявки
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepJustification
	StepVendor
	StepBudget
	StepReview
)

var stepHumanName = map[Step]string{
	StepBasicInfo:     "Основная информация",
	StepJustification: "Обоснование",
	StepVendor:        "Поставщик",
	StepBudget:        "Бюджет",
	StepReview:        "Проверка",
}

func (s Step) ToHuman() string {
	return stepHumanName[s]
}

func (s Step) Validate() error {
	if s < StepBasicInfo || s > StepReview {
		return models.NewValidationError("step", "неизвестный шаг мастера: %d", s)
	}
	return nil
}

type Provider interface {
	ValidateStep(draft purchaseapimodels.PurchaseRequestData, step Step) error
	Summary(draft purchaseapimodels.PurchaseRequestData) (purchaseapimodels.DraftSummary, error)
	FromRequest(item purchaseapimodels.PurchaseRequestView) (purchaseapimodels.PurchaseRequestData, error)
	EditDraft(actor models.Actor, id string) (purchaseapimodels.PurchaseRequestData, error)
	Submit(ctx context.Context, actor models.Actor, draft purchaseapimodels.PurchaseRequestData) (id string, err error)
	SubmitEdit(ctx context.Context, actor models.Actor, id string, draft purchaseapimodels.PurchaseRequestData) (item purchaseapimodels.PurchaseRequestView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		requests:       purchasereqhandler.Instance,
		vendorProvider: vendorhandler.Instance,
	}
}

type impl struct {
	requests       purchasereqhandler.Provider
	vendorProvider vendorhandler.Provider
}

// ValidateStep проверка одного шага. Шаг проверки перепроверяет все предыдущие шаги
func (i impl) ValidateStep(draft purchaseapimodels.PurchaseRequestData, step Step) error {
	if err := step.Validate(); err != nil {
		return err
	}
	draft.Normalize()
	switch step {
	case StepBasicInfo:
		return draft.ValidateBasicInfo()
	case StepJustification:
		return draft.ValidateJustification()
	case StepVendor:
		return i.validateVendor(draft)
	case StepBudget:
		return draft.ValidateBudget()
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	return i.validateVendor(draft)
}

func (i impl) Summary(draft purchaseapimodels.PurchaseRequestData) (purchaseapimodels.DraftSummary, error) {
	if err := i.ValidateStep(draft, StepReview); err != nil {
		return purchaseapimodels.DraftSummary{}, err
	}
	draft.Normalize()
	result := purchaseapimodels.DraftSummary{
		PurchaseRequestData: draft,
	}
	choice, _ := draft.Vendor.Choice()
	switch c := choice.(type) {
	case purchaseapimodels.ExistingVendor:
		vendor, err := i.vendorProvider.GetByID(c.VendorID)
		if err != nil {
			return purchaseapimodels.DraftSummary{}, err
		}
		result.VendorName = vendor.Name
	case purchaseapimodels.ProposedVendor:
		result.VendorName = c.VendorName
		result.VendorProposed = true
	}
	return result, nil
}

// FromRequest черновик для редактирования существующей заявки
func (i impl) FromRequest(item purchaseapimodels.PurchaseRequestView) (purchaseapimodels.PurchaseRequestData, error) {
	if !item.Status.AllowEdit() {
		return purchaseapimodels.PurchaseRequestData{}, models.InvalidTransition(item.Status, models.PRActionEdit)
	}
	return item.PurchaseRequestData, nil
}

// EditDraft черновик заявки для мастера в режиме редактирования, доступен только автору
func (i impl) EditDraft(actor models.Actor, id string) (purchaseapimodels.PurchaseRequestData, error) {
	item, err := i.requests.GetByID(actor, id)
	if err != nil {
		return purchaseapimodels.PurchaseRequestData{}, err
	}
	if item.Requester.ID != actor.ID {
		return purchaseapimodels.PurchaseRequestData{}, models.Forbidden("редактировать заявку может только её автор")
	}
	return i.FromRequest(item)
}

func (i impl) Submit(ctx context.Context, actor models.Actor, draft purchaseapimodels.PurchaseRequestData) (id string, err error) {
	if err = i.ValidateStep(draft, StepReview); err != nil {
		return "", err
	}
	id, err = i.requests.Create(ctx, actor, draft)
	if err != nil {
		return "", err
	}
	log.
		WithField("user_id", actor.ID).
		WithField("request_id", id).
		Info("заявка подана через мастер")
	return id, nil
}

func (i impl) SubmitEdit(ctx context.Context, actor models.Actor, id string, draft purchaseapimodels.PurchaseRequestData) (item purchaseapimodels.PurchaseRequestView, err error) {
	return i.requests.Edit(ctx, actor, id, draft)
}

func (i impl) validateVendor(draft purchaseapimodels.PurchaseRequestData) error {
	choice, err := draft.Vendor.Choice()
	if err != nil {
		return err
	}
	existing, ok := choice.(purchaseapimodels.ExistingVendor)
	if !ok {
		return nil
	}
	if _, err = i.vendorProvider.GetByID(existing.VendorID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewValidationError("vendor.vendor_id", "поставщик не найден в справочнике")
		}
		return err
	}
	return nil
}
