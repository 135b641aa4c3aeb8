package purchaseapimodels

import (
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
	dbmodels "procurement-backend/models/db"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseRequestData struct {
	Title          string           `json:"title" validate:"required,max=255"`      // наименование
	Department     string           `json:"department" validate:"required,max=255"` // подразделение
	Description    string           `json:"description" validate:"required"`        // обоснование закупки
	Vendor         VendorRef        `json:"vendor"`                                 // поставщик
	Cost           decimal.Decimal  `json:"cost"`                                   // общая стоимость
	CostPerLicense *decimal.Decimal `json:"cost_per_license,omitempty"`             // стоимость одной лицензии
	NumLicenses    *int             `json:"num_licenses,omitempty"`                 // кол-во лицензий
}

func (v *PurchaseRequestData) Normalize() {
	v.Title = strings.TrimSpace(v.Title)
	v.Department = strings.TrimSpace(v.Department)
	v.Description = strings.TrimSpace(v.Description)
}

func (v PurchaseRequestData) ValidateBasicInfo() error {
	return apimodels.ValidateStruct(v, "Title", "Department")
}

func (v PurchaseRequestData) ValidateJustification() error {
	return apimodels.ValidateStruct(v, "Description")
}

func (v PurchaseRequestData) ValidateVendor() error {
	return v.Vendor.Validate()
}

func (v PurchaseRequestData) ValidateBudget() error {
	if !v.Cost.IsPositive() {
		return models.NewValidationError("cost", "стоимость должна быть больше нуля")
	}
	if v.CostPerLicense != nil && v.CostPerLicense.IsNegative() {
		return models.NewValidationError("cost_per_license", "стоимость лицензии не может быть отрицательной")
	}
	if v.NumLicenses != nil && *v.NumLicenses < 1 {
		return models.NewValidationError("num_licenses", "количество лицензий должно быть не меньше 1")
	}
	return nil
}

func (v PurchaseRequestData) Validate() error {
	if err := v.ValidateBasicInfo(); err != nil {
		return err
	}
	if err := v.ValidateJustification(); err != nil {
		return err
	}
	if err := v.ValidateVendor(); err != nil {
		return err
	}
	return v.ValidateBudget()
}

type ClarificationData struct {
	Notes string `json:"notes"` // вопрос согласующего
}

func (v ClarificationData) Validate() error {
	if strings.TrimSpace(v.Notes) == "" {
		return models.NewValidationError("notes", "отсутствует текст запроса уточнения")
	}
	return nil
}

type ReplyData struct {
	Reply string `json:"reply"` // ответ автора заявки
}

func (v ReplyData) Validate() error {
	if strings.TrimSpace(v.Reply) == "" {
		return models.NewValidationError("reply", "отсутствует текст ответа")
	}
	return nil
}

type RejectData struct {
	Reason string `json:"reason"` // причина отклонения, необязательно
}

func (v RejectData) Validate() error {
	return nil
}

type PrFilter struct {
	apimodels.Pagination
	Status      models.PRStatus  `json:"status"`       // статус
	Department  string           `json:"department"`   // подразделение
	CostFrom    *decimal.Decimal `json:"cost_from"`    // стоимость от
	CostTo      *decimal.Decimal `json:"cost_to"`      // стоимость до
	RequesterID string           `json:"requester_id"` // автор заявки
	Search      string           `json:"search"`       // поиск по наименованию
}

func (f PrFilter) Validate() error {
	if f.Status != "" {
		if err := f.Status.Validate(); err != nil {
			return err
		}
	}
	if f.CostFrom != nil && f.CostTo != nil && f.CostFrom.GreaterThan(*f.CostTo) {
		return models.NewValidationError("cost_from", "нижняя граница стоимости больше верхней")
	}
	return f.Pagination.Validate()
}

type RequesterView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type PurchaseRequestView struct {
	PurchaseRequestData
	ID             string            `json:"id"`
	Status         models.PRStatus   `json:"status"`
	ReviewerNotes  string            `json:"reviewer_notes"`
	RequesterReply string            `json:"requester_reply"`
	Requester      RequesterView     `json:"requester"`
	ReviewerName   string            `json:"reviewer_name,omitempty"`
	VendorName     string            `json:"vendor_name,omitempty"` // название поставщика из справочника
	Attachments    []AttachmentView  `json:"attachments"`
	CreatedAt      time.Time         `json:"created_at"`
	ApprovalDate   *time.Time        `json:"approval_date,omitempty"`
	AllowedActions []models.PRAction `json:"allowed_actions"` // подсказка интерфейсу, не проверка прав
}

func PurchaseRequestConvert(rec dbmodels.PurchaseRequest) PurchaseRequestView {
	result := PurchaseRequestView{
		PurchaseRequestData: PurchaseRequestData{
			Title:       rec.Title,
			Department:  rec.Department,
			Description: rec.Description,
			Vendor:      VendorRefConvert(rec),
			Cost:        rec.Cost,
			NumLicenses: rec.NumLicenses,
		},
		ID:             rec.ID,
		Status:         rec.Status,
		ReviewerNotes:  rec.ReviewerNotes,
		RequesterReply: rec.RequesterReply,
		Requester: RequesterView{
			ID:         rec.RequesterID,
			Name:       rec.RequesterName,
			Email:      rec.RequesterEmail,
			Department: rec.RequesterDepartment,
		},
		ReviewerName:   rec.ReviewerName,
		CreatedAt:      rec.CreatedAt,
		ApprovalDate:   rec.ApprovalDate,
		AllowedActions: rec.Status.AllowedActions(),
	}
	if rec.CostPerLicense.Valid {
		costPerLicense := rec.CostPerLicense.Decimal
		result.CostPerLicense = &costPerLicense
	}
	if rec.Vendor != nil {
		result.VendorName = rec.Vendor.Name
	}
	attachments := make([]AttachmentView, 0, len(rec.Attachments))
	for _, item := range rec.Attachments {
		attachments = append(attachments, AttachmentConvert(item))
	}
	result.Attachments = attachments
	return result
}

func VendorRefConvert(rec dbmodels.PurchaseRequest) VendorRef {
	switch rec.VendorRefType {
	case models.VendorRefExisting:
		if rec.VendorID != nil {
			return VendorRefFromChoice(ExistingVendor{VendorID: *rec.VendorID})
		}
	case models.VendorRefProposed:
		return VendorRefFromChoice(ProposedVendor{ProposedVendorData: ProposedVendorData{
			VendorName:   rec.ProposedVendor.VendorName,
			Website:      rec.ProposedVendor.Website,
			ContactEmail: rec.ProposedVendor.ContactEmail,
		}})
	}
	return VendorRefFromChoice(NoVendor{})
}

type AttachmentView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	UploaderID   string    `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func AttachmentConvert(rec dbmodels.Attachment) AttachmentView {
	return AttachmentView{
		ID:           rec.ID,
		Name:         rec.Name,
		Size:         rec.Size,
		ContentType:  rec.ContentType,
		UploaderID:   rec.UploaderID,
		UploaderName: rec.UploaderName,
		CreatedAt:    rec.CreatedAt,
	}
}

type HistoryView struct {
	ID         string                   `json:"id"`
	ActorID    string                   `json:"actor_id"`
	ActorName  string                   `json:"actor_name"`
	Action     models.PRAction          `json:"action"`
	ActionName string                   `json:"action_name"`
	FromStatus models.PRStatus          `json:"from_status"`
	ToStatus   models.PRStatus          `json:"to_status"`
	Comment    string                   `json:"comment"`
	Changes    []dbmodels.RequestChange `json:"changes"`
	CreatedAt  time.Time                `json:"created_at"`
}

func HistoryConvert(rec dbmodels.RequestHistory) HistoryView {
	return HistoryView{
		ID:         rec.ID,
		ActorID:    rec.ActorID,
		ActorName:  rec.ActorName,
		Action:     rec.Action,
		ActionName: rec.Action.ToHuman(),
		FromStatus: rec.FromStatus,
		ToStatus:   rec.ToStatus,
		Comment:    rec.Comment,
		Changes:    rec.Changes.Data().Data,
		CreatedAt:  rec.CreatedAt,
	}
}

// DraftSummary данные шага проверки мастера
type DraftSummary struct {
	PurchaseRequestData
	VendorName     string `json:"vendor_name,omitempty"`     // название поставщика
	VendorProposed bool   `json:"vendor_proposed,omitempty"` // поставщик предложен автором, в справочнике его нет
}
