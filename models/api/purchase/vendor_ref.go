package purchaseapimodels

import (
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
	"strings"
)

type ProposedVendorData struct {
	VendorName   string `json:"vendor_name" validate:"required,max=255"`          // название предлагаемого поставщика
	Website      string `json:"website" validate:"omitempty,url,max=255"`         // сайт
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=255"` // контактная почта
}

// VendorRef поставщик в заявке: не указан, существующий из справочника или предложенный автором
type VendorRef struct {
	Type     models.VendorRefType `json:"type"`                // none/existing/proposed
	VendorID string               `json:"vendor_id,omitempty"` // ид поставщика из справочника
	Proposed *ProposedVendorData  `json:"proposed,omitempty"`  // данные нового поставщика
}

// VendorChoice закрытый набор вариантов: NoVendor, ExistingVendor, ProposedVendor
type VendorChoice interface {
	RefType() models.VendorRefType
}

type NoVendor struct{}

func (NoVendor) RefType() models.VendorRefType { return models.VendorRefNone }

type ExistingVendor struct {
	VendorID string
}

func (ExistingVendor) RefType() models.VendorRefType { return models.VendorRefExisting }

type ProposedVendor struct {
	ProposedVendorData
}

func (ProposedVendor) RefType() models.VendorRefType { return models.VendorRefProposed }

// Choice приводит поставщика к одному из вариантов, оба варианта одновременно недопустимы
func (v VendorRef) Choice() (VendorChoice, error) {
	if err := v.Type.Validate(); err != nil {
		return nil, err
	}
	vendorID := strings.TrimSpace(v.VendorID)
	refType := v.Type
	if refType == "" {
		switch {
		case vendorID != "" && v.Proposed != nil:
			return nil, models.NewValidationError("vendor", "нельзя одновременно выбрать поставщика и предложить нового")
		case vendorID != "":
			refType = models.VendorRefExisting
		case v.Proposed != nil:
			refType = models.VendorRefProposed
		default:
			refType = models.VendorRefNone
		}
	}
	switch refType {
	case models.VendorRefExisting:
		if v.Proposed != nil {
			return nil, models.NewValidationError("vendor", "нельзя одновременно выбрать поставщика и предложить нового")
		}
		if vendorID == "" {
			return nil, models.NewValidationError("vendor.vendor_id", "не выбран поставщик")
		}
		return ExistingVendor{VendorID: vendorID}, nil
	case models.VendorRefProposed:
		if vendorID != "" {
			return nil, models.NewValidationError("vendor", "нельзя одновременно выбрать поставщика и предложить нового")
		}
		if v.Proposed == nil {
			return nil, models.NewValidationError("vendor.proposed", "не заполнены данные нового поставщика")
		}
		proposed := ProposedVendorData{
			VendorName:   strings.TrimSpace(v.Proposed.VendorName),
			Website:      strings.TrimSpace(v.Proposed.Website),
			ContactEmail: strings.TrimSpace(v.Proposed.ContactEmail),
		}
		if err := apimodels.ValidateStruct(proposed); err != nil {
			return nil, err
		}
		return ProposedVendor{ProposedVendorData: proposed}, nil
	}
	if vendorID != "" || v.Proposed != nil {
		return nil, models.NewValidationError("vendor", "для заявки без поставщика данные поставщика не заполняются")
	}
	return NoVendor{}, nil
}

func (v VendorRef) Validate() error {
	_, err := v.Choice()
	return err
}

func VendorRefFromChoice(choice VendorChoice) VendorRef {
	switch c := choice.(type) {
	case ExistingVendor:
		return VendorRef{Type: models.VendorRefExisting, VendorID: c.VendorID}
	case ProposedVendor:
		proposed := c.ProposedVendorData
		return VendorRef{Type: models.VendorRefProposed, Proposed: &proposed}
	}
	return VendorRef{Type: models.VendorRefNone}
}
