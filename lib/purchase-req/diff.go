package purchasereqhandler

import (
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	dbmodels "procurement-backend/models/db"
	"strconv"

	"github.com/shopspring/decimal"
)

// diffRequest список изменённых полей заявки для истории
func diffRequest(rec dbmodels.PurchaseRequest, data purchaseapimodels.PurchaseRequestData, choice purchaseapimodels.VendorChoice) []dbmodels.RequestChange {
	result := []dbmodels.RequestChange{}
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			result = append(result, dbmodels.RequestChange{
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}
	add("title", rec.Title, data.Title)
	add("department", rec.Department, data.Department)
	add("description", rec.Description, data.Description)
	add("cost", rec.Cost.StringFixed(2), data.Cost.StringFixed(2))
	oldCostPerLicense := ""
	if rec.CostPerLicense.Valid {
		oldCostPerLicense = rec.CostPerLicense.Decimal.StringFixed(2)
	}
	add("cost_per_license", oldCostPerLicense, decimalPtrString(data.CostPerLicense))
	add("num_licenses", intPtrString(rec.NumLicenses), intPtrString(data.NumLicenses))
	add("vendor", vendorString(purchaseapimodels.VendorRefConvert(rec)), vendorString(purchaseapimodels.VendorRefFromChoice(choice)))
	return result
}

func decimalPtrString(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}

func intPtrString(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func vendorString(ref purchaseapimodels.VendorRef) string {
	switch ref.Type {
	case models.VendorRefExisting:
		return "existing:" + ref.VendorID
	case models.VendorRefProposed:
		if ref.Proposed != nil {
			return "proposed:" + ref.Proposed.VendorName
		}
	}
	return ""
}
