package dbmodels

import (
	"procurement-backend/models"
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseRequest struct {
	BaseModel
	Title               string `gorm:"type:varchar(255)"`
	Department          string `gorm:"type:varchar(255);index:idx_pr_department"`
	Description         string
	Cost                decimal.Decimal     `gorm:"type:numeric(14,2);not null;default:0;check:chk_pr_cost_non_negative,cost >= 0"`
	CostPerLicense      decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	NumLicenses         *int
	VendorRefType       models.VendorRefType `gorm:"type:varchar(20)"`
	VendorID            *string              `gorm:"type:varchar(36);index:idx_pr_vendor"`
	Vendor              *Vendor
	ProposedVendor      ProposedVendor  `gorm:"embedded;embeddedPrefix:proposed_vendor_"`
	Status              models.PRStatus `gorm:"type:varchar(50);not null;index:idx_pr_status"`
	ReviewerNotes       string
	RequesterReply      string
	RequesterID         string  `gorm:"type:varchar(36);index:idx_pr_requester"`
	RequesterName       string  `gorm:"type:varchar(255)"`
	RequesterEmail      string  `gorm:"type:varchar(255)"`
	RequesterDepartment string  `gorm:"type:varchar(255)"`
	ReviewerID          *string `gorm:"type:varchar(36)"`
	ReviewerName        string  `gorm:"type:varchar(255)"`
	ApprovalDate        *time.Time
	Attachments         []Attachment `gorm:"foreignKey:RequestID"`
}

type ProposedVendor struct {
	VendorName   string `gorm:"type:varchar(255)"`
	Website      string `gorm:"type:varchar(255)"`
	ContactEmail string `gorm:"type:varchar(255)"`
}

func (r PurchaseRequest) IsRequester(userID string) bool {
	return userID != "" && r.RequesterID == userID
}

// HasOpenClarification уточнение запрошено, но ответа не было
func (r PurchaseRequest) HasOpenClarification() bool {
	return r.ReviewerNotes != "" && r.RequesterReply == ""
}
