package dbmodels

type Vendor struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);index:idx_vendor_name"`
	Website      string `gorm:"type:varchar(255)"`
	ContactEmail string `gorm:"type:varchar(255)"`
	Category     string `gorm:"type:varchar(100)"`
	CreatedByID  string `gorm:"type:varchar(36)"`
}
