package dbmodels

import "procurement-backend/models"

type PushData struct {
	BaseModel
	UserID    string          `gorm:"type:varchar(36);index:idx_user"`
	Code      models.PushCode `gorm:"type:varchar(255);index:idx_push_code"`
	RequestID string          `gorm:"type:varchar(36)"`
	Msg       string
	Title     string
}
