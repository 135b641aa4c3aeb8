package dbmodels

import (
	"procurement-backend/models"

	"gorm.io/datatypes"
)

type RequestHistory struct {
	BaseModel
	RequestID  string          `gorm:"type:varchar(36);index:idx_history_request"`
	ActorID    string          `gorm:"type:varchar(36)"`
	ActorName  string          `gorm:"type:varchar(255)"`
	ActorRole  models.UserRole `gorm:"type:varchar(50)"`
	Action     models.PRAction `gorm:"type:varchar(50)"`
	FromStatus models.PRStatus `gorm:"type:varchar(50)"`
	ToStatus   models.PRStatus `gorm:"type:varchar(50)"`
	Comment    string
	Changes    datatypes.JSONType[RequestChanges] `gorm:"type:jsonb"`
}

func (RequestHistory) TableName() string {
	return "purchase_request_history"
}

type RequestChanges struct {
	Data []RequestChange `json:"data"` // Список изменений
}

type RequestChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}
